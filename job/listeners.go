package job

import "fmt"

// AddUpdateListener registers cb to be called (with no arguments, the way
// worker/job.go's listeners work) whenever new output has been appended or
// the job has completed. A caller re-reads whatever it needs via
// ReadOutput/Completion/Outcome rather than receiving data pushed to it,
// keeping the notification side trivial to fan out to many tailers.
func (j *Job) AddUpdateListener(key string, cb func()) {
	j.mu.Lock()
	if j.listeners == nil {
		j.listeners = make(map[string]func())
	}
	j.listeners[key] = cb
	j.mu.Unlock()
}

// RemoveUpdateListener deregisters a previously added listener. A no-op if
// key was never registered.
func (j *Job) RemoveUpdateListener(key string) {
	j.mu.Lock()
	delete(j.listeners, key)
	j.mu.Unlock()
}

func (j *Job) notifyListeners() {
	j.mu.Lock()
	cbs := make([]func(), 0, len(j.listeners))
	for _, cb := range j.listeners {
		cbs = append(cbs, cb)
	}
	j.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

// ReadOutput copies whatever of stdout (or stderr, if stderr is true) is
// available starting at offset into b, returning the number of bytes
// copied. offset must not exceed the buffer's current length.
func (j *Job) ReadOutput(stderr bool, b []byte, offset int) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	buf := j.stdoutBuf
	if stderr {
		buf = j.stderrBuf
	}
	if offset > len(buf) {
		return 0, fmt.Errorf("offset %d beyond buffer length %d", offset, len(buf))
	}
	return copy(b, buf[offset:]), nil
}
