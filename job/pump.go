package job

import (
	"io"
	"os/exec"
	"sync"
	"syscall"
)

const readChunkSize = 1024

// pumpStdin writes inputBytes to w, handing each Write whatever remains and
// advancing inputCursor by the bytes it accepted, as §4.2 describes the
// writable source; it
// closes w once every byte has been written, which is what delivers EOF to
// the child. The supervisor never writes a sentinel byte.
func (j *Job) pumpStdin(w io.WriteCloser) {
	j.mu.Lock()
	remaining := j.inputBytes
	j.mu.Unlock()

	for len(remaining) > 0 {
		n, err := w.Write(remaining)
		j.mu.Lock()
		j.inputCursor += n
		j.mu.Unlock()
		if err != nil {
			break
		}
		remaining = remaining[n:]
	}
	_ = w.Close()
}

// pumpRead repeatedly reads up to readChunkSize bytes from r and appends
// them to *buf, guarded by j.mu since the exit-watch goroutine reads the
// buffers for the completed event after this goroutine signals EOF. It
// marks wg done exactly once, at EOF or read error, never blocking the exit
// watcher past that point.
func (j *Job) pumpRead(r io.Reader, buf *[]byte, wg *sync.WaitGroup) {
	defer wg.Done()
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			j.mu.Lock()
			*buf = append(*buf, chunk[:n]...)
			j.mu.Unlock()
			j.notifyListeners()
		}
		if err != nil {
			return
		}
	}
}

// waitForExit implements §4.3: it waits for both pipe pumps to drain to
// EOF, reaps the child exactly once, and emits the single completed event
// carrying the raw status and the now-final output buffers.
func (j *Job) waitForExit(wg *sync.WaitGroup) {
	wg.Wait()

	var status syscall.WaitStatus
	j.waitOnce.Do(func() {
		err := j.cmd.Wait()
		status = extractStatus(j.cmd, err)
	})

	j.mu.Lock()
	stdout := j.stdoutBuf
	stderr := j.stderrBuf
	j.mu.Unlock()

	j.complete(Completion{
		RawStatus: status,
		Stdout:    stdout,
		Stderr:    stderr,
	})
}

// extractStatus pulls the raw wait status out of either a clean Wait return
// or an *exec.ExitError, so the classifier always has real WIFEXITED/
// WIFSIGNALED information regardless of which branch produced it.
func extractStatus(cmd *exec.Cmd, waitErr error) syscall.WaitStatus {
	if cmd.ProcessState != nil {
		if ws, ok := cmd.ProcessState.Sys().(syscall.WaitStatus); ok {
			return ws
		}
	}
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			return ws
		}
	}
	return syscall.WaitStatus(0)
}
