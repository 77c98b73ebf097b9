// Package job implements the spawned-job supervisor: it launches one
// external command, pumps its three standard pipes, reaps it, and reports
// exactly one structured completion to its caller. It never interprets the
// command's output and never decides whether a non-zero exit matters to
// anyone above it.
package job

import (
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/blockwatch/spawnerd/internal/shellwords"
)

// Job supervises one spawned external command from construction through
// completion. The zero value is not usable; build one with New.
type Job struct {
	commandLine string
	createdAt   time.Time
	onCompleted CompletionHandler

	cancel      *Cancellation
	deregCancel func()

	mu          sync.Mutex
	inputBytes  []byte
	inputCursor int

	cmd *exec.Cmd
	pid int

	stdoutBuf []byte
	stderrBuf []byte
	listeners map[string]func()

	doneCh       chan struct{}
	completeOnce sync.Once
	waitOnce     sync.Once

	result  Completion
	outcome Outcome

	released int32
}

// SpawnOption customizes the *exec.Cmd built from the split argv before
// Start is called, e.g. to attach a SysProcAttr for namespace isolation.
// It never changes the pipe wiring or completion semantics, only how the
// child is launched.
type SpawnOption func(*exec.Cmd)

// New constructs a Job and begins executing commandLine immediately.
// inputBytes, if non-nil, is written to the child's stdin and then the
// descriptor is closed; cancel, if nil, is replaced with a token that never
// trips so internal code never has to special-case its absence.
func New(commandLine string, inputBytes []byte, cancel *Cancellation, onCompleted CompletionHandler, opts ...SpawnOption) *Job {
	if cancel == nil {
		cancel = NewCancellation()
	}
	j := &Job{
		commandLine: commandLine,
		createdAt:   time.Now(),
		onCompleted: onCompleted,
		cancel:      cancel,
		inputBytes:  inputBytes,
		doneCh:      make(chan struct{}),
	}

	if cancel.Tripped() {
		go j.completeCancelled()
		return j
	}
	j.deregCancel = cancel.onTrip(func() { j.completeCancelled() })

	argv, err := shellwords.Split(commandLine)
	if err != nil {
		go j.complete(Completion{Err: newError(KindParseFailed, err)})
		return j
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	for _, opt := range opts {
		opt(cmd)
	}
	var stdinPipe io.WriteCloser
	if inputBytes != nil {
		w, err := cmd.StdinPipe()
		if err != nil {
			go j.complete(Completion{Err: newError(KindSpawnFailed, err)})
			return j
		}
		stdinPipe = w
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		go j.complete(Completion{Err: newError(KindSpawnFailed, err)})
		return j
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		go j.complete(Completion{Err: newError(KindSpawnFailed, err)})
		return j
	}

	if err := cmd.Start(); err != nil {
		go j.complete(Completion{Err: newError(KindSpawnFailed, err)})
		return j
	}

	j.cmd = cmd
	j.pid = cmd.Process.Pid

	var wg sync.WaitGroup
	wg.Add(2)
	if stdinPipe != nil {
		go j.pumpStdin(stdinPipe)
	}
	go j.pumpRead(stdout, &j.stdoutBuf, &wg)
	go j.pumpRead(stderr, &j.stderrBuf, &wg)
	go j.waitForExit(&wg)

	return j
}

// CommandLine returns the command line the Job was constructed with.
func (j *Job) CommandLine() string {
	return j.commandLine
}

// PID returns the spawned child's process ID, or 0 if no child was ever
// spawned (a construction-time failure path).
func (j *Job) PID() int {
	return j.pid
}

// CreatedAt returns the time the Job was constructed.
func (j *Job) CreatedAt() time.Time {
	return j.createdAt
}

// Done returns a channel that closes exactly once, after the completed
// event (and the derived job_completed classification, if not vetoed) has
// been recorded.
func (j *Job) Done() <-chan struct{} {
	return j.doneCh
}

// Completion returns the raw completed-event payload. Valid only after Done
// has closed.
func (j *Job) Completion() Completion {
	return j.result
}

// Outcome returns the derived job_completed classification. Valid only
// after Done has closed, and only meaningful if the CompletionHandler
// passed to New did not mark the completed event handled.
func (j *Job) Outcome() Outcome {
	return j.outcome
}

// ExitCode returns the child's exit status if Done has closed and the
// child exited normally, or nil if it is still running, failed to spawn,
// was cancelled, or died from a signal.
func (j *Job) ExitCode() *int32 {
	select {
	case <-j.doneCh:
	default:
		return nil
	}
	if j.result.Err != nil || !j.result.RawStatus.Exited() {
		return nil
	}
	code := int32(j.result.RawStatus.ExitStatus())
	return &code
}

func (j *Job) completeCancelled() {
	j.complete(Completion{Err: newError(KindCancelled, errCancelled)})
}

var errCancelled = cancelledErr{}

type cancelledErr struct{}

func (cancelledErr) Error() string { return "job cancelled" }

// complete is the single funnel every terminal path (construction failure,
// cancellation, natural exit) goes through. completeOnce guarantees P1/P8:
// whichever path gets here first wins and every other caller is a no-op.
func (j *Job) complete(c Completion) {
	j.completeOnce.Do(func() {
		j.result = c
		handled := false
		if j.onCompleted != nil {
			handled = j.onCompleted(c)
		}
		if !handled {
			j.outcome = classify(j.commandLine, c)
		}
		// release (and the input-zeroing inside it) must finish before
		// doneCh closes: a waiter unblocked by the close is only
		// guaranteed to see writes that happened before the close, not
		// ones a concurrent release() is still making.
		j.release()
		close(j.doneCh)
		j.notifyListeners()
	})
}

// release is the idempotent teardown of §4.6: SIGTERM the child if one is
// still alive, reap it off the critical path, and zero the sensitive input
// buffer. It is safe to call from any of the completion paths regardless of
// how far construction got.
func (j *Job) release() {
	if !atomic.CompareAndSwapInt32(&j.released, 0, 1) {
		return
	}
	if j.deregCancel != nil {
		j.deregCancel()
	}
	if j.cmd != nil && j.cmd.Process != nil {
		_ = j.cmd.Process.Signal(syscall.SIGTERM)
		go j.reap()
	}
	j.mu.Lock()
	zero(j.inputBytes)
	j.inputBytes = nil
	j.mu.Unlock()
}

// reap calls Wait on the underlying process exactly once so the kernel can
// release the zombie, without blocking anyone on the completion path. It is
// idempotent with waitForExit's own Wait call via waitOnce.
func (j *Job) reap() {
	j.waitOnce.Do(func() {
		_ = j.cmd.Wait()
	})
}

// Kill sends SIGKILL to the child immediately, bypassing the graceful
// SIGTERM release sends on its own. It is a convenience for callers (the
// job table, the RPC surface) that implement a "force stop" on top of the
// supervisor's own best-effort cancellation; it does not itself trigger
// completion, which still arrives through the normal exit-watch path.
func (j *Job) Kill() {
	if j.cmd != nil && j.cmd.Process != nil {
		_ = j.cmd.Process.Signal(syscall.SIGKILL)
	}
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
