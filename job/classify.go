package job

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/blockwatch/spawnerd/internal/errdomain"
)

// Completion is the raw outcome delivered by the completed event: §4.1-4.4
// of the construction/exit/cancellation paths all funnel into one of these.
type Completion struct {
	Err       *Error
	RawStatus syscall.WaitStatus
	Stdout    []byte
	Stderr    []byte
}

// CompletionHandler lets a caller veto the default classification (§4.5) by
// returning true. A nil handler, or one that returns false, leaves the
// default classification in charge.
type CompletionHandler func(Completion) (handled bool)

// Outcome is the derived job_completed event: a single user-visible
// success/message pair synthesized by the default classification.
type Outcome struct {
	Success bool
	Message string
}

// signalNames mirrors the source's get_signal_name table exactly: every
// signal from HUP through XFSZ, UNKNOWN_SIGNAL for anything else.
var signalNames = map[syscall.Signal]string{
	unix.SIGHUP:    "SIGHUP",
	unix.SIGINT:    "SIGINT",
	unix.SIGQUIT:   "SIGQUIT",
	unix.SIGILL:    "SIGILL",
	unix.SIGABRT:   "SIGABRT",
	unix.SIGFPE:    "SIGFPE",
	unix.SIGKILL:   "SIGKILL",
	unix.SIGSEGV:   "SIGSEGV",
	unix.SIGPIPE:   "SIGPIPE",
	unix.SIGALRM:   "SIGALRM",
	unix.SIGTERM:   "SIGTERM",
	unix.SIGUSR1:   "SIGUSR1",
	unix.SIGUSR2:   "SIGUSR2",
	unix.SIGCHLD:   "SIGCHLD",
	unix.SIGCONT:   "SIGCONT",
	unix.SIGSTOP:   "SIGSTOP",
	unix.SIGTSTP:   "SIGTSTP",
	unix.SIGTTIN:   "SIGTTIN",
	unix.SIGTTOU:   "SIGTTOU",
	unix.SIGBUS:    "SIGBUS",
	unix.SIGPOLL:   "SIGPOLL",
	unix.SIGPROF:   "SIGPROF",
	unix.SIGSYS:    "SIGSYS",
	unix.SIGTRAP:   "SIGTRAP",
	unix.SIGURG:    "SIGURG",
	unix.SIGVTALRM: "SIGVTALRM",
	unix.SIGXCPU:   "SIGXCPU",
	unix.SIGXFSZ:   "SIGXFSZ",
}

func signalName(s syscall.Signal) string {
	if name, ok := signalNames[s]; ok {
		return name
	}
	return "UNKNOWN_SIGNAL"
}

// classify implements §4.5's four-branch table. It is only reached when no
// CompletionHandler has marked the completed event handled.
func classify(commandLine string, c Completion) Outcome {
	if c.Err != nil {
		domain := errdomain.Failed
		if c.Err.Kind == KindCancelled {
			domain = errdomain.Cancelled
		}
		return Outcome{
			Success: false,
			Message: fmt.Sprintf("Failed to execute command-line `%s': %s (%s, %d)",
				commandLine, c.Err.Err, domain, int(domain)),
		}
	}
	if c.RawStatus.Exited() {
		code := c.RawStatus.ExitStatus()
		if code == 0 {
			return Outcome{Success: true, Message: ""}
		}
		return Outcome{
			Success: false,
			Message: fmt.Sprintf("Command-line `%s' exited with non-zero exit status %d.\nstdout: `%s'\nstderr: `%s'",
				commandLine, code, c.Stdout, c.Stderr),
		}
	}
	if c.RawStatus.Signaled() {
		sig := c.RawStatus.Signal()
		return Outcome{
			Success: false,
			Message: fmt.Sprintf("Command-line `%s' was signaled with signal %s (%d).\nstdout: `%s'\nstderr: `%s'",
				commandLine, signalName(sig), int(sig), c.Stdout, c.Stderr),
		}
	}
	// Neither exited nor signaled: stopped/continued statuses never reach
	// here because the exit watch only fires on a terminated child.
	return Outcome{Success: false, Message: fmt.Sprintf("Command-line `%s' ended with unrecognized status.", commandLine)}
}
