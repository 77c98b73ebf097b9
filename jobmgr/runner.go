package jobmgr

import "github.com/blockwatch/spawnerd/job"

// runner turns a command line into the job.SpawnOptions needed to launch it
// the way this Manager was configured to: plain exec.Command, or (on Linux,
// with limits configured) a re-exec into a resource-isolated sandbox. It
// may rewrite the command line itself (to prefix a re-exec wrapper); the
// rewritten form is what job.New actually parses and spawns.
type runner interface {
	prepare(commandLine string) (rewritten string, opts []job.SpawnOption, err error)
}

// plainRunner applies no isolation at all: job.New gets no extra options
// and launches commandLine exactly as given.
type plainRunner struct{}

func (plainRunner) prepare(commandLine string) (string, []job.SpawnOption, error) {
	return commandLine, nil, nil
}
