package cmd

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/blockwatch/spawnerd/jobmgr"
)

// runChildExec decodes the args jobmgr.isolatedRunner.prepare encoded and
// hands off to jobmgr.RunChildExec, which applies cgroup limits and an
// optional pivot_root before running the real command. This only ever runs
// inside the freshly cloned namespaces the parent process set up via
// SysProcAttr.Cloneflags.
func runChildExec(argv []string) error {
	// argv is: <base64-json-args> -- <command> <args...>
	if len(argv) < 2 {
		return fmt.Errorf("spawnerd-child-exec: expected <args> -- <command> [args...]")
	}
	encoded := argv[0]
	sep := 1
	for sep < len(argv) && argv[sep] != "--" {
		sep++
	}
	if sep >= len(argv) {
		return fmt.Errorf("spawnerd-child-exec: missing -- separator")
	}
	commandAndArgs := argv[sep+1:]
	if len(commandAndArgs) == 0 {
		return fmt.Errorf("spawnerd-child-exec: no command given")
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decoding child-exec args: %w", err)
	}
	var args jobmgr.ChildExecArgs
	if err := json.Unmarshal(decoded, &args); err != nil {
		return fmt.Errorf("unmarshaling child-exec args: %w", err)
	}

	return jobmgr.RunChildExec(args, commandAndArgs)
}
