package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blockwatch/spawnerd/job"
	"github.com/blockwatch/spawnerd/jobmgr"
)

func directExecCmd() *cobra.Command {
	var stdinInput bool
	cmd := &cobra.Command{
		Use:   "direct-exec -- <command> [args...]",
		Short: "Run one command locally under the supervisor, without a daemon",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commandLine := strings.Join(args, " ")

			var input []byte
			if stdinInput {
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				input = b
			}

			mgr, err := jobmgr.New(jobmgr.Config{})
			if err != nil {
				return fmt.Errorf("building job manager: %w", err)
			}
			id, j, err := mgr.Submit("direct-exec", "", commandLine, input)
			if err != nil {
				return fmt.Errorf("submitting job: %w", err)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
			go func() {
				<-sigCh
				_ = mgr.Stop("direct-exec", id, false)
				select {
				case <-j.Done():
				case <-time.After(3 * time.Second):
					j.Kill()
				}
			}()

			<-j.Done()
			drainOutput(j)

			outcome := j.Outcome()
			if !outcome.Success {
				fmt.Fprintln(os.Stderr, outcome.Message)
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stdinInput, "stdin", false, "pipe this process's stdin to the child")
	return cmd
}

func drainOutput(j *job.Job) {
	c := j.Completion()
	if len(c.Stdout) > 0 {
		os.Stdout.Write(c.Stdout)
	}
	if len(c.Stderr) > 0 {
		os.Stderr.Write(c.Stderr)
	}
}
