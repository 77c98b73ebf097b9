// Package cmd wires the daemon and its CLI client together: serve, submit,
// get, stop, tail, gen-cert, direct-exec, and the hidden re-exec child
// entrypoint used by the resource-isolated runner.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the root command. It special-cases the hidden re-exec
// subcommand so it never goes through cobra's flag parsing for the
// wrapped target command's own arguments, dispatching child-exec before
// the cobra tree is even built.
func Execute() {
	if len(os.Args) > 1 && os.Args[1] == "spawnerd-child-exec" {
		if err := runChildExec(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "spawnerd",
		Short: "Spawn and supervise storage-helper commands over mTLS gRPC",
	}
	root.AddCommand(serveCmd())
	root.AddCommand(genCertCmd())
	root.AddCommand(directExecCmd())
	root.AddCommand(submitCmd())
	root.AddCommand(getCmd())
	root.AddCommand(stopCmd())
	root.AddCommand(tailCmd())
	return root
}
