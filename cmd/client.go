package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/blockwatch/spawnerd/internal/certutil"
	"github.com/blockwatch/spawnerd/rpcapi"
)

// clientFlags holds the connection and mTLS material every remote client
// subcommand needs, registered once per command via addClientFlags.
type clientFlags struct {
	address  string
	serverCA string
	cert     string
	key      string
	timeout  time.Duration
}

func addClientFlags(cmd *cobra.Command, f *clientFlags) {
	cmd.Flags().StringVar(&f.address, "address", "127.0.0.1:7443", "daemon address")
	cmd.Flags().StringVar(&f.serverCA, "server-ca-cert", "", "path to the server CA certificate PEM")
	cmd.Flags().StringVar(&f.cert, "client-cert", "", "path to the client certificate PEM")
	cmd.Flags().StringVar(&f.key, "client-key", "", "path to the client key PEM")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 10*time.Second, "per-call RPC timeout")
}

// dialClient builds an mTLS gRPC connection to the daemon described by f.
func (f *clientFlags) dialClient() (*grpc.ClientConn, rpcapi.JobServiceClient, error) {
	caPEM, err := os.ReadFile(f.serverCA)
	if err != nil {
		return nil, nil, fmt.Errorf("reading server CA cert: %w", err)
	}
	certPEM, err := os.ReadFile(f.cert)
	if err != nil {
		return nil, nil, fmt.Errorf("reading client cert: %w", err)
	}
	keyPEM, err := os.ReadFile(f.key)
	if err != nil {
		return nil, nil, fmt.Errorf("reading client key: %w", err)
	}
	creds, err := certutil.MTLSClientCredentials(caPEM, certPEM, keyPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("building client credentials: %w", err)
	}
	conn, err := grpc.Dial(f.address, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, nil, fmt.Errorf("dialing %s: %w", f.address, err)
	}
	return conn, rpcapi.NewJobServiceClient(conn), nil
}

// dumpJob prints a plain formatted rendition of a job snapshot. rpcapi's
// messages are hand-authored struct-tag types, not real proto.Message v2
// values, so there is no prototext.Format to lean on here.
func dumpJob(j *rpcapi.Job) {
	if j == nil {
		fmt.Println("<no job>")
		return
	}
	fmt.Printf("id:           %s\n", j.Id)
	fmt.Printf("namespace:    %s\n", j.Namespace)
	fmt.Printf("command:      %s\n", j.CommandLine)
	fmt.Printf("pid:          %d\n", j.Pid)
	if j.CreatedAt != nil {
		fmt.Printf("created at:   %s\n", j.CreatedAt.AsTime().Format(time.RFC3339))
	}
	if j.ExitCode != nil {
		fmt.Printf("exit code:    %d\n", j.ExitCode.Value)
	}
	if j.Success != nil {
		fmt.Printf("success:      %v\n", j.Success.Value)
	}
	if j.Message != "" {
		fmt.Printf("message:      %s\n", j.Message)
	}
	if len(j.Stdout) > 0 {
		fmt.Printf("stdout:\n%s\n", j.Stdout)
	}
	if len(j.Stderr) > 0 {
		fmt.Printf("stderr:\n%s\n", j.Stderr)
	}
}

func submitCmd() *cobra.Command {
	f := &clientFlags{}
	var namespace, id string
	var stdinInput bool
	cmd := &cobra.Command{
		Use:   "submit -- <command line>",
		Short: "Submit a command to a running daemon",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, client, err := f.dialClient()
			if err != nil {
				return err
			}
			defer conn.Close()

			var input []byte
			if stdinInput {
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				input = b
			}

			ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
			defer cancel()
			resp, err := client.SubmitJob(ctx, &rpcapi.SubmitJobRequest{
				Namespace:   namespace,
				Id:          id,
				CommandLine: joinArgs(args),
				Input:       input,
			})
			if err != nil {
				return fmt.Errorf("submitting job: %w", err)
			}
			dumpJob(resp.Job)
			return nil
		},
	}
	addClientFlags(cmd, f)
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace to submit into")
	cmd.Flags().StringVar(&id, "id", "", "job ID to use (a UUID is generated if empty)")
	cmd.Flags().BoolVar(&stdinInput, "stdin", false, "pipe this process's stdin to the child")
	return cmd
}

func getCmd() *cobra.Command {
	f := &clientFlags{}
	var namespace, id string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch a job's current snapshot from a running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, client, err := f.dialClient()
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
			defer cancel()
			resp, err := client.GetJob(ctx, &rpcapi.GetJobRequest{Namespace: namespace, Id: id})
			if err != nil {
				return fmt.Errorf("getting job: %w", err)
			}
			dumpJob(resp.Job)
			return nil
		},
	}
	addClientFlags(cmd, f)
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace the job was submitted into")
	cmd.Flags().StringVar(&id, "id", "", "job ID")
	return cmd
}

func stopCmd() *cobra.Command {
	f := &clientFlags{}
	var namespace, id string
	var force bool
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Cancel a running job on a running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, client, err := f.dialClient()
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
			defer cancel()
			_, err = client.StopJob(ctx, &rpcapi.StopJobRequest{Namespace: namespace, Id: id, Force: force})
			if err != nil {
				return fmt.Errorf("stopping job: %w", err)
			}
			fmt.Println("stopped")
			return nil
		},
	}
	addClientFlags(cmd, f)
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace the job was submitted into")
	cmd.Flags().StringVar(&id, "id", "", "job ID")
	cmd.Flags().BoolVar(&force, "force", false, "SIGKILL immediately instead of waiting on graceful release")
	return cmd
}

func tailCmd() *cobra.Command {
	f := &clientFlags{}
	var namespace, id string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Stream a job's output live from a running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, client, err := f.dialClient()
			if err != nil {
				return err
			}
			defer conn.Close()

			// Streaming has no natural deadline of its own; it runs until
			// the job completes or the user interrupts the command.
			stream, err := client.StreamJobOutput(context.Background(), &rpcapi.StreamJobOutputRequest{
				Namespace: namespace,
				Id:        id,
			})
			if err != nil {
				return fmt.Errorf("opening stream: %w", err)
			}

			for {
				msg, err := stream.Recv()
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return fmt.Errorf("receiving: %w", err)
				}
				if msg.Past != nil {
					dumpJob(msg.Past)
				}
				if len(msg.Stdout) > 0 {
					os.Stdout.Write(msg.Stdout)
				}
				if len(msg.Stderr) > 0 {
					os.Stderr.Write(msg.Stderr)
				}
				if msg.CompletedExitCode != nil {
					fmt.Printf("job completed, exit code %d\n", msg.CompletedExitCode.Value)
					return nil
				}
			}
		},
	}
	addClientFlags(cmd, f)
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace the job was submitted into")
	cmd.Flags().StringVar(&id, "id", "", "job ID")
	return cmd
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
