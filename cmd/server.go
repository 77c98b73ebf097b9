package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/blockwatch/spawnerd/internal/certutil"
	"github.com/blockwatch/spawnerd/internal/joblog"
	"github.com/blockwatch/spawnerd/jobmgr"
	"github.com/blockwatch/spawnerd/rpcapi"
	"github.com/blockwatch/spawnerd/rpcserver"
)

func serveCmd() *cobra.Command {
	var (
		listenAddr    string
		clientCACert  string
		serverCert    string
		serverKey     string
		withoutLimits bool
		cpuQuota      int64
		memoryMax     uint64
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the job-supervisor daemon and its mTLS gRPC listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			caPEM, err := os.ReadFile(clientCACert)
			if err != nil {
				return fmt.Errorf("reading client CA cert: %w", err)
			}
			certPEM, err := os.ReadFile(serverCert)
			if err != nil {
				return fmt.Errorf("reading server cert: %w", err)
			}
			keyPEM, err := os.ReadFile(serverKey)
			if err != nil {
				return fmt.Errorf("reading server key: %w", err)
			}
			creds, err := certutil.MTLSServerCredentials(caPEM, certPEM, keyPEM)
			if err != nil {
				return fmt.Errorf("building server credentials: %w", err)
			}

			var limits *jobmgr.ResourceLimits
			if !withoutLimits {
				limits = &jobmgr.ResourceLimits{
					CPUMaxPeriod: 100000,
					CPUMaxQuota:  cpuQuota,
					MemoryMax:    memoryMax,
					IsolatePID:   true,
					IsolateMount: true,
				}
			}
			mgr, err := jobmgr.New(jobmgr.Config{Limits: limits})
			if err != nil {
				return fmt.Errorf("building job manager: %w", err)
			}

			lis, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", listenAddr, err)
			}

			grpcServer := grpc.NewServer(grpc.Creds(creds))
			rpcapi.RegisterJobServiceServer(grpcServer, rpcserver.New(mgr))

			serveErr := make(chan error, 1)
			go func() { serveErr <- grpcServer.Serve(lis) }()
			joblog.Infof("listening on %s", listenAddr)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

			select {
			case err := <-serveErr:
				return fmt.Errorf("serving: %w", err)
			case <-sigCh:
				joblog.Infof("received shutdown signal, draining jobs")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := mgr.Shutdown(ctx, false); err != nil {
				joblog.Warnf("graceful shutdown incomplete, forcing: %s", err)
				forceCtx, forceCancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer forceCancel()
				_ = mgr.Shutdown(forceCtx, true)
			}
			grpcServer.GracefulStop()
			return nil
		},
	}
	cmd.Flags().StringVar(&listenAddr, "listen", ":7443", "address to listen on")
	cmd.Flags().StringVar(&clientCACert, "client-ca-cert", "", "path to the client CA certificate PEM")
	cmd.Flags().StringVar(&serverCert, "server-cert", "", "path to the server certificate PEM")
	cmd.Flags().StringVar(&serverKey, "server-key", "", "path to the server key PEM")
	cmd.Flags().BoolVar(&withoutLimits, "without-limits", false, "disable resource isolation for submitted jobs")
	cmd.Flags().Int64Var(&cpuQuota, "cpu-quota", 20000, "cpu.cfs_quota_us for isolated jobs")
	cmd.Flags().Uint64Var(&memoryMax, "memory-max", 128*1024*1024, "memory.limit_in_bytes for isolated jobs")
	return cmd
}
