//go:build linux
// +build linux

package tests

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blockwatch/spawnerd/internal/certutil"
	"github.com/blockwatch/spawnerd/jobmgr"
	"github.com/blockwatch/spawnerd/rpcapi"
	"github.com/blockwatch/spawnerd/rpcserver"
)

// TODO: intentionally limited coverage, all folded into one scenario test;
// a more thorough suite would exercise each RPC in isolation.
func TestServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	srv := startServer(t)
	defer srv.Stop()

	client1 := dialClient(t, srv, "client1")
	defer client1.Close()
	client2 := dialClient(t, srv, "client2")
	defer client2.Close()

	job1 := client1.submitAndWait(t, ctx, "sh -c 'echo -n stdout1 && echo -n stderr1 1>&2 && exit 101'")
	job2 := client2.submitAndWait(t, ctx, "sh -c 'echo -n stdout2 && echo -n stderr2 1>&2 && exit 102'")

	require.NotEmpty(t, job1.Id)
	require.NotEmpty(t, job1.CommandLine)
	require.NotNil(t, job1.CreatedAt)
	require.NotZero(t, job1.Pid)

	getJobResp, err := client1.GetJob(ctx, &rpcapi.GetJobRequest{Id: job1.Id})
	require.NoError(t, err)
	require.Equal(t, "stdout1", string(getJobResp.Job.Stdout))
	require.Equal(t, "stderr1", string(getJobResp.Job.Stderr))
	require.Equal(t, 101, int(getJobResp.Job.ExitCode.GetValue()))

	streamResp, err := client1.StreamJobOutput(ctx, &rpcapi.StreamJobOutputRequest{Id: job1.Id})
	require.NoError(t, err)
	var streamStdout, streamStderr []byte
	var exitCode int
	for {
		msg, err := streamResp.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if msg.Past != nil && msg.Past.ExitCode != nil {
			exitCode = int(msg.Past.ExitCode.GetValue())
			streamStdout = append(streamStdout, msg.Past.Stdout...)
			streamStderr = append(streamStderr, msg.Past.Stderr...)
			continue
		}
		streamStdout = append(streamStdout, msg.Stdout...)
		streamStderr = append(streamStderr, msg.Stderr...)
		if msg.CompletedExitCode != nil {
			exitCode = int(msg.CompletedExitCode.GetValue())
		}
	}
	require.Equal(t, "stdout1", string(streamStdout))
	require.Equal(t, "stderr1", string(streamStderr))
	require.Equal(t, 101, exitCode)

	getJobResp, err = client2.GetJob(ctx, &rpcapi.GetJobRequest{Id: job2.Id})
	require.NoError(t, err)
	require.Equal(t, "stdout2", string(getJobResp.Job.Stdout))
	require.Equal(t, "stderr2", string(getJobResp.Job.Stderr))
	require.Equal(t, 102, int(getJobResp.Job.ExitCode.GetValue()))

	// client1 cannot see client2's job: namespaces are isolated per OU.
	_, err = client1.GetJob(ctx, &rpcapi.GetJobRequest{Id: job2.Id})
	require.Equal(t, codes.NotFound, status.Code(err))

	// A client signed by the wrong CA never completes the handshake.
	srv.clientCACert = srv.serverCACert
	srv.clientCAKey = srv.serverCAKey
	client3 := dialClient(t, srv, "client3")
	defer client3.Close()
	_, err = client3.GetJob(ctx, &rpcapi.GetJobRequest{Id: "some id"})
	require.Equal(t, codes.Unavailable, status.Code(err))
}

type server struct {
	*grpc.Server
	addr         string
	serverCACert []byte
	serverCAKey  []byte
	clientCACert []byte
	clientCAKey  []byte
}

func startServer(t *testing.T) *server {
	serverCACert, serverCAKey, err := certutil.GenerateCertificate(certutil.GenerateCertificateConfig{CA: true})
	require.NoError(t, err)
	cert, key, err := certutil.GenerateCertificate(certutil.GenerateCertificateConfig{
		SignerCert: serverCACert,
		SignerKey:  serverCAKey,
		ServerHost: "127.0.0.1",
	})
	require.NoError(t, err)
	clientCACert, clientCAKey, err := certutil.GenerateCertificate(certutil.GenerateCertificateConfig{CA: true})
	require.NoError(t, err)

	mgr, err := jobmgr.New(jobmgr.Config{})
	require.NoError(t, err)

	creds, err := certutil.MTLSServerCredentials(clientCACert, cert, key)
	require.NoError(t, err)
	srv := grpc.NewServer(grpc.Creds(creds))
	rpcapi.RegisterJobServiceServer(srv, rpcserver.New(mgr))
	l, err := net.Listen("tcp", "127.0.0.1:")
	require.NoError(t, err)
	go srv.Serve(l)
	return &server{
		Server:       srv,
		addr:         l.Addr().String(),
		serverCACert: serverCACert,
		serverCAKey:  serverCAKey,
		clientCACert: clientCACert,
		clientCAKey:  clientCAKey,
	}
}

type client struct {
	*grpc.ClientConn
	rpcapi.JobServiceClient
}

func dialClient(t *testing.T, s *server, ouNamespace string) *client {
	cert, key, err := certutil.GenerateCertificate(certutil.GenerateCertificateConfig{
		SignerCert: s.clientCACert,
		SignerKey:  s.clientCAKey,
		OU:         ouNamespace,
	})
	require.NoError(t, err)
	creds, err := certutil.MTLSClientCredentials(s.serverCACert, cert, key)
	require.NoError(t, err)
	conn, err := grpc.Dial(s.addr, grpc.WithTransportCredentials(creds))
	require.NoError(t, err)
	return &client{ClientConn: conn, JobServiceClient: rpcapi.NewJobServiceClient(conn)}
}

func (c *client) submitAndWait(t *testing.T, ctx context.Context, commandLine string) *rpcapi.Job {
	resp, err := c.SubmitJob(ctx, &rpcapi.SubmitJobRequest{CommandLine: commandLine})
	require.NoError(t, err)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			require.NoError(t, ctx.Err())
		case <-ticker.C:
			job, err := c.GetJob(ctx, &rpcapi.GetJobRequest{Id: resp.Job.Id})
			require.NoError(t, err)
			if job.Job.ExitCode != nil {
				return job.Job
			}
		}
	}
}
