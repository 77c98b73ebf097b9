// Package rpcserver implements the gRPC surface a storage daemon exposes
// around a jobmgr.Manager: submit a helper command, poll or stream its
// output, request cancellation. This is the "surrounding daemon" role the
// supervisor spec explicitly keeps out of its own scope.
package rpcserver

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/blockwatch/spawnerd/job"
	"github.com/blockwatch/spawnerd/jobmgr"
	"github.com/blockwatch/spawnerd/rpcapi"
)

// Server implements rpcapi.JobServiceServer over a jobmgr.Manager, scoping
// every call to the namespace derived from the caller's peer certificate.
type Server struct {
	rpcapi.UnimplementedJobServiceServer
	mgr *jobmgr.Manager
}

// New wraps mgr as a gRPC JobServiceServer.
func New(mgr *jobmgr.Manager) *Server {
	return &Server{mgr: mgr}
}

// namespaceFromContext derives the caller's namespace from the first
// organizational unit on their peer TLS certificate, exactly as
// workergrpc/service.go does for teleworker's multi-tenant mTLS.
func namespaceFromContext(ctx context.Context) (string, error) {
	p, ok := peer.FromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "no peer info available")
	}
	tlsInfo, ok := p.AuthInfo.(credentials.TLSInfo)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "connection is not using TLS")
	}
	if len(tlsInfo.State.PeerCertificates) == 0 {
		return "", status.Error(codes.Unauthenticated, "no client certificate presented")
	}
	ou := tlsInfo.State.PeerCertificates[0].Subject.OrganizationalUnit
	if len(ou) == 0 {
		return "", status.Error(codes.Unauthenticated, "client certificate has no organizational unit")
	}
	return ou[0], nil
}

func toProtoJob(namespace, id string, j *job.Job) *rpcapi.Job {
	out := &rpcapi.Job{
		Namespace:   namespace,
		Id:          id,
		CommandLine: j.CommandLine(),
		Pid:         int64(j.PID()),
		CreatedAt:   timestamppb.New(j.CreatedAt()),
	}
	// Exit code must be read before output so a racing completion never
	// pairs an exit code with output captured before the job finished.
	if code := j.ExitCode(); code != nil {
		out.ExitCode = wrapperspb.Int32(*code)
	}
	select {
	case <-j.Done():
		out.Success = wrapperspb.Bool(j.Outcome().Success)
		out.Message = j.Outcome().Message
		out.Stdout = j.Completion().Stdout
		out.Stderr = j.Completion().Stderr
	default:
		stdout := make([]byte, 1<<20)
		n, _ := j.ReadOutput(false, stdout, 0)
		out.Stdout = stdout[:n]
		stderr := make([]byte, 1<<20)
		n, _ = j.ReadOutput(true, stderr, 0)
		out.Stderr = stderr[:n]
	}
	return out
}

func (s *Server) GetJob(ctx context.Context, req *rpcapi.GetJobRequest) (*rpcapi.GetJobResponse, error) {
	namespace, err := namespaceFromContext(ctx)
	if err != nil {
		return nil, err
	}
	j, ok := s.mgr.GetJob(namespace, req.Id)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "no such job %q", req.Id)
	}
	return &rpcapi.GetJobResponse{Job: toProtoJob(namespace, req.Id, j)}, nil
}

func (s *Server) SubmitJob(ctx context.Context, req *rpcapi.SubmitJobRequest) (*rpcapi.SubmitJobResponse, error) {
	namespace, err := namespaceFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, j, err := s.mgr.Submit(namespace, req.Id, req.CommandLine, req.Input)
	if err != nil {
		return nil, status.Errorf(codes.FailedPrecondition, "submitting job: %s", err)
	}
	return &rpcapi.SubmitJobResponse{Job: toProtoJob(namespace, id, j)}, nil
}

func (s *Server) StopJob(ctx context.Context, req *rpcapi.StopJobRequest) (*rpcapi.StopJobResponse, error) {
	namespace, err := namespaceFromContext(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- s.mgr.Stop(namespace, req.Id, req.Force) }()
	select {
	case err := <-errCh:
		if err != nil {
			return nil, status.Errorf(codes.NotFound, "%s", err)
		}
		return &rpcapi.StopJobResponse{}, nil
	case <-ctx.Done():
		return nil, status.Error(codes.DeadlineExceeded, "stop request timed out")
	}
}

func (s *Server) StreamJobOutput(req *rpcapi.StreamJobOutputRequest, stream rpcapi.JobService_StreamJobOutputServer) error {
	namespace, err := namespaceFromContext(stream.Context())
	if err != nil {
		return err
	}
	j, ok := s.mgr.GetJob(namespace, req.Id)
	if !ok {
		return status.Errorf(codes.NotFound, "no such job %q", req.Id)
	}

	past := toProtoJob(namespace, req.Id, j)
	if err := stream.Send(&rpcapi.StreamJobOutputResponse{Past: past}); err != nil {
		return err
	}

	updates := make(chan struct{}, 1)
	key := fmt.Sprintf("stream-%p", stream)
	j.AddUpdateListener(key, func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	defer j.RemoveUpdateListener(key)

	// Incremental chunks pick up where the Past snapshot's output ended.
	stdoutOff, stderrOff := len(past.Stdout), len(past.Stderr)
	drain := func() error {
		buf := make([]byte, 1<<16)
		for {
			n, _ := j.ReadOutput(false, buf, stdoutOff)
			if n == 0 {
				break
			}
			stdoutOff += n
			if err := stream.Send(&rpcapi.StreamJobOutputResponse{Stdout: append([]byte(nil), buf[:n]...)}); err != nil {
				return err
			}
		}
		for {
			n, _ := j.ReadOutput(true, buf, stderrOff)
			if n == 0 {
				break
			}
			stderrOff += n
			if err := stream.Send(&rpcapi.StreamJobOutputResponse{Stderr: append([]byte(nil), buf[:n]...)}); err != nil {
				return err
			}
		}
		return nil
	}

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case <-j.Done():
			if err := drain(); err != nil {
				return err
			}
			var code *wrapperspb.Int32Value
			if c := j.ExitCode(); c != nil {
				code = wrapperspb.Int32(*c)
			}
			return stream.Send(&rpcapi.StreamJobOutputResponse{CompletedExitCode: code})
		case <-updates:
			if err := drain(); err != nil {
				return err
			}
		}
	}
}
