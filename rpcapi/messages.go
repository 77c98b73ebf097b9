// Package rpcapi holds the wire messages and gRPC service definition for
// the daemon's external RPC surface: submit a helper command, poll or
// stream its output, request cancellation. The supervisor itself has none
// of this — see DESIGN.md for why these are hand-authored in the pre-APIv2
// protoc-gen-go struct-tag shape rather than generated.
package rpcapi

import (
	"fmt"

	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Job is the wire representation of one job.Job, as served by GetJob,
// SubmitJob and StreamJobOutput.
type Job struct {
	Namespace   string                 `protobuf:"bytes,1,opt,name=namespace,proto3" json:"namespace,omitempty"`
	Id          string                 `protobuf:"bytes,2,opt,name=id,proto3" json:"id,omitempty"`
	CommandLine string                 `protobuf:"bytes,3,opt,name=command_line,json=commandLine,proto3" json:"command_line,omitempty"`
	Pid         int64                  `protobuf:"varint,4,opt,name=pid,proto3" json:"pid,omitempty"`
	CreatedAt   *timestamppb.Timestamp `protobuf:"bytes,5,opt,name=created_at,json=createdAt,proto3" json:"created_at,omitempty"`
	ExitCode    *wrapperspb.Int32Value `protobuf:"bytes,6,opt,name=exit_code,json=exitCode,proto3" json:"exit_code,omitempty"`
	Success     *wrapperspb.BoolValue  `protobuf:"bytes,7,opt,name=success,proto3" json:"success,omitempty"`
	Message     string                 `protobuf:"bytes,8,opt,name=message,proto3" json:"message,omitempty"`
	Stdout      []byte                 `protobuf:"bytes,9,opt,name=stdout,proto3" json:"stdout,omitempty"`
	Stderr      []byte                 `protobuf:"bytes,10,opt,name=stderr,proto3" json:"stderr,omitempty"`
}

func (m *Job) Reset()         { *m = Job{} }
func (m *Job) String() string { return fmt.Sprintf("%+v", *m) }
func (*Job) ProtoMessage()    {}

// GetJobRequest identifies one job by namespace and ID.
type GetJobRequest struct {
	Namespace string `protobuf:"bytes,1,opt,name=namespace,proto3" json:"namespace,omitempty"`
	Id        string `protobuf:"bytes,2,opt,name=id,proto3" json:"id,omitempty"`
}

func (m *GetJobRequest) Reset()         { *m = GetJobRequest{} }
func (m *GetJobRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*GetJobRequest) ProtoMessage()    {}

// GetJobResponse carries the current snapshot of the requested job.
type GetJobResponse struct {
	Job *Job `protobuf:"bytes,1,opt,name=job,proto3" json:"job,omitempty"`
}

func (m *GetJobResponse) Reset()         { *m = GetJobResponse{} }
func (m *GetJobResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*GetJobResponse) ProtoMessage()    {}

// SubmitJobRequest asks the daemon to spawn commandLine. Id may be empty,
// in which case the daemon generates one and returns it in the response.
type SubmitJobRequest struct {
	Namespace   string `protobuf:"bytes,1,opt,name=namespace,proto3" json:"namespace,omitempty"`
	Id          string `protobuf:"bytes,2,opt,name=id,proto3" json:"id,omitempty"`
	CommandLine string `protobuf:"bytes,3,opt,name=command_line,json=commandLine,proto3" json:"command_line,omitempty"`
	Input       []byte `protobuf:"bytes,4,opt,name=input,proto3" json:"input,omitempty"`
}

func (m *SubmitJobRequest) Reset()         { *m = SubmitJobRequest{} }
func (m *SubmitJobRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*SubmitJobRequest) ProtoMessage()    {}

// SubmitJobResponse carries the job as spawned, with its resolved ID.
type SubmitJobResponse struct {
	Job *Job `protobuf:"bytes,1,opt,name=job,proto3" json:"job,omitempty"`
}

func (m *SubmitJobResponse) Reset()         { *m = SubmitJobResponse{} }
func (m *SubmitJobResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*SubmitJobResponse) ProtoMessage()    {}

// StopJobRequest asks the daemon to cancel a running job. Force requests an
// immediate SIGKILL rather than the supervisor's own graceful release.
type StopJobRequest struct {
	Namespace string `protobuf:"bytes,1,opt,name=namespace,proto3" json:"namespace,omitempty"`
	Id        string `protobuf:"bytes,2,opt,name=id,proto3" json:"id,omitempty"`
	Force     bool   `protobuf:"varint,3,opt,name=force,proto3" json:"force,omitempty"`
}

func (m *StopJobRequest) Reset()         { *m = StopJobRequest{} }
func (m *StopJobRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*StopJobRequest) ProtoMessage()    {}

// StopJobResponse is empty; success is signaled by the RPC status alone.
type StopJobResponse struct{}

func (m *StopJobResponse) Reset()         { *m = StopJobResponse{} }
func (m *StopJobResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*StopJobResponse) ProtoMessage()    {}

// StreamJobOutputRequest opens a live tail of one job's output.
type StreamJobOutputRequest struct {
	Namespace string `protobuf:"bytes,1,opt,name=namespace,proto3" json:"namespace,omitempty"`
	Id        string `protobuf:"bytes,2,opt,name=id,proto3" json:"id,omitempty"`
}

func (m *StreamJobOutputRequest) Reset()         { *m = StreamJobOutputRequest{} }
func (m *StreamJobOutputRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*StreamJobOutputRequest) ProtoMessage()    {}

// StreamJobOutputResponse is a one-of: the initial message carries Past (a
// full Job snapshot including whatever output has already accumulated),
// subsequent messages carry incremental Stdout/Stderr chunks, and the final
// message is sent once the job has finished, carrying CompletedExitCode if
// the child exited normally and leaving it unset otherwise.
type StreamJobOutputResponse struct {
	Past              *Job                   `protobuf:"bytes,1,opt,name=past,proto3,oneof" json:"past,omitempty"`
	Stdout            []byte                 `protobuf:"bytes,2,opt,name=stdout,proto3,oneof" json:"stdout,omitempty"`
	Stderr            []byte                 `protobuf:"bytes,3,opt,name=stderr,proto3,oneof" json:"stderr,omitempty"`
	CompletedExitCode *wrapperspb.Int32Value `protobuf:"bytes,4,opt,name=completed_exit_code,json=completedExitCode,proto3,oneof" json:"completed_exit_code,omitempty"`
}

func (m *StreamJobOutputResponse) Reset()         { *m = StreamJobOutputResponse{} }
func (m *StreamJobOutputResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*StreamJobOutputResponse) ProtoMessage()    {}
