package rpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// JobServiceClient is the client API for JobService.
type JobServiceClient interface {
	GetJob(ctx context.Context, in *GetJobRequest, opts ...grpc.CallOption) (*GetJobResponse, error)
	SubmitJob(ctx context.Context, in *SubmitJobRequest, opts ...grpc.CallOption) (*SubmitJobResponse, error)
	StopJob(ctx context.Context, in *StopJobRequest, opts ...grpc.CallOption) (*StopJobResponse, error)
	StreamJobOutput(ctx context.Context, in *StreamJobOutputRequest, opts ...grpc.CallOption) (JobService_StreamJobOutputClient, error)
}

type jobServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewJobServiceClient builds a client around an existing connection.
func NewJobServiceClient(cc grpc.ClientConnInterface) JobServiceClient {
	return &jobServiceClient{cc}
}

func (c *jobServiceClient) GetJob(ctx context.Context, in *GetJobRequest, opts ...grpc.CallOption) (*GetJobResponse, error) {
	out := new(GetJobResponse)
	if err := c.cc.Invoke(ctx, "/rpcapi.JobService/GetJob", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *jobServiceClient) SubmitJob(ctx context.Context, in *SubmitJobRequest, opts ...grpc.CallOption) (*SubmitJobResponse, error) {
	out := new(SubmitJobResponse)
	if err := c.cc.Invoke(ctx, "/rpcapi.JobService/SubmitJob", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *jobServiceClient) StopJob(ctx context.Context, in *StopJobRequest, opts ...grpc.CallOption) (*StopJobResponse, error) {
	out := new(StopJobResponse)
	if err := c.cc.Invoke(ctx, "/rpcapi.JobService/StopJob", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *jobServiceClient) StreamJobOutput(ctx context.Context, in *StreamJobOutputRequest, opts ...grpc.CallOption) (JobService_StreamJobOutputClient, error) {
	stream, err := c.cc.NewStream(ctx, &JobService_ServiceDesc.Streams[0], "/rpcapi.JobService/StreamJobOutput", opts...)
	if err != nil {
		return nil, err
	}
	x := &jobServiceStreamJobOutputClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// JobService_StreamJobOutputClient is the client-side stream handle for
// StreamJobOutput.
type JobService_StreamJobOutputClient interface {
	Recv() (*StreamJobOutputResponse, error)
	grpc.ClientStream
}

type jobServiceStreamJobOutputClient struct {
	grpc.ClientStream
}

func (x *jobServiceStreamJobOutputClient) Recv() (*StreamJobOutputResponse, error) {
	m := new(StreamJobOutputResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// JobServiceServer is the server API for JobService.
type JobServiceServer interface {
	GetJob(context.Context, *GetJobRequest) (*GetJobResponse, error)
	SubmitJob(context.Context, *SubmitJobRequest) (*SubmitJobResponse, error)
	StopJob(context.Context, *StopJobRequest) (*StopJobResponse, error)
	StreamJobOutput(*StreamJobOutputRequest, JobService_StreamJobOutputServer) error
}

// UnimplementedJobServiceServer can be embedded for forward compatibility.
type UnimplementedJobServiceServer struct{}

func (UnimplementedJobServiceServer) GetJob(context.Context, *GetJobRequest) (*GetJobResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetJob not implemented")
}
func (UnimplementedJobServiceServer) SubmitJob(context.Context, *SubmitJobRequest) (*SubmitJobResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SubmitJob not implemented")
}
func (UnimplementedJobServiceServer) StopJob(context.Context, *StopJobRequest) (*StopJobResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method StopJob not implemented")
}
func (UnimplementedJobServiceServer) StreamJobOutput(*StreamJobOutputRequest, JobService_StreamJobOutputServer) error {
	return status.Errorf(codes.Unimplemented, "method StreamJobOutput not implemented")
}

// RegisterJobServiceServer registers srv with s.
func RegisterJobServiceServer(s grpc.ServiceRegistrar, srv JobServiceServer) {
	s.RegisterService(&JobService_ServiceDesc, srv)
}

func _JobService_GetJob_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetJobRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(JobServiceServer).GetJob(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/rpcapi.JobService/GetJob"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(JobServiceServer).GetJob(ctx, req.(*GetJobRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _JobService_SubmitJob_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SubmitJobRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(JobServiceServer).SubmitJob(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/rpcapi.JobService/SubmitJob"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(JobServiceServer).SubmitJob(ctx, req.(*SubmitJobRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _JobService_StopJob_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StopJobRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(JobServiceServer).StopJob(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/rpcapi.JobService/StopJob"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(JobServiceServer).StopJob(ctx, req.(*StopJobRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _JobService_StreamJobOutput_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(StreamJobOutputRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(JobServiceServer).StreamJobOutput(m, &jobServiceStreamJobOutputServer{stream})
}

// JobService_StreamJobOutputServer is the server-side stream handle for
// StreamJobOutput.
type JobService_StreamJobOutputServer interface {
	Send(*StreamJobOutputResponse) error
	grpc.ServerStream
}

type jobServiceStreamJobOutputServer struct {
	grpc.ServerStream
}

func (x *jobServiceStreamJobOutputServer) Send(m *StreamJobOutputResponse) error {
	return x.ServerStream.SendMsg(m)
}

// JobService_ServiceDesc is the grpc.ServiceDesc for JobService.
var JobService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "rpcapi.JobService",
	HandlerType: (*JobServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetJob", Handler: _JobService_GetJob_Handler},
		{MethodName: "SubmitJob", Handler: _JobService_SubmitJob_Handler},
		{MethodName: "StopJob", Handler: _JobService_StopJob_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamJobOutput",
			Handler:       _JobService_StreamJobOutput_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "rpcapi/service.proto",
}
