package pb

import (
	"context"

	"google.golang.org/grpc"
)

const execServiceName = "fleetml.Exec"

// ExecServer is implemented by internal/rpc/exec.Servicer.
type ExecServer interface {
	StartRun(context.Context, *StartRunRequest) (*StartRunResponse, error)
	StreamLogs(*StreamLogsRequest, ExecStreamLogsServer) error
}

type UnimplementedExecServer struct{}

func (UnimplementedExecServer) StartRun(context.Context, *StartRunRequest) (*StartRunResponse, error) {
	return nil, errUnimplemented("StartRun")
}
func (UnimplementedExecServer) StreamLogs(*StreamLogsRequest, ExecStreamLogsServer) error {
	return errUnimplemented("StreamLogs")
}

// ExecStreamLogsServer is the server-side handle for the StreamLogs
// server-streaming RPC.
type ExecStreamLogsServer interface {
	Send(*StreamLogsResponse) error
	grpc.ServerStream
}

type execStreamLogsServer struct {
	grpc.ServerStream
}

func (s *execStreamLogsServer) Send(m *StreamLogsResponse) error {
	return s.ServerStream.SendMsg(m)
}

func RegisterExecServer(s grpc.ServiceRegistrar, srv ExecServer) {
	s.RegisterService(&execServiceDesc, srv)
}

var execServiceDesc = grpc.ServiceDesc{
	ServiceName: execServiceName,
	HandlerType: (*ExecServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StartRun", Handler: execStartRunHandler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamLogs",
			Handler:       execStreamLogsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "fleetml/exec",
}

func execStartRunHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StartRunRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExecServer).StartRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: execServiceName + "/StartRun"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExecServer).StartRun(ctx, req.(*StartRunRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func execStreamLogsHandler(srv any, stream grpc.ServerStream) error {
	in := new(StreamLogsRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ExecServer).StreamLogs(in, &execStreamLogsServer{ServerStream: stream})
}

// ExecClient is the operator-facing stub for the Exec service.
type ExecClient interface {
	StartRun(ctx context.Context, in *StartRunRequest, opts ...grpc.CallOption) (*StartRunResponse, error)
	StreamLogs(ctx context.Context, in *StreamLogsRequest, opts ...grpc.CallOption) (ExecStreamLogsClient, error)
}

type ExecStreamLogsClient interface {
	Recv() (*StreamLogsResponse, error)
	grpc.ClientStream
}

type execStreamLogsClient struct {
	grpc.ClientStream
}

func (c *execStreamLogsClient) Recv() (*StreamLogsResponse, error) {
	m := new(StreamLogsResponse)
	if err := c.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

type execClient struct {
	cc grpc.ClientConnInterface
}

func NewExecClient(cc grpc.ClientConnInterface) ExecClient {
	return &execClient{cc: cc}
}

func (c *execClient) StartRun(ctx context.Context, in *StartRunRequest, opts ...grpc.CallOption) (*StartRunResponse, error) {
	out := new(StartRunResponse)
	if err := c.cc.Invoke(ctx, execServiceName+"/StartRun", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *execClient) StreamLogs(ctx context.Context, in *StreamLogsRequest, opts ...grpc.CallOption) (ExecStreamLogsClient, error) {
	stream, err := c.cc.NewStream(ctx, &execServiceDesc.Streams[0], execServiceName+"/StreamLogs", opts...)
	if err != nil {
		return nil, err
	}
	cs := &execStreamLogsClient{ClientStream: stream}
	if err := cs.SendMsg(in); err != nil {
		return nil, err
	}
	if err := cs.CloseSend(); err != nil {
		return nil, err
	}
	return cs, nil
}
