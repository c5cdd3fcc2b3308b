package pb

import (
	"context"

	"google.golang.org/grpc"
)

const clientAppIoServiceName = "fleetml.ClientAppIo"

// ClientAppIoServer is implemented by internal/rpc/clientappio.Servicer.
type ClientAppIoServer interface {
	PullClientAppInputs(context.Context, *PullClientAppInputsRequest) (*PullClientAppInputsResponse, error)
	PushClientAppOutputs(context.Context, *PushClientAppOutputsRequest) (*PushClientAppOutputsResponse, error)
}

type UnimplementedClientAppIoServer struct{}

func (UnimplementedClientAppIoServer) PullClientAppInputs(context.Context, *PullClientAppInputsRequest) (*PullClientAppInputsResponse, error) {
	return nil, errUnimplemented("PullClientAppInputs")
}
func (UnimplementedClientAppIoServer) PushClientAppOutputs(context.Context, *PushClientAppOutputsRequest) (*PushClientAppOutputsResponse, error) {
	return nil, errUnimplemented("PushClientAppOutputs")
}

func RegisterClientAppIoServer(s grpc.ServiceRegistrar, srv ClientAppIoServer) {
	s.RegisterService(&clientAppIoServiceDesc, srv)
}

var clientAppIoServiceDesc = grpc.ServiceDesc{
	ServiceName: clientAppIoServiceName,
	HandlerType: (*ClientAppIoServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PullClientAppInputs", Handler: clientAppIoPullHandler},
		{MethodName: "PushClientAppOutputs", Handler: clientAppIoPushHandler},
	},
	Metadata: "fleetml/clientappio",
}

func clientAppIoPullHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PullClientAppInputsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClientAppIoServer).PullClientAppInputs(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: clientAppIoServiceName + "/PullClientAppInputs"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClientAppIoServer).PullClientAppInputs(ctx, req.(*PullClientAppInputsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func clientAppIoPushHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PushClientAppOutputsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClientAppIoServer).PushClientAppOutputs(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: clientAppIoServiceName + "/PushClientAppOutputs"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClientAppIoServer).PushClientAppOutputs(ctx, req.(*PushClientAppOutputsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ClientAppIoClient is the workload-process-side stub.
type ClientAppIoClient interface {
	PullClientAppInputs(ctx context.Context, in *PullClientAppInputsRequest, opts ...grpc.CallOption) (*PullClientAppInputsResponse, error)
	PushClientAppOutputs(ctx context.Context, in *PushClientAppOutputsRequest, opts ...grpc.CallOption) (*PushClientAppOutputsResponse, error)
}

type clientAppIoClient struct {
	cc grpc.ClientConnInterface
}

func NewClientAppIoClient(cc grpc.ClientConnInterface) ClientAppIoClient {
	return &clientAppIoClient{cc: cc}
}

func (c *clientAppIoClient) PullClientAppInputs(ctx context.Context, in *PullClientAppInputsRequest, opts ...grpc.CallOption) (*PullClientAppInputsResponse, error) {
	out := new(PullClientAppInputsResponse)
	if err := c.cc.Invoke(ctx, clientAppIoServiceName+"/PullClientAppInputs", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clientAppIoClient) PushClientAppOutputs(ctx context.Context, in *PushClientAppOutputsRequest, opts ...grpc.CallOption) (*PushClientAppOutputsResponse, error) {
	out := new(PushClientAppOutputsResponse)
	if err := c.cc.Invoke(ctx, clientAppIoServiceName+"/PushClientAppOutputs", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
