package pb

import (
	"context"

	"google.golang.org/grpc"
)

const driverServiceName = "fleetml.Driver"

// DriverServer is implemented by internal/rpc/driver.Servicer.
type DriverServer interface {
	PushTaskIns(context.Context, *PushTaskInsRequest) (*PushTaskInsResponse, error)
	PullTaskRes(context.Context, *PullTaskResRequest) (*PullTaskResResponse, error)
	GetNodes(context.Context, *GetNodesRequest) (*GetNodesResponse, error)
	GetRun(context.Context, *GetRunRequest) (*GetRunResponse, error)
}

type UnimplementedDriverServer struct{}

func (UnimplementedDriverServer) PushTaskIns(context.Context, *PushTaskInsRequest) (*PushTaskInsResponse, error) {
	return nil, errUnimplemented("PushTaskIns")
}
func (UnimplementedDriverServer) PullTaskRes(context.Context, *PullTaskResRequest) (*PullTaskResResponse, error) {
	return nil, errUnimplemented("PullTaskRes")
}
func (UnimplementedDriverServer) GetNodes(context.Context, *GetNodesRequest) (*GetNodesResponse, error) {
	return nil, errUnimplemented("GetNodes")
}
func (UnimplementedDriverServer) GetRun(context.Context, *GetRunRequest) (*GetRunResponse, error) {
	return nil, errUnimplemented("GetRun")
}

func RegisterDriverServer(s grpc.ServiceRegistrar, srv DriverServer) {
	s.RegisterService(&driverServiceDesc, srv)
}

var driverServiceDesc = grpc.ServiceDesc{
	ServiceName: driverServiceName,
	HandlerType: (*DriverServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PushTaskIns", Handler: driverPushTaskInsHandler},
		{MethodName: "PullTaskRes", Handler: driverPullTaskResHandler},
		{MethodName: "GetNodes", Handler: driverGetNodesHandler},
		{MethodName: "GetRun", Handler: driverGetRunHandler},
	},
	Metadata: "fleetml/driver",
}

func driverPushTaskInsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PushTaskInsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DriverServer).PushTaskIns(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: driverServiceName + "/PushTaskIns"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DriverServer).PushTaskIns(ctx, req.(*PushTaskInsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func driverPullTaskResHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PullTaskResRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DriverServer).PullTaskRes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: driverServiceName + "/PullTaskRes"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DriverServer).PullTaskRes(ctx, req.(*PullTaskResRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func driverGetNodesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetNodesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DriverServer).GetNodes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: driverServiceName + "/GetNodes"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DriverServer).GetNodes(ctx, req.(*GetNodesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func driverGetRunHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetRunRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DriverServer).GetRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: driverServiceName + "/GetRun"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DriverServer).GetRun(ctx, req.(*GetRunRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// DriverClient is the fleetctl-facing stub for the Driver service.
type DriverClient interface {
	PushTaskIns(ctx context.Context, in *PushTaskInsRequest, opts ...grpc.CallOption) (*PushTaskInsResponse, error)
	PullTaskRes(ctx context.Context, in *PullTaskResRequest, opts ...grpc.CallOption) (*PullTaskResResponse, error)
	GetNodes(ctx context.Context, in *GetNodesRequest, opts ...grpc.CallOption) (*GetNodesResponse, error)
	GetRun(ctx context.Context, in *GetRunRequest, opts ...grpc.CallOption) (*GetRunResponse, error)
}

type driverClient struct {
	cc grpc.ClientConnInterface
}

func NewDriverClient(cc grpc.ClientConnInterface) DriverClient {
	return &driverClient{cc: cc}
}

func (c *driverClient) PushTaskIns(ctx context.Context, in *PushTaskInsRequest, opts ...grpc.CallOption) (*PushTaskInsResponse, error) {
	out := new(PushTaskInsResponse)
	if err := c.cc.Invoke(ctx, driverServiceName+"/PushTaskIns", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *driverClient) PullTaskRes(ctx context.Context, in *PullTaskResRequest, opts ...grpc.CallOption) (*PullTaskResResponse, error) {
	out := new(PullTaskResResponse)
	if err := c.cc.Invoke(ctx, driverServiceName+"/PullTaskRes", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *driverClient) GetNodes(ctx context.Context, in *GetNodesRequest, opts ...grpc.CallOption) (*GetNodesResponse, error) {
	out := new(GetNodesResponse)
	if err := c.cc.Invoke(ctx, driverServiceName+"/GetNodes", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *driverClient) GetRun(ctx context.Context, in *GetRunRequest, opts ...grpc.CallOption) (*GetRunResponse, error) {
	out := new(GetRunResponse)
	if err := c.cc.Invoke(ctx, driverServiceName+"/GetRun", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
