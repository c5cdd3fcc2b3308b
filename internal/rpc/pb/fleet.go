package pb

import (
	"context"

	"google.golang.org/grpc"
)

const fleetServiceName = "fleetml.Fleet"

// FleetServer is implemented by internal/rpc/fleet.Servicer.
type FleetServer interface {
	CreateNode(context.Context, *CreateNodeRequest) (*CreateNodeResponse, error)
	DeleteNode(context.Context, *DeleteNodeRequest) (*DeleteNodeResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	PullTaskIns(context.Context, *PullTaskInsRequest) (*PullTaskInsResponse, error)
	PushTaskRes(context.Context, *PushTaskResRequest) (*PushTaskResResponse, error)
	GetRun(context.Context, *GetRunRequest) (*GetRunResponse, error)
	GetFab(context.Context, *GetFabRequest) (*GetFabResponse, error)
}

// UnimplementedFleetServer embeds into concrete implementations so new
// methods added to FleetServer don't break them at compile time.
type UnimplementedFleetServer struct{}

func (UnimplementedFleetServer) CreateNode(context.Context, *CreateNodeRequest) (*CreateNodeResponse, error) {
	return nil, errUnimplemented("CreateNode")
}
func (UnimplementedFleetServer) DeleteNode(context.Context, *DeleteNodeRequest) (*DeleteNodeResponse, error) {
	return nil, errUnimplemented("DeleteNode")
}
func (UnimplementedFleetServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, errUnimplemented("Ping")
}
func (UnimplementedFleetServer) PullTaskIns(context.Context, *PullTaskInsRequest) (*PullTaskInsResponse, error) {
	return nil, errUnimplemented("PullTaskIns")
}
func (UnimplementedFleetServer) PushTaskRes(context.Context, *PushTaskResRequest) (*PushTaskResResponse, error) {
	return nil, errUnimplemented("PushTaskRes")
}
func (UnimplementedFleetServer) GetRun(context.Context, *GetRunRequest) (*GetRunResponse, error) {
	return nil, errUnimplemented("GetRun")
}
func (UnimplementedFleetServer) GetFab(context.Context, *GetFabRequest) (*GetFabResponse, error) {
	return nil, errUnimplemented("GetFab")
}

func RegisterFleetServer(s grpc.ServiceRegistrar, srv FleetServer) {
	s.RegisterService(&fleetServiceDesc, srv)
}

var fleetServiceDesc = grpc.ServiceDesc{
	ServiceName: fleetServiceName,
	HandlerType: (*FleetServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateNode", Handler: fleetCreateNodeHandler},
		{MethodName: "DeleteNode", Handler: fleetDeleteNodeHandler},
		{MethodName: "Ping", Handler: fleetPingHandler},
		{MethodName: "PullTaskIns", Handler: fleetPullTaskInsHandler},
		{MethodName: "PushTaskRes", Handler: fleetPushTaskResHandler},
		{MethodName: "GetRun", Handler: fleetGetRunHandler},
		{MethodName: "GetFab", Handler: fleetGetFabHandler},
	},
	Metadata: "fleetml/fleet",
}

func fleetCreateNodeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateNodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServer).CreateNode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fleetServiceName + "/CreateNode"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FleetServer).CreateNode(ctx, req.(*CreateNodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func fleetDeleteNodeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DeleteNodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServer).DeleteNode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fleetServiceName + "/DeleteNode"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FleetServer).DeleteNode(ctx, req.(*DeleteNodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func fleetPingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fleetServiceName + "/Ping"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FleetServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func fleetPullTaskInsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PullTaskInsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServer).PullTaskIns(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fleetServiceName + "/PullTaskIns"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FleetServer).PullTaskIns(ctx, req.(*PullTaskInsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func fleetPushTaskResHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PushTaskResRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServer).PushTaskRes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fleetServiceName + "/PushTaskRes"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FleetServer).PushTaskRes(ctx, req.(*PushTaskResRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func fleetGetRunHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetRunRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServer).GetRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fleetServiceName + "/GetRun"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FleetServer).GetRun(ctx, req.(*GetRunRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func fleetGetFabHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetFabRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServer).GetFab(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fleetServiceName + "/GetFab"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FleetServer).GetFab(ctx, req.(*GetFabRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// FleetClient is the node-side stub for the Fleet service.
type FleetClient interface {
	CreateNode(ctx context.Context, in *CreateNodeRequest, opts ...grpc.CallOption) (*CreateNodeResponse, error)
	DeleteNode(ctx context.Context, in *DeleteNodeRequest, opts ...grpc.CallOption) (*DeleteNodeResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	PullTaskIns(ctx context.Context, in *PullTaskInsRequest, opts ...grpc.CallOption) (*PullTaskInsResponse, error)
	PushTaskRes(ctx context.Context, in *PushTaskResRequest, opts ...grpc.CallOption) (*PushTaskResResponse, error)
	GetRun(ctx context.Context, in *GetRunRequest, opts ...grpc.CallOption) (*GetRunResponse, error)
	GetFab(ctx context.Context, in *GetFabRequest, opts ...grpc.CallOption) (*GetFabResponse, error)
}

type fleetClient struct {
	cc grpc.ClientConnInterface
}

func NewFleetClient(cc grpc.ClientConnInterface) FleetClient {
	return &fleetClient{cc: cc}
}

func (c *fleetClient) CreateNode(ctx context.Context, in *CreateNodeRequest, opts ...grpc.CallOption) (*CreateNodeResponse, error) {
	out := new(CreateNodeResponse)
	if err := c.cc.Invoke(ctx, fleetServiceName+"/CreateNode", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fleetClient) DeleteNode(ctx context.Context, in *DeleteNodeRequest, opts ...grpc.CallOption) (*DeleteNodeResponse, error) {
	out := new(DeleteNodeResponse)
	if err := c.cc.Invoke(ctx, fleetServiceName+"/DeleteNode", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fleetClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.cc.Invoke(ctx, fleetServiceName+"/Ping", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fleetClient) PullTaskIns(ctx context.Context, in *PullTaskInsRequest, opts ...grpc.CallOption) (*PullTaskInsResponse, error) {
	out := new(PullTaskInsResponse)
	if err := c.cc.Invoke(ctx, fleetServiceName+"/PullTaskIns", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fleetClient) PushTaskRes(ctx context.Context, in *PushTaskResRequest, opts ...grpc.CallOption) (*PushTaskResResponse, error) {
	out := new(PushTaskResResponse)
	if err := c.cc.Invoke(ctx, fleetServiceName+"/PushTaskRes", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fleetClient) GetRun(ctx context.Context, in *GetRunRequest, opts ...grpc.CallOption) (*GetRunResponse, error) {
	out := new(GetRunResponse)
	if err := c.cc.Invoke(ctx, fleetServiceName+"/GetRun", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fleetClient) GetFab(ctx context.Context, in *GetFabRequest, opts ...grpc.CallOption) (*GetFabResponse, error) {
	out := new(GetFabResponse)
	if err := c.cc.Invoke(ctx, fleetServiceName+"/GetFab", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
