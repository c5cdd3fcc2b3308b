package connection

import (
	"context"
	"fmt"

	"fleetml"
	"fleetml/internal/rpc/pb"
	"fleetml/internal/rpc/wire"
	"fleetml/internal/telemetry"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// GRPCAdapterClient is the byte-envelope variant: it dials a
// siderolabs/grpc-proxy frontend (internal/rpc/proxyfront) instead of a
// SuperLink directly. The proxy forwards frames without decoding the
// request body, so the same pb.FleetClient stubs and JSON wire codec as
// GRPCClient still apply end to end — only the dial target and the
// "machines" metadata key (the routing convention of ployz's
// internal/daemon/proxy/director.go) differ. proxyfront itself does not
// route on that key: it forwards every call to its single upstream.
type GRPCAdapterClient struct {
	inner     *GRPCClient
	machineID string
}

// DialGRPCAdapter connects to proxyAddr and tags every call with
// backendMachineID under the "machines" metadata key.
func DialGRPCAdapter(proxyAddr, backendMachineID string, policy RetryPolicy, opts ...DialOption) (*GRPCAdapterClient, error) {
	dialOpts := append([]DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(wire.CallOption()),
		telemetry.ClientDialOption(),
	}, opts...)
	conn, err := grpc.NewClient(proxyAddr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial proxy %s: %w", proxyAddr, err)
	}
	return &GRPCAdapterClient{
		inner:     &GRPCClient{conn: conn, fleet: pb.NewFleetClient(conn), policy: policy},
		machineID: backendMachineID,
	}, nil
}

func (c *GRPCAdapterClient) route(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "machines", c.machineID)
}

func (c *GRPCAdapterClient) CreateNode(ctx context.Context, pingInterval int64) error {
	return c.inner.CreateNode(c.route(ctx), pingInterval)
}

func (c *GRPCAdapterClient) DeleteNode(ctx context.Context) error {
	return c.inner.DeleteNode(c.route(ctx))
}

func (c *GRPCAdapterClient) Receive(ctx context.Context) (*fleetml.TaskIns, error) {
	return c.inner.Receive(c.route(ctx))
}

func (c *GRPCAdapterClient) Send(ctx context.Context, res fleetml.TaskRes) error {
	return c.inner.Send(c.route(ctx), res)
}

func (c *GRPCAdapterClient) GetRun(ctx context.Context, runID uint64) (fleetml.Run, error) {
	return c.inner.GetRun(c.route(ctx), runID)
}

func (c *GRPCAdapterClient) GetFab(ctx context.Context, hash string) (fleetml.Fab, error) {
	return c.inner.GetFab(c.route(ctx), hash)
}

func (c *GRPCAdapterClient) Close() error {
	return c.inner.Close()
}
