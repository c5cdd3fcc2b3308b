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
)

// GRPCClient is the direct request/response variant: one FleetClient
// call per capability, wrapped in retryInvoke.
type GRPCClient struct {
	conn   *grpc.ClientConn
	fleet  pb.FleetClient
	policy RetryPolicy
	node   nodeCell
}

// DialGRPC opens a grpc.ClientConn to addr using the JSON wire codec and
// wraps it as a GRPCClient. The caller owns addr's lifecycle through the
// returned Close.
func DialGRPC(addr string, policy RetryPolicy, opts ...DialOption) (*GRPCClient, error) {
	dialOpts := append([]DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(wire.CallOption()),
		telemetry.ClientDialOption(),
	}, opts...)
	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &GRPCClient{conn: conn, fleet: pb.NewFleetClient(conn), policy: policy}, nil
}

func (c *GRPCClient) CreateNode(ctx context.Context, pingInterval int64) error {
	var resp *pb.CreateNodeResponse
	err := retryInvoke(ctx, c.policy, func(ctx context.Context) error {
		r, err := c.fleet.CreateNode(ctx, &pb.CreateNodeRequest{PingInterval: pingInterval})
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return fmt.Errorf("create node: %w", err)
	}
	c.node.set(resp.NodeID)
	return nil
}

func (c *GRPCClient) DeleteNode(ctx context.Context) error {
	nodeID, bound := c.node.get()
	if !bound {
		return fmt.Errorf("delete node: no node bound on this connection")
	}
	err := retryInvoke(ctx, c.policy, func(ctx context.Context) error {
		_, err := c.fleet.DeleteNode(ctx, &pb.DeleteNodeRequest{NodeID: nodeID})
		return err
	})
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	c.node.clear()
	return nil
}

// Receive pulls at most one TaskIns for the bound node. A nil, nil
// result means no task is currently pending.
func (c *GRPCClient) Receive(ctx context.Context) (*fleetml.TaskIns, error) {
	nodeID, bound := c.node.get()
	if !bound {
		return nil, fmt.Errorf("receive: no node bound on this connection")
	}
	var resp *pb.PullTaskInsResponse
	err := retryInvoke(ctx, c.policy, func(ctx context.Context) error {
		r, err := c.fleet.PullTaskIns(ctx, &pb.PullTaskInsRequest{NodeID: nodeID})
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}
	if len(resp.TaskInsList) == 0 {
		return nil, nil
	}
	task := taskFromMsg(resp.TaskInsList[0])
	return &task, nil
}

func (c *GRPCClient) Send(ctx context.Context, res fleetml.TaskRes) error {
	var resp *pb.PushTaskResResponse
	err := retryInvoke(ctx, c.policy, func(ctx context.Context) error {
		r, err := c.fleet.PushTaskRes(ctx, &pb.PushTaskResRequest{TaskResList: []pb.TaskMsg{taskToMsg(res)}})
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if len(resp.Results) > 0 && resp.Results[0].Code != "ok" {
		return fmt.Errorf("send: task %s rejected: %s", resp.Results[0].TaskID, resp.Results[0].Code)
	}
	return nil
}

func (c *GRPCClient) GetRun(ctx context.Context, runID uint64) (fleetml.Run, error) {
	var resp *pb.GetRunResponse
	err := retryInvoke(ctx, c.policy, func(ctx context.Context) error {
		r, err := c.fleet.GetRun(ctx, &pb.GetRunRequest{RunID: runID})
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return fleetml.Run{}, fmt.Errorf("get run: %w", err)
	}
	if !resp.Found {
		return fleetml.Run{}, fmt.Errorf("get run: run %d not found", runID)
	}
	return runFromMsg(resp.Run), nil
}

func (c *GRPCClient) GetFab(ctx context.Context, hash string) (fleetml.Fab, error) {
	var resp *pb.GetFabResponse
	err := retryInvoke(ctx, c.policy, func(ctx context.Context) error {
		r, err := c.fleet.GetFab(ctx, &pb.GetFabRequest{Hash: hash})
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return fleetml.Fab{}, fmt.Errorf("get fab: %w", err)
	}
	return fleetml.Fab{Hash: resp.Hash, Content: resp.Content}, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}
