// Package connection implements the node-side ConnectionClient:
// create_node/delete_node/receive/send/get_run/get_fab, polymorphic
// over transport variants, all sharing one retry invoker and one
// logical node id per instance.
package connection

import (
	"context"
	"sync"

	"fleetml"

	"google.golang.org/grpc"
)

// Client is the capability surface every transport variant implements.
type Client interface {
	CreateNode(ctx context.Context, pingInterval int64) error
	DeleteNode(ctx context.Context) error
	Receive(ctx context.Context) (*fleetml.TaskIns, error)
	Send(ctx context.Context, res fleetml.TaskRes) error
	GetRun(ctx context.Context, runID uint64) (fleetml.Run, error)
	GetFab(ctx context.Context, hash string) (fleetml.Fab, error)
	Close() error
}

// nodeCell holds the single logical node id for a connection instance,
// written once by CreateNode and reused by every later call.
type nodeCell struct {
	mu     sync.RWMutex
	nodeID uint64
	bound  bool
}

func (c *nodeCell) set(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodeID = id
	c.bound = true
}

func (c *nodeCell) get() (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodeID, c.bound
}

func (c *nodeCell) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodeID = 0
	c.bound = false
}

// DialOption is threaded through to grpc.NewClient for both the direct
// and adapter variants.
type DialOption = grpc.DialOption

var (
	_ Client = (*GRPCClient)(nil)
	_ Client = (*GRPCAdapterClient)(nil)
	_ Client = (*RESTClient)(nil)
)
