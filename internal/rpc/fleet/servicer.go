// Package fleet implements FleetServicer: the node-facing half of the
// wire surface — node lifecycle, liveness pings, and task pull/push.
package fleet

import (
	"context"

	"fleetml/internal/rpc/errmap"
	"fleetml/internal/rpc/pb"
	"fleetml/internal/store"
)

// FabProvider resolves fab content by hash. The core only routes
// GetFab requests to it; it never owns fab storage itself.
type FabProvider interface {
	FabContent(ctx context.Context, hash string) ([]byte, bool, error)
}

type Servicer struct {
	pb.UnimplementedFleetServer

	store store.Store
	fabs  FabProvider
}

func New(s store.Store, fabs FabProvider) *Servicer {
	return &Servicer{store: s, fabs: fabs}
}

func (s *Servicer) CreateNode(ctx context.Context, req *pb.CreateNodeRequest) (*pb.CreateNodeResponse, error) {
	id, err := s.store.CreateNode(ctx, req.PingInterval, nil)
	if err != nil {
		return nil, errmap.ToGRPC(err)
	}
	return &pb.CreateNodeResponse{NodeID: id}, nil
}

func (s *Servicer) DeleteNode(ctx context.Context, req *pb.DeleteNodeRequest) (*pb.DeleteNodeResponse, error) {
	if err := s.store.DeleteNode(ctx, req.NodeID, nil); err != nil {
		return nil, errmap.ToGRPC(err)
	}
	return &pb.DeleteNodeResponse{}, nil
}

func (s *Servicer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	ok, err := s.store.AcknowledgePing(ctx, req.NodeID, req.PingInterval)
	if err != nil {
		return nil, errmap.ToGRPC(err)
	}
	return &pb.PingResponse{Success: ok}, nil
}

func (s *Servicer) PullTaskIns(ctx context.Context, req *pb.PullTaskInsRequest) (*pb.PullTaskInsResponse, error) {
	limit := 1
	ins, err := s.store.GetTaskIns(ctx, &req.NodeID, &limit)
	if err != nil {
		return nil, errmap.ToGRPC(err)
	}
	out := make([]pb.TaskMsg, len(ins))
	for i, t := range ins {
		out[i] = taskToMsg(t)
	}
	return &pb.PullTaskInsResponse{TaskInsList: out}, nil
}

func (s *Servicer) PushTaskRes(ctx context.Context, req *pb.PushTaskResRequest) (*pb.PushTaskResResponse, error) {
	results := make([]pb.ReliabilityStatus, len(req.TaskResList))
	for i, m := range req.TaskResList {
		id, ok, err := s.store.StoreTaskRes(ctx, taskFromMsg(m))
		switch {
		case err != nil:
			results[i] = pb.ReliabilityStatus{TaskID: m.TaskID, Code: "error: " + err.Error()}
		case !ok:
			results[i] = pb.ReliabilityStatus{TaskID: m.TaskID, Code: "rejected"}
		default:
			results[i] = pb.ReliabilityStatus{TaskID: id, Code: "ok"}
		}
	}
	return &pb.PushTaskResResponse{Results: results}, nil
}

func (s *Servicer) GetRun(ctx context.Context, req *pb.GetRunRequest) (*pb.GetRunResponse, error) {
	run, found, err := s.store.GetRun(ctx, req.RunID)
	if err != nil {
		return nil, errmap.ToGRPC(err)
	}
	if !found {
		return &pb.GetRunResponse{Found: false}, nil
	}
	return &pb.GetRunResponse{Run: runToMsg(run), Found: true}, nil
}

func (s *Servicer) GetFab(ctx context.Context, req *pb.GetFabRequest) (*pb.GetFabResponse, error) {
	content, ok, err := s.fabs.FabContent(ctx, req.Hash)
	if err != nil {
		return nil, errmap.ToGRPC(err)
	}
	if !ok {
		return nil, errmap.ToGRPC(store.ErrFabNotFound(req.Hash))
	}
	return &pb.GetFabResponse{Hash: req.Hash, Content: content}, nil
}
