// Package driver implements DriverServicer: the control-plane surface
// used to push task instructions into a run and pull results back out.
package driver

import (
	"context"
	"time"

	"fleetml"
	"fleetml/internal/rpc/errmap"
	"fleetml/internal/rpc/pb"
	"fleetml/internal/store"
	"fleetml/internal/store/clock"
)

type Servicer struct {
	pb.UnimplementedDriverServer

	store   store.Store
	checker *clock.Checker
}

// New builds a Servicer. checker may be nil, in which case
// GetNodes/GetRun report an unchecked clock status.
func New(s store.Store, checker *clock.Checker) *Servicer {
	return &Servicer{store: s, checker: checker}
}

func (s *Servicer) clockStatusMsg() pb.ClockStatusMsg {
	if s.checker == nil {
		return pb.ClockStatusMsg{Phase: clock.PhaseUnchecked.String()}
	}
	st := s.checker.Status()
	return pb.ClockStatusMsg{
		Phase:     st.Phase.String(),
		OffsetMs:  st.Offset.Milliseconds(),
		Error:     st.Error,
		CheckedAt: st.CheckedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (s *Servicer) PushTaskIns(ctx context.Context, req *pb.PushTaskInsRequest) (*pb.PushTaskInsResponse, error) {
	ids := make([]string, len(req.TaskInsList))
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i, m := range req.TaskInsList {
		t := taskFromMsg(m)
		t.CreatedAt = now
		t.PushedAt = now
		id, ok, err := s.store.StoreTaskIns(ctx, t)
		if err != nil {
			return nil, errmap.ToGRPC(err)
		}
		if !ok {
			ids[i] = ""
			continue
		}
		ids[i] = id
	}
	return &pb.PushTaskInsResponse{TaskIDs: ids}, nil
}

func (s *Servicer) PullTaskRes(ctx context.Context, req *pb.PullTaskResRequest) (*pb.PullTaskResResponse, error) {
	set := make(map[string]struct{}, len(req.TaskIDs))
	for _, id := range req.TaskIDs {
		set[id] = struct{}{}
	}
	res, err := s.store.GetTaskRes(ctx, set, nil)
	if err != nil {
		return nil, errmap.ToGRPC(err)
	}
	out := make([]pb.TaskMsg, len(res))
	for i, t := range res {
		out[i] = taskToMsg(t)
	}
	return &pb.PullTaskResResponse{TaskResList: out}, nil
}

func (s *Servicer) GetNodes(ctx context.Context, req *pb.GetNodesRequest) (*pb.GetNodesResponse, error) {
	nodes, err := s.store.GetNodes(ctx, req.RunID)
	if err != nil {
		return nil, errmap.ToGRPC(err)
	}
	ids := make([]uint64, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	return &pb.GetNodesResponse{NodeIDs: ids, ClockStatus: s.clockStatusMsg()}, nil
}

func (s *Servicer) GetRun(ctx context.Context, req *pb.GetRunRequest) (*pb.GetRunResponse, error) {
	run, found, err := s.store.GetRun(ctx, req.RunID)
	if err != nil {
		return nil, errmap.ToGRPC(err)
	}
	if !found {
		return &pb.GetRunResponse{Found: false, ClockStatus: s.clockStatusMsg()}, nil
	}
	return &pb.GetRunResponse{Run: runToMsg(run), Found: true, ClockStatus: s.clockStatusMsg()}, nil
}

func addressFromMsg(m pb.AddressMsg) fleetml.Address {
	return fleetml.Address{Anonymous: m.Anonymous, NodeID: m.NodeID}
}

func addressToMsg(a fleetml.Address) pb.AddressMsg {
	return pb.AddressMsg{Anonymous: a.Anonymous, NodeID: a.NodeID}
}

func taskFromMsg(m pb.TaskMsg) fleetml.Task {
	return fleetml.Task{
		TaskID:      m.TaskID,
		GroupID:     m.GroupID,
		RunID:       m.RunID,
		Producer:    addressFromMsg(m.Producer),
		Consumer:    addressFromMsg(m.Consumer),
		CreatedAt:   m.CreatedAt,
		DeliveredAt: m.DeliveredAt,
		PushedAt:    m.PushedAt,
		TTL:         m.TTL,
		Ancestry:    m.Ancestry,
		TaskType:    m.TaskType,
		RecordSet:   fleetml.RecordSet(m.RecordSet),
	}
}

func taskToMsg(t fleetml.Task) pb.TaskMsg {
	return pb.TaskMsg{
		TaskID:      t.TaskID,
		GroupID:     t.GroupID,
		RunID:       t.RunID,
		Producer:    addressToMsg(t.Producer),
		Consumer:    addressToMsg(t.Consumer),
		CreatedAt:   t.CreatedAt,
		DeliveredAt: t.DeliveredAt,
		PushedAt:    t.PushedAt,
		TTL:         t.TTL,
		Ancestry:    t.Ancestry,
		TaskType:    t.TaskType,
		RecordSet:   []byte(t.RecordSet),
	}
}

func runToMsg(r fleetml.Run) pb.RunMsg {
	return pb.RunMsg{
		RunID:          r.RunID,
		FabID:          r.FabID,
		FabVersion:     r.FabVersion,
		FabHash:        r.FabHash,
		OverrideConfig: r.OverrideConfig,
		PendingAt:      r.PendingAt,
		StartingAt:     r.StartingAt,
		RunningAt:      r.RunningAt,
		FinishedAt:     r.FinishedAt,
	}
}
