package fleet

import (
	"fleetml"
	"fleetml/internal/rpc/pb"
)

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
