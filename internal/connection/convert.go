package connection

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

func runFromMsg(m pb.RunMsg) fleetml.Run {
	return fleetml.Run{
		RunID:          m.RunID,
		FabID:          m.FabID,
		FabVersion:     m.FabVersion,
		FabHash:        m.FabHash,
		OverrideConfig: m.OverrideConfig,
		PendingAt:      m.PendingAt,
		StartingAt:     m.StartingAt,
		RunningAt:      m.RunningAt,
		FinishedAt:     m.FinishedAt,
	}
}
