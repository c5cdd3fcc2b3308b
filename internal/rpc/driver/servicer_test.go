package driver

import (
	"context"
	"testing"

	"fleetml"
	"fleetml/internal/rpc/pb"
	"fleetml/internal/store"
	"fleetml/internal/store/clock"

	"github.com/stretchr/testify/require"
)

func newTestServicer(t *testing.T) (*Servicer, store.Store) {
	t.Helper()
	s := store.NewMemory()
	t.Cleanup(func() { _ = s.Close() })
	return New(s, nil), s
}

func TestGetRunNotFoundReportsClockStatus(t *testing.T) {
	svc, _ := newTestServicer(t)

	resp, err := svc.GetRun(context.Background(), &pb.GetRunRequest{RunID: 42})
	require.NoError(t, err)
	require.False(t, resp.Found)
	require.Equal(t, clock.PhaseUnchecked.String(), resp.ClockStatus.Phase)
}

func TestGetRunFoundRoundTripsRunFields(t *testing.T) {
	svc, s := newTestServicer(t)

	runID, err := s.CreateRun(context.Background(), "fab-1", "v1", "deadbeef", nil)
	require.NoError(t, err)

	resp, err := svc.GetRun(context.Background(), &pb.GetRunRequest{RunID: runID})
	require.NoError(t, err)
	require.True(t, resp.Found)
	require.Equal(t, runID, resp.Run.RunID)
	require.Equal(t, "fab-1", resp.Run.FabID)
	require.Equal(t, "deadbeef", resp.Run.FabHash)
}

func TestGetNodesReturnsRegisteredNodes(t *testing.T) {
	svc, s := newTestServicer(t)

	runID, err := s.CreateRun(context.Background(), "fab-1", "v1", "deadbeef", nil)
	require.NoError(t, err)

	nodeID, err := s.CreateNode(context.Background(), 30, []byte("pubkey"))
	require.NoError(t, err)

	resp, err := svc.GetNodes(context.Background(), &pb.GetNodesRequest{RunID: runID})
	require.NoError(t, err)
	require.Contains(t, resp.NodeIDs, nodeID)
}

func TestPushPullTaskRoundTrip(t *testing.T) {
	svc, s := newTestServicer(t)

	runID, err := s.CreateRun(context.Background(), "fab-1", "v1", "deadbeef", nil)
	require.NoError(t, err)
	nodeID, err := s.CreateNode(context.Background(), 30, []byte("pubkey"))
	require.NoError(t, err)

	pushResp, err := svc.PushTaskIns(context.Background(), &pb.PushTaskInsRequest{
		TaskInsList: []pb.TaskMsg{{
			RunID:     runID,
			Producer:  pb.AddressMsg{Anonymous: true},
			Consumer:  pb.AddressMsg{NodeID: nodeID},
			TaskType:  "train",
			TTL:       60,
			RecordSet: []byte(`{"step":1}`),
		}},
	})
	require.NoError(t, err)
	require.Len(t, pushResp.TaskIDs, 1)
	require.NotEmpty(t, pushResp.TaskIDs[0])

	taskID := pushResp.TaskIDs[0]
	res := fleetml.TaskRes{
		RunID:     runID,
		Producer:  fleetml.Address{NodeID: nodeID},
		Consumer:  fleetml.Address{Anonymous: true},
		Ancestry:  []string{taskID},
		TaskType:  "train",
		TTL:       60,
		RecordSet: []byte(`{"result":"ok"}`),
	}
	_, _, err = s.StoreTaskRes(context.Background(), res)
	require.NoError(t, err)

	pullResp, err := svc.PullTaskRes(context.Background(), &pb.PullTaskResRequest{TaskIDs: []string{taskID}})
	require.NoError(t, err)
	require.Len(t, pullResp.TaskResList, 1)
	require.Equal(t, []string{taskID}, pullResp.TaskResList[0].Ancestry)
}
