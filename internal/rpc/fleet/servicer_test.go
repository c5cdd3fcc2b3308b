package fleet

import (
	"context"
	"testing"

	"fleetml"
	"fleetml/internal/rpc/pb"
	"fleetml/internal/store"

	"github.com/stretchr/testify/require"
)

type fakeFabs struct {
	content map[string][]byte
}

func (f fakeFabs) FabContent(_ context.Context, hash string) ([]byte, bool, error) {
	c, ok := f.content[hash]
	return c, ok, nil
}

func newTestServicer(t *testing.T, fabs FabProvider) (*Servicer, store.Store) {
	t.Helper()
	s := store.NewMemory()
	t.Cleanup(func() { _ = s.Close() })
	return New(s, fabs), s
}

func TestCreateNodeThenDeleteNode(t *testing.T) {
	svc, _ := newTestServicer(t, fakeFabs{})

	created, err := svc.CreateNode(context.Background(), &pb.CreateNodeRequest{PingInterval: 30})
	require.NoError(t, err)
	require.NotZero(t, created.NodeID)

	_, err = svc.DeleteNode(context.Background(), &pb.DeleteNodeRequest{NodeID: created.NodeID})
	require.NoError(t, err)
}

func TestPullTaskInsReturnsPushedTask(t *testing.T) {
	svc, s := newTestServicer(t, fakeFabs{})

	runID, err := s.CreateRun(context.Background(), "fab-1", "v1", "deadbeef", nil)
	require.NoError(t, err)
	created, err := svc.CreateNode(context.Background(), &pb.CreateNodeRequest{PingInterval: 30})
	require.NoError(t, err)

	_, _, err = s.StoreTaskIns(context.Background(), taskInsFor(runID, created.NodeID))
	require.NoError(t, err)

	resp, err := svc.PullTaskIns(context.Background(), &pb.PullTaskInsRequest{NodeID: created.NodeID})
	require.NoError(t, err)
	require.Len(t, resp.TaskInsList, 1)
	require.Equal(t, "train", resp.TaskInsList[0].TaskType)
}

func TestPushTaskResRejectedForUnknownRun(t *testing.T) {
	svc, _ := newTestServicer(t, fakeFabs{})

	resp, err := svc.PushTaskRes(context.Background(), &pb.PushTaskResRequest{
		TaskResList: []pb.TaskMsg{{
			RunID:     999,
			Producer:  pb.AddressMsg{NodeID: 1},
			Consumer:  pb.AddressMsg{Anonymous: true},
			TaskType:  "train",
			TTL:       60,
			RecordSet: []byte("x"),
			Ancestry:  []string{"some-task-id"},
		}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.Contains(t, resp.Results[0].Code, "error")
}

func TestGetFabNotFound(t *testing.T) {
	svc, _ := newTestServicer(t, fakeFabs{content: map[string][]byte{}})

	_, err := svc.GetFab(context.Background(), &pb.GetFabRequest{Hash: "missing"})
	require.Error(t, err)
}

func TestGetFabFound(t *testing.T) {
	svc, _ := newTestServicer(t, fakeFabs{content: map[string][]byte{"abc": []byte("content")}})

	resp, err := svc.GetFab(context.Background(), &pb.GetFabRequest{Hash: "abc"})
	require.NoError(t, err)
	require.Equal(t, []byte("content"), resp.Content)
}

func taskInsFor(runID, nodeID uint64) fleetml.TaskIns {
	return fleetml.TaskIns{
		RunID:     runID,
		Producer:  fleetml.Address{Anonymous: true},
		Consumer:  fleetml.Address{NodeID: nodeID},
		TaskType:  "train",
		TTL:       60,
		RecordSet: []byte(`{"step":1}`),
	}
}
