package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"fleetml"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Memory {
	t.Helper()
	return NewMemory()
}

func mustCreateRun(t *testing.T, s Store) uint64 {
	t.Helper()
	id, err := s.CreateRun(context.Background(), "fab", "1.0", "", nil)
	require.NoError(t, err)
	return id
}

func ptr[T any](v T) *T { return &v }

// S1: happy path — push, pull, reply, pull reply, second pull empty.
func TestScenarioHappyPath(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	runID := mustCreateRun(t, s)
	nodeID, err := s.CreateNode(ctx, 30, nil)
	require.NoError(t, err)

	taskID, ok, err := s.StoreTaskIns(ctx, fleetml.TaskIns{
		RunID:     runID,
		Producer:  fleetml.Address{Anonymous: true},
		Consumer:  fleetml.Address{Anonymous: false, NodeID: nodeID},
		TTL:       60,
		TaskType:  "train",
		RecordSet: []byte("payload"),
	})
	require.NoError(t, err)
	require.True(t, ok)

	pulled, err := s.GetTaskIns(ctx, &nodeID, ptr(1))
	require.NoError(t, err)
	require.Len(t, pulled, 1)
	require.Equal(t, taskID, pulled[0].TaskID)
	require.NotEmpty(t, pulled[0].DeliveredAt)

	resID, ok, err := s.StoreTaskRes(ctx, fleetml.TaskRes{
		RunID:     runID,
		Producer:  fleetml.Address{Anonymous: false, NodeID: nodeID},
		Consumer:  fleetml.Address{Anonymous: true},
		TTL:       60,
		TaskType:  "train_result",
		RecordSet: []byte("result"),
		Ancestry:  []string{taskID},
	})
	require.NoError(t, err)
	require.True(t, ok)

	replies, err := s.GetTaskRes(ctx, map[string]struct{}{taskID: {}}, nil)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	require.Equal(t, resID, replies[0].TaskID)

	n, err := s.NumTaskIns(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	n, err = s.NumTaskRes(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	second, err := s.GetTaskRes(ctx, map[string]struct{}{taskID: {}}, nil)
	require.NoError(t, err)
	require.Empty(t, second)
}

// S2: offline substitution.
func TestScenarioOfflineSubstitution(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = defaultNow }()

	runID := mustCreateRun(t, s)
	nodeID, err := s.CreateNode(ctx, 30, nil)
	require.NoError(t, err)

	taskID, _, err := s.StoreTaskIns(ctx, fleetml.TaskIns{
		RunID:     runID,
		Producer:  fleetml.Address{Anonymous: true},
		Consumer:  fleetml.Address{Anonymous: false, NodeID: nodeID},
		TTL:       60,
		TaskType:  "train",
		RecordSet: []byte("payload"),
	})
	require.NoError(t, err)

	// Node goes dark: advance the clock 60s past its 30s ping interval.
	nowFunc = func() time.Time { return now.Add(60 * time.Second) }

	replies, err := s.GetTaskRes(ctx, map[string]struct{}{taskID: {}}, nil)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	require.Equal(t, fleetml.TaskTypeError, replies[0].TaskType)
	require.Equal(t, []string{taskID}, replies[0].Ancestry)
	require.Equal(t, string(fleetml.ErrorCodeNodeUnavailable), string(replies[0].RecordSet))

	n, err := s.NumTaskRes(ctx)
	require.NoError(t, err)
	require.Zero(t, n, "substitute replies must not be persisted")
}

// S3: concurrent pull — union is all tasks, intersection is empty.
func TestScenarioConcurrentPull(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	runID := mustCreateRun(t, s)
	nodeID, err := s.CreateNode(ctx, 30, nil)
	require.NoError(t, err)

	const total = 10
	for i := 0; i < total; i++ {
		_, _, err := s.StoreTaskIns(ctx, fleetml.TaskIns{
			RunID:     runID,
			Producer:  fleetml.Address{Anonymous: true},
			Consumer:  fleetml.Address{Anonymous: false, NodeID: nodeID},
			TTL:       60,
			TaskType:  "train",
			RecordSet: []byte("payload"),
		})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]int)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.GetTaskIns(ctx, &nodeID, ptr(total))
			require.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			for _, task := range got {
				seen[task.TaskID]++
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, total)
	for id, count := range seen {
		require.Equalf(t, 1, count, "task %s delivered more than once", id)
	}
}

// S4: delete_tasks scope.
func TestScenarioDeleteTasksScope(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	runID := mustCreateRun(t, s)
	nodeID, err := s.CreateNode(ctx, 30, nil)
	require.NoError(t, err)

	var allIns []string
	for i := 0; i < 5; i++ {
		id, _, err := s.StoreTaskIns(ctx, fleetml.TaskIns{
			RunID:     runID,
			Producer:  fleetml.Address{Anonymous: true},
			Consumer:  fleetml.Address{Anonymous: false, NodeID: nodeID},
			TTL:       60,
			TaskType:  "train",
			RecordSet: []byte("payload"),
		})
		require.NoError(t, err)
		allIns = append(allIns, id)
	}

	// Deliver and reply to the first 3; leave the last 2 undelivered.
	delivered, err := s.GetTaskIns(ctx, &nodeID, ptr(3))
	require.NoError(t, err)
	require.Len(t, delivered, 3)

	for _, ins := range delivered {
		_, _, err := s.StoreTaskRes(ctx, fleetml.TaskRes{
			RunID:     runID,
			Producer:  fleetml.Address{Anonymous: false, NodeID: nodeID},
			Consumer:  fleetml.Address{Anonymous: true},
			TTL:       60,
			TaskType:  "train_result",
			RecordSet: []byte("result"),
			Ancestry:  []string{ins.TaskID},
		})
		require.NoError(t, err)
	}
	deliveredIDs := make(map[string]struct{}, 3)
	for _, ins := range delivered {
		deliveredIDs[ins.TaskID] = struct{}{}
	}
	_, err = s.GetTaskRes(ctx, deliveredIDs, nil)
	require.NoError(t, err)

	require.NoError(t, s.DeleteTasks(ctx, allIns))

	n, err := s.NumTaskIns(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n, "only the 3 delivered pairs should be removed")
	n, err = s.NumTaskRes(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

// S6: ping acknowledgement at the uint64 wraparound boundary.
func TestScenarioPingAcknowledgementWrap(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	runID := mustCreateRun(t, s)

	// Force a node into existence at the max uint64 id by writing
	// directly into the map — CreateNode draws random ids, so we can't
	// request this value, but acknowledge_ping must still work for it.
	s.nodes[^uint64(0)] = nodeRecord{onlineUntil: time.Now().Add(-time.Hour), pingInterval: 10}

	ok, err := s.AcknowledgePing(ctx, ^uint64(0), 10)
	require.NoError(t, err)
	require.True(t, ok)

	nodes, err := s.GetNodes(ctx, runID)
	require.NoError(t, err)
	require.Contains(t, nodes, ^uint64(0))
}

func TestCreateNodeMintsNonZeroID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	nodeID, err := s.CreateNode(ctx, 10, nil)
	require.NoError(t, err)
	require.NotZero(t, nodeID)
}

func TestGetTaskInsBoundaries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetTaskIns(ctx, ptr(uint64(0)), nil)
	require.Error(t, err)

	zero := 0
	_, err = s.GetTaskIns(ctx, nil, &zero)
	require.Error(t, err)
}

func TestGetTaskResEmptySet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	res, err := s.GetTaskRes(ctx, map[string]struct{}{}, nil)
	require.NoError(t, err)
	require.Empty(t, res)
}

func TestDeleteNodeUnknownRaises(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	err := s.DeleteNode(ctx, 12345, nil)
	require.Error(t, err)
}

func TestCredentialSingleton(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.StoreServerPrivatePublicKey(ctx, []byte("priv"), []byte("pub")))
	require.Error(t, s.StoreServerPrivatePublicKey(ctx, []byte("priv2"), []byte("pub2")))
}

func TestReferentialIntegrity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, ok, err := s.StoreTaskIns(ctx, fleetml.TaskIns{
		RunID:     999,
		Producer:  fleetml.Address{Anonymous: true},
		Consumer:  fleetml.Address{Anonymous: true},
		TTL:       60,
		TaskType:  "train",
		RecordSet: []byte("x"),
	})
	require.False(t, ok)
	require.Error(t, err)
}

func TestPublicKeyUniqueness(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	key := []byte("shared-key")
	_, err := s.CreateNode(ctx, 10, key)
	require.NoError(t, err)
	_, err = s.CreateNode(ctx, 10, key)
	require.Error(t, err)
}
