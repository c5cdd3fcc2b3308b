package store

import (
	"context"
	"sync"
	"time"

	"fleetml"

	"github.com/google/uuid"
)

type nodeRecord struct {
	onlineUntil  time.Time
	pingInterval int64
	publicKey    []byte
}

// Memory is an in-memory Store, used for tests and when the configured
// database path is ":memory:". It implements exactly the same
// fetch-and-mark-delivered semantics as the sqlite-backed Store by
// holding one mutex across every mutating method — the "single logical
// transaction" falls out of that single lock.
type Memory struct {
	mu sync.Mutex

	runs    map[uint64]fleetml.Run
	taskIns map[string]fleetml.TaskIns
	taskRes map[string]fleetml.TaskRes
	nodes   map[uint64]nodeRecord
	keyToNode map[string]uint64

	serverPrivateKey []byte
	serverPublicKey  []byte
	hasCredential    bool

	nodePublicKeys [][]byte
}

// NewMemory constructs an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{
		runs:      make(map[uint64]fleetml.Run),
		taskIns:   make(map[string]fleetml.TaskIns),
		taskRes:   make(map[string]fleetml.TaskRes),
		nodes:     make(map[uint64]nodeRecord),
		keyToNode: make(map[string]uint64),
	}
}

func (m *Memory) Close() error { return nil }

// --- Tasks ---

func (m *Memory) StoreTaskIns(_ context.Context, ins fleetml.TaskIns) (string, bool, error) {
	return m.storeTask(ins, m.taskIns)
}

func (m *Memory) StoreTaskRes(_ context.Context, res fleetml.TaskRes) (string, bool, error) {
	return m.storeTask(res, m.taskRes)
}

func (m *Memory) storeTask(t fleetml.Task, table map[string]fleetml.Task) (string, bool, error) {
	if errs := validateTask(t); len(errs) > 0 {
		return "", false, &ErrValidation{Errors: errs}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[t.RunID]; !ok {
		return "", false, ErrRunNotFound(t.RunID)
	}

	id := uuid.NewString()
	t.TaskID = id
	t.DeliveredAt = ""
	table[id] = t
	return id, true, nil
}

func (m *Memory) GetTaskIns(_ context.Context, nodeID *uint64, limit *int) ([]fleetml.TaskIns, error) {
	if limit != nil && *limit < 1 {
		return nil, ErrInvalidArgument("limit must be >= 1")
	}
	if nodeID != nil && *nodeID == 0 {
		return nil, ErrInvalidArgument("node_id must be non-zero; pass nil for anonymous pull")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []string
	for id, ins := range m.taskIns {
		if ins.DeliveredAt != "" {
			continue
		}
		if nodeID == nil {
			if ins.Consumer.Anonymous && ins.Consumer.NodeID == 0 {
				matched = append(matched, id)
			}
			continue
		}
		if !ins.Consumer.Anonymous && ins.Consumer.NodeID == *nodeID {
			matched = append(matched, id)
		}
	}

	if limit != nil && len(matched) > *limit {
		matched = matched[:*limit]
	}

	out := make([]fleetml.TaskIns, 0, len(matched))
	ts := nowISO()
	for _, id := range matched {
		ins := m.taskIns[id]
		ins.DeliveredAt = ts
		m.taskIns[id] = ins
		out = append(out, ins)
	}
	return out, nil
}

func (m *Memory) GetTaskRes(_ context.Context, taskIDs map[string]struct{}, limit *int) ([]fleetml.TaskRes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Step 1: real, undelivered replies whose ancestry matches the set.
	var realIDs []string
	for id, res := range m.taskRes {
		if res.DeliveredAt != "" {
			continue
		}
		if len(res.Ancestry) != 1 {
			continue
		}
		if _, want := taskIDs[res.Ancestry[0]]; !want {
			continue
		}
		realIDs = append(realIDs, id)
	}
	if limit != nil && len(realIDs) > *limit {
		realIDs = realIDs[:*limit]
	}

	// Step 2: mark delivered atomically with the select above (same
	// critical section), return the updated rows.
	ts := nowISO()
	result := make([]fleetml.TaskRes, 0, len(realIDs))
	matchedAncestry := make(map[string]struct{}, len(realIDs))
	for _, id := range realIDs {
		res := m.taskRes[id]
		res.DeliveredAt = ts
		m.taskRes[id] = res
		result = append(result, res)
		matchedAncestry[res.Ancestry[0]] = struct{}{}
	}

	// Step 3: remaining ids with no real reply yet.
	remaining := make([]string, 0, len(taskIDs))
	for id := range taskIDs {
		if _, done := matchedAncestry[id]; !done {
			remaining = append(remaining, id)
		}
	}

	// Step 4-5: offline consumer nodes among the remaining task_ins.
	now := nowFunc()
	offline := make(map[uint64]struct{})
	for _, id := range remaining {
		ins, ok := m.taskIns[id]
		if !ok || ins.Consumer.Anonymous {
			continue
		}
		n, ok := m.nodes[ins.Consumer.NodeID]
		if !ok {
			continue
		}
		if n.onlineUntil.Before(now) {
			offline[ins.Consumer.NodeID] = struct{}{}
		}
	}

	// Step 6-7: synthesize substitute replies for task_ins addressed to
	// offline nodes, not persisted, capped at limit.
	for _, id := range remaining {
		if limit != nil && len(result) >= *limit {
			break
		}
		ins, ok := m.taskIns[id]
		if !ok || ins.Consumer.Anonymous {
			continue
		}
		if _, isOffline := offline[ins.Consumer.NodeID]; !isOffline {
			continue
		}
		result = append(result, substituteReply(ins, ts))
	}

	return result, nil
}

func substituteReply(ins fleetml.TaskIns, ts string) fleetml.TaskRes {
	return fleetml.TaskRes{
		TaskID:      uuid.NewString(),
		GroupID:     ins.GroupID,
		RunID:       ins.RunID,
		Producer:    ins.Consumer,
		Consumer:    ins.Producer,
		CreatedAt:   ts,
		DeliveredAt: ts,
		Ancestry:    []string{ins.TaskID},
		TaskType:    fleetml.TaskTypeError,
		RecordSet:   []byte(fleetml.ErrorCodeNodeUnavailable),
	}
}

func (m *Memory) NumTaskIns(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.taskIns), nil
}

func (m *Memory) NumTaskRes(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.taskRes), nil
}

func (m *Memory) DeleteTasks(_ context.Context, taskIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range taskIDs {
		ins, ok := m.taskIns[id]
		if !ok || ins.DeliveredAt == "" {
			continue
		}
		for resID, res := range m.taskRes {
			if res.DeliveredAt == "" {
				continue
			}
			if len(res.Ancestry) == 1 && res.Ancestry[0] == id {
				delete(m.taskIns, id)
				delete(m.taskRes, resID)
				break
			}
		}
	}
	return nil
}

// --- Nodes ---

func (m *Memory) CreateNode(_ context.Context, pingInterval int64, publicKey []byte) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(publicKey) > 0 {
		if _, exists := m.keyToNode[string(publicKey)]; exists {
			return 0, ErrPublicKeyInUse()
		}
	}

	id, err := generateID()
	if err != nil {
		return 0, err
	}
	if _, exists := m.nodes[id]; exists {
		return 0, ErrIDCollision()
	}

	m.nodes[id] = nodeRecord{
		onlineUntil:  nowFunc().Add(time.Duration(pingInterval) * time.Second),
		pingInterval: pingInterval,
		publicKey:    publicKey,
	}
	if len(publicKey) > 0 {
		m.keyToNode[string(publicKey)] = id
	}
	return id, nil
}

func (m *Memory) DeleteNode(_ context.Context, nodeID uint64, publicKey []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[nodeID]
	if !ok {
		return ErrNodeNotFound(nodeID)
	}
	if len(publicKey) > 0 && string(publicKey) != string(n.publicKey) {
		return ErrInvalidArgument("public key does not match registered node")
	}
	delete(m.nodes, nodeID)
	if len(n.publicKey) > 0 {
		delete(m.keyToNode, string(n.publicKey))
	}
	return nil
}

func (m *Memory) GetNodes(_ context.Context, runID uint64) (map[uint64]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[uint64]struct{})
	if _, ok := m.runs[runID]; !ok {
		// Run filter is a presence check only; an
		// unknown run yields an empty set.
		return out, nil
	}

	now := nowFunc()
	for id, n := range m.nodes {
		if n.onlineUntil.After(now) {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (m *Memory) GetNodeID(_ context.Context, publicKey []byte) (uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.keyToNode[string(publicKey)]
	return id, ok, nil
}

func (m *Memory) AcknowledgePing(_ context.Context, nodeID uint64, pingInterval int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[nodeID]
	if !ok {
		return false, nil
	}
	n.onlineUntil = nowFunc().Add(time.Duration(pingInterval) * time.Second)
	n.pingInterval = pingInterval
	m.nodes[nodeID] = n
	return true, nil
}

// --- Runs ---

func (m *Memory) CreateRun(_ context.Context, fabID, fabVersion, fabHash string, overrideConfig map[string]any) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := generateID()
	if err != nil {
		return 0, err
	}
	if _, exists := m.runs[id]; exists {
		return 0, ErrIDCollision()
	}

	run := fleetml.Run{RunID: id, OverrideConfig: overrideConfig}
	if fabHash != "" {
		run.FabHash = fabHash
	} else {
		run.FabID = fabID
		run.FabVersion = fabVersion
	}
	m.runs[id] = run
	return id, nil
}

func (m *Memory) GetRun(_ context.Context, runID uint64) (fleetml.Run, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	return r, ok, nil
}

// --- Credentials ---

func (m *Memory) StoreServerPrivatePublicKey(_ context.Context, private, public []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasCredential {
		return ErrCredentialExists()
	}
	m.serverPrivateKey = private
	m.serverPublicKey = public
	m.hasCredential = true
	return nil
}

func (m *Memory) GetServerPrivateKey(context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.serverPrivateKey, m.hasCredential, nil
}

func (m *Memory) GetServerPublicKey(context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.serverPublicKey, m.hasCredential, nil
}

func (m *Memory) StoreNodePublicKey(_ context.Context, publicKey []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodePublicKeys = append(m.nodePublicKeys, publicKey)
	return nil
}

func (m *Memory) GetNodePublicKeys(context.Context) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.nodePublicKeys))
	copy(out, m.nodePublicKeys)
	return out, nil
}
