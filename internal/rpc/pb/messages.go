// Package pb holds the wire message structs and hand-written
// grpc.ServiceDesc registrations for the fleet, driver, exec and
// clientappio services. There is no protoc step in this build: these
// types travel as JSON (see internal/rpc/wire) instead of generated
// protobuf marshal code, but they are dialed and served through real
// google.golang.org/grpc connections.
package pb

// AddressMsg is the wire form of fleetml.Address.
type AddressMsg struct {
	Anonymous bool   `json:"anonymous"`
	NodeID    uint64 `json:"node_id,string"`
}

// TaskMsg is the wire form of fleetml.Task (used for both TaskIns and
// TaskRes — the distinction is carried by which field of the envelope
// it arrives in).
type TaskMsg struct {
	TaskID      string     `json:"task_id"`
	GroupID     string     `json:"group_id"`
	RunID       uint64     `json:"run_id,string"`
	Producer    AddressMsg `json:"producer"`
	Consumer    AddressMsg `json:"consumer"`
	CreatedAt   string     `json:"created_at"`
	DeliveredAt string     `json:"delivered_at"`
	PushedAt    string     `json:"pushed_at"`
	TTL         float64    `json:"ttl"`
	Ancestry    []string   `json:"ancestry"`
	TaskType    string     `json:"task_type"`
	RecordSet   []byte     `json:"recordset"`
}

// RunMsg is the wire form of fleetml.Run.
type RunMsg struct {
	RunID          uint64         `json:"run_id,string"`
	FabID          string         `json:"fab_id"`
	FabVersion     string         `json:"fab_version"`
	FabHash        string         `json:"fab_hash"`
	OverrideConfig map[string]any `json:"override_config,omitempty"`
	PendingAt      string         `json:"pending_at"`
	StartingAt     string         `json:"starting_at"`
	RunningAt      string         `json:"running_at"`
	FinishedAt     string         `json:"finished_at"`
}

// --- Fleet ---

type CreateNodeRequest struct {
	PingInterval int64 `json:"ping_interval"`
}

type CreateNodeResponse struct {
	NodeID uint64 `json:"node_id,string"`
}

type DeleteNodeRequest struct {
	NodeID uint64 `json:"node_id,string"`
}

type DeleteNodeResponse struct{}

type PingRequest struct {
	NodeID       uint64 `json:"node_id,string"`
	PingInterval int64  `json:"ping_interval"`
}

type PingResponse struct {
	Success bool `json:"success"`
}

type PullTaskInsRequest struct {
	NodeID uint64 `json:"node_id,string"`
}

type PullTaskInsResponse struct {
	TaskInsList []TaskMsg `json:"task_ins_list"`
}

type PushTaskResRequest struct {
	TaskResList []TaskMsg `json:"task_res_list"`
}

type ReliabilityStatus struct {
	TaskID string `json:"task_id"`
	Code   string `json:"code"`
}

type PushTaskResResponse struct {
	Results []ReliabilityStatus `json:"results"`
}

type GetRunRequest struct {
	RunID uint64 `json:"run_id,string"`
}

type GetRunResponse struct {
	Run         RunMsg         `json:"run"`
	Found       bool           `json:"found"`
	ClockStatus ClockStatusMsg `json:"clock_status"`
}

type GetFabRequest struct {
	Hash string `json:"hash"`
}

type GetFabResponse struct {
	Hash    string `json:"hash"`
	Content []byte `json:"content"`
}

// --- Driver ---

type PushTaskInsRequest struct {
	TaskInsList []TaskMsg `json:"task_ins_list"`
}

type PushTaskInsResponse struct {
	TaskIDs []string `json:"task_ids"`
}

type PullTaskResRequest struct {
	TaskIDs []string `json:"task_ids"`
}

type PullTaskResResponse struct {
	TaskResList []TaskMsg `json:"task_res_list"`
}

type GetNodesRequest struct {
	RunID uint64 `json:"run_id,string"`
}

type GetNodesResponse struct {
	NodeIDs     []uint64       `json:"node_ids"`
	ClockStatus ClockStatusMsg `json:"clock_status"`
}

// ClockStatusMsg is the wire form of clock.Status: a diagnostic
// attached to responses so operators can distinguish an offline node
// from a server whose clock has drifted.
type ClockStatusMsg struct {
	Phase     string `json:"phase"`
	OffsetMs  int64  `json:"offset_ms"`
	Error     string `json:"error,omitempty"`
	CheckedAt string `json:"checked_at"`
}

// --- Exec ---

type StartRunRequest struct {
	FabFile []byte `json:"fab_file"`
}

type StartRunResponse struct {
	RunID uint64 `json:"run_id,string"`
}

type StreamLogsRequest struct {
	RunID uint64 `json:"run_id,string"`
}

type StreamLogsResponse struct {
	LogOutput string `json:"log_output"`
}

// --- ClientAppIo ---

type PullClientAppInputsRequest struct {
	Token string `json:"token"`
}

type PullClientAppInputsResponse struct {
	Message []byte `json:"message"`
	Context []byte `json:"context"`
	Run     RunMsg `json:"run"`
}

type PushClientAppOutputsRequest struct {
	Token   string `json:"token"`
	Message []byte `json:"message"`
	Context []byte `json:"context"`
}

type PushClientAppOutputsResponse struct {
	Status string `json:"status"`
}
