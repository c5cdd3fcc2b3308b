// Package fleetml holds the shared domain types that flow between the
// store, the RPC servicers and the node-side connection client: Run,
// Node, TaskIns/TaskRes and the small value types they're built from.
package fleetml

import "fmt"

// Address identifies the producer or consumer of a task. Anonymous
// addressing requires NodeID == 0; non-anonymous addressing requires a
// non-zero NodeID.
type Address struct {
	Anonymous bool
	NodeID    uint64
}

// Validate checks the anonymous/node_id consistency invariant from the
// data model: anonymous=true implies node_id=0, anonymous=false implies
// node_id!=0.
func (a Address) Validate(field string) error {
	if a.Anonymous && a.NodeID != 0 {
		return fmt.Errorf("%s: anonymous address must have node_id=0, got %d", field, a.NodeID)
	}
	if !a.Anonymous && a.NodeID == 0 {
		return fmt.Errorf("%s: non-anonymous address must have a non-zero node_id", field)
	}
	return nil
}

// Run is a logical training job. Immutable once created.
type Run struct {
	RunID          uint64
	FabID          string
	FabVersion     string
	FabHash        string
	OverrideConfig map[string]any

	// PendingAt/StartingAt/RunningAt/FinishedAt are ISO-8601 timestamp
	// fields carried through the store and GetRun. No store method sets
	// them, so they are empty for every run the store creates.
	PendingAt  string
	StartingAt string
	RunningAt  string
	FinishedAt string
}

// Node is a registered SuperNode.
type Node struct {
	NodeID      uint64
	OnlineUntil int64 // unix nanoseconds
	PingInterval int64 // seconds
	PublicKey   []byte
}

// ErrorCode enumerates the closed set of error codes a substitute or
// genuine error TaskRes can carry in its recordset.
type ErrorCode string

const (
	// ErrorCodeNodeUnavailable is used for substitute replies synthesized
	// because the target node's online_until horizon has passed.
	ErrorCodeNodeUnavailable ErrorCode = "NODE_UNAVAILABLE"
	// ErrorCodeUnknown is the fallback for errors with no dedicated code.
	ErrorCodeUnknown ErrorCode = "UNKNOWN"
)

// TaskType values recognized by the core. Application task types are
// opaque strings chosen by the driver/strategy; ERROR is reserved for
// substitute and error replies synthesized by the store itself.
const TaskTypeError = "ERROR"

// RecordSet is the opaque, codec-serialized payload carried by a task.
// The core treats it as a byte blob; only the codec at the transport
// edge understands its structure.
type RecordSet []byte

// Task is the shared schema for TaskIns and TaskRes — both travel as
// the same struct; the distinction is which field of the envelope
// carries them.
type Task struct {
	TaskID      string // uuid4, minted by the store
	GroupID     string
	RunID       uint64
	Producer    Address
	Consumer    Address
	CreatedAt   string
	DeliveredAt string // "" sentinel: not yet delivered
	PushedAt    string
	TTL         float64 // seconds
	Ancestry    []string
	TaskType    string
	RecordSet   RecordSet
}

// TaskIns is a work item addressed to a consumer node.
type TaskIns = Task

// TaskRes is a reply to a specific TaskIns; Ancestry holds exactly one
// element, the task_id being answered.
type TaskRes = Task

// Fab is an application bundle's content together with the content
// hash it is stored and fetched under.
type Fab struct {
	Hash    string
	Content []byte
}
