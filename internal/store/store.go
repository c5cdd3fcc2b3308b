// Package store implements the durable, single-writer, multi-reader
// state layer: six logical tables (runs,
// task_ins, task_res, nodes, server credential, registered node public
// keys) plus the cross-entity invariants that make task delivery
// at-most-once and offline nodes produce substitute replies.
//
// Two implementations share the Store interface: an in-memory map-based
// store for tests (and the ":memory:" database path), and a
// modernc.org/sqlite-backed store for production, grounded in the
// teacher's infra/sqlite store opener (WAL mode, busy_timeout,
// directory creation).
package store

import (
	"context"

	"fleetml"
)

// Store is the full set of operations the coordination fabric requires.
type Store interface {
	// Tasks

	StoreTaskIns(ctx context.Context, ins fleetml.TaskIns) (taskID string, ok bool, err error)
	GetTaskIns(ctx context.Context, nodeID *uint64, limit *int) ([]fleetml.TaskIns, error)
	StoreTaskRes(ctx context.Context, res fleetml.TaskRes) (taskID string, ok bool, err error)
	GetTaskRes(ctx context.Context, taskIDs map[string]struct{}, limit *int) ([]fleetml.TaskRes, error)
	NumTaskIns(ctx context.Context) (int, error)
	NumTaskRes(ctx context.Context) (int, error)
	DeleteTasks(ctx context.Context, taskIDs []string) error

	// Nodes

	CreateNode(ctx context.Context, pingInterval int64, publicKey []byte) (nodeID uint64, err error)
	DeleteNode(ctx context.Context, nodeID uint64, publicKey []byte) error
	GetNodes(ctx context.Context, runID uint64) (map[uint64]struct{}, error)
	GetNodeID(ctx context.Context, publicKey []byte) (nodeID uint64, ok bool, err error)
	AcknowledgePing(ctx context.Context, nodeID uint64, pingInterval int64) (bool, error)

	// Runs

	CreateRun(ctx context.Context, fabID, fabVersion, fabHash string, overrideConfig map[string]any) (runID uint64, err error)
	GetRun(ctx context.Context, runID uint64) (fleetml.Run, bool, error)

	// Credentials

	StoreServerPrivatePublicKey(ctx context.Context, private, public []byte) error
	GetServerPrivateKey(ctx context.Context) ([]byte, bool, error)
	GetServerPublicKey(ctx context.Context) ([]byte, bool, error)
	StoreNodePublicKey(ctx context.Context, publicKey []byte) error
	GetNodePublicKeys(ctx context.Context) ([][]byte, error)

	Close() error
}

// nowFunc is overridable in tests that need deterministic "now()"
// behavior (e.g. exercising the online_until horizon).
var nowFunc = defaultNow
