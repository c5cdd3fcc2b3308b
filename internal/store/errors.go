package store

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// Typed store errors, classified via containerd/errdefs so RPC servicers
// can map them to gRPC codes without string matching (see
// internal/rpc/errmap), mirroring ployz's errdefs.IsNotFound
// classification style.

// ErrRunNotFound wraps errdefs.ErrNotFound for an unknown run_id.
func ErrRunNotFound(runID uint64) error {
	return errdefs.ErrNotFound(fmt.Errorf("run %d not found", runID))
}

// ErrNodeNotFound wraps errdefs.ErrNotFound for an unknown node_id.
func ErrNodeNotFound(nodeID uint64) error {
	return errdefs.ErrNotFound(fmt.Errorf("node %d not found", nodeID))
}

// ErrPublicKeyInUse wraps errdefs.ErrAlreadyExists: the given public key
// is already bound to a registered node.
func ErrPublicKeyInUse() error {
	return errdefs.ErrAlreadyExists(fmt.Errorf("public key already bound to a node"))
}

// ErrIDCollision wraps errdefs.ErrAlreadyExists: a freshly drawn random
// id already exists in the table. Astronomically rare;
// callers retry by drawing again.
func ErrIDCollision() error {
	return errdefs.ErrAlreadyExists(fmt.Errorf("id collision, caller should retry"))
}

// ErrCredentialExists wraps errdefs.ErrAlreadyExists: the credential
// table already has a row (singleton invariant).
func ErrCredentialExists() error {
	return errdefs.ErrAlreadyExists(fmt.Errorf("server credential already stored"))
}

// ErrFabNotFound wraps errdefs.ErrNotFound: no content is registered
// for the given fab hash.
func ErrFabNotFound(hash string) error {
	return errdefs.ErrNotFound(fmt.Errorf("fab content not found for hash %s", hash))
}

// ErrInvalidArgument wraps errdefs.ErrInvalidArgument for malformed
// caller input that isn't task validation (e.g. limit<1, node_id==0
// where a concrete node is required).
func ErrInvalidArgument(msg string) error {
	return errdefs.ErrInvalidArgument(fmt.Errorf("%s", msg))
}

// ErrValidation carries the validator's structural error strings; the
// store returns "no id" (nil, false) to the immediate caller per
// validation, but servicers still want the detail to report back.
type ErrValidation struct {
	Errors []string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Errors)
}
