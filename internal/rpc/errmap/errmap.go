// Package errmap converts internal store/validation errors into gRPC
// status errors, following ployz's toGRPCError switchboard:
// typed sentinels first, string matching as a fallback for anything
// that hasn't been converted to a typed error yet.
package errmap

import (
	"strings"

	"fleetml/internal/store"

	"github.com/containerd/errdefs"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToGRPC converts err into a gRPC status error. nil maps to nil.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}

	if errdefs.IsNotFound(err) {
		return status.Error(codes.NotFound, err.Error())
	}
	if errdefs.IsAlreadyExists(err) {
		return status.Error(codes.AlreadyExists, err.Error())
	}
	if errdefs.IsInvalidArgument(err) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if errdefs.IsUnavailable(err) {
		return status.Error(codes.Unavailable, err.Error())
	}

	var valErr *store.ErrValidation
	if asValidation(err, &valErr) {
		return validationStatus(valErr)
	}

	// Fallback to string matching for errors not yet converted to typed
	// sentinels.
	msg := err.Error()

	if strings.Contains(msg, "not found") {
		return status.Error(codes.NotFound, msg)
	}
	if strings.Contains(msg, "already exists") || strings.Contains(msg, "in use") {
		return status.Error(codes.AlreadyExists, msg)
	}
	if strings.Contains(msg, "must be") || strings.Contains(msg, "required") {
		return status.Error(codes.InvalidArgument, msg)
	}

	return status.Error(codes.Internal, msg)
}

func asValidation(err error, target **store.ErrValidation) bool {
	v, ok := err.(*store.ErrValidation)
	if !ok {
		return false
	}
	*target = v
	return true
}

// validationStatus attaches a PreconditionFailure detail per field error,
// mirroring ployz's preconditionStatus helper.
func validationStatus(v *store.ErrValidation) error {
	st := status.New(codes.InvalidArgument, v.Error())
	violations := make([]*errdetails.PreconditionFailure_Violation, len(v.Errors))
	for i, e := range v.Errors {
		violations[i] = &errdetails.PreconditionFailure_Violation{
			Type:        "task_validation",
			Subject:     "task",
			Description: e,
		}
	}
	withDetails, err := st.WithDetails(&errdetails.PreconditionFailure{Violations: violations})
	if err != nil {
		return st.Err()
	}
	return withDetails.Err()
}
