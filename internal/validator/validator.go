// Package validator applies structural checks to inbound TaskIns/TaskRes
// before they reach the store.
package validator

import (
	"fleetml"
)

// Validate returns the list of structural error strings for t. An empty
// slice means t is well-formed; a non-empty slice must abort the store
// operation that would otherwise persist t.
func Validate(t fleetml.Task) []string {
	var errs []string

	if t.RunID == 0 {
		errs = append(errs, "run_id must be non-zero")
	}
	if err := t.Producer.Validate("producer"); err != nil {
		errs = append(errs, err.Error())
	}
	if err := t.Consumer.Validate("consumer"); err != nil {
		errs = append(errs, err.Error())
	}
	if t.TTL <= 0 {
		errs = append(errs, "ttl must be greater than zero")
	}
	if t.TaskType == "" {
		errs = append(errs, "task_type must be non-empty")
	}
	if len(t.RecordSet) == 0 {
		errs = append(errs, "recordset must be present")
	}

	return errs
}
