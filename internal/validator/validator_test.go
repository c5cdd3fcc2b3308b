package validator

import (
	"testing"

	"fleetml"

	"github.com/stretchr/testify/require"
)

func validTask() fleetml.Task {
	return fleetml.Task{
		RunID:     1,
		Producer:  fleetml.Address{Anonymous: true},
		Consumer:  fleetml.Address{Anonymous: false, NodeID: 7},
		TTL:       60,
		TaskType:  "train",
		RecordSet: []byte("payload"),
	}
}

func TestValidateAcceptsWellFormedTask(t *testing.T) {
	require.Empty(t, Validate(validTask()))
}

func TestValidateRejectsZeroRunID(t *testing.T) {
	task := validTask()
	task.RunID = 0
	require.NotEmpty(t, Validate(task))
}

func TestValidateRejectsInconsistentAddressing(t *testing.T) {
	task := validTask()
	task.Consumer = fleetml.Address{Anonymous: true, NodeID: 5}
	errs := Validate(task)
	require.NotEmpty(t, errs)

	task2 := validTask()
	task2.Producer = fleetml.Address{Anonymous: false, NodeID: 0}
	require.NotEmpty(t, Validate(task2))
}

func TestValidateRejectsNonPositiveTTL(t *testing.T) {
	task := validTask()
	task.TTL = 0
	require.NotEmpty(t, Validate(task))
}

func TestValidateRejectsEmptyTaskTypeAndRecordSet(t *testing.T) {
	task := validTask()
	task.TaskType = ""
	require.NotEmpty(t, Validate(task))

	task2 := validTask()
	task2.RecordSet = nil
	require.NotEmpty(t, Validate(task2))
}
