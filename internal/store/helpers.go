package store

import (
	"fleetml"
	"fleetml/internal/idcodec"
	"fleetml/internal/validator"
)

func validateTask(t fleetml.Task) []string {
	return validator.Validate(t)
}

func generateID() (uint64, error) {
	return idcodec.GenerateID()
}
