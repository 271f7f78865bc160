package service

import (
	"errors"
	"fmt"
)

// Errors returned by the orchestrator.
var (
	ErrInvalidPlan           = errors.New("invalid plan")
	ErrInstanceNotFound      = errors.New("instance not found")
	ErrInstanceSaveFailed    = errors.New("could not save instance")
	ErrInstanceDestroyFailed = errors.New("could not destroy instance")
	ErrCapacityExhausted     = errors.New("capacity exhausted")
)

// BackendError wraps an identity or storage backend failure, keeping the
// remote detail and the operation it occurred in.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError wraps a remote failure with the operation it occurred in.
func NewBackendError(op string, err error) *BackendError {
	return &BackendError{Op: op, Err: err}
}
