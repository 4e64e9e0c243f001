// Package models defines the data structures for the Fillout webhook service.
package models

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrInvalidPayload      = errors.New("invalid form data structure")
	ErrPersistence         = errors.New("persistence error")
	ErrNotFound            = errors.New("not found")
	ErrInvalidEventVariant = errors.New("event variant must be one of: basic, extended")
)

// Pipeline steps that can fail with a PersistenceError.
const (
	StepSchool = "school"
	StepEvent  = "event"
)

// PersistenceError reports a failed write during one pipeline step.
type PersistenceError struct {
	Step string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap exposes the underlying store error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is reports ErrPersistence as a match so callers can test the category.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Message returns the caller-facing description of the failed step.
func (e *PersistenceError) Message() string {
	switch e.Step {
	case StepSchool:
		return "Failed to create school record"
	case StepEvent:
		return "Failed to create event record"
	default:
		return "Failed to persist form submission"
	}
}
