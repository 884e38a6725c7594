package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input that failed validation.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState is returned when an editor operation is not allowed in the current state.
	ErrInvalidState = errors.New("invalid editor state")
	// ErrNoRoute is returned when the routing provider finds no path.
	ErrNoRoute = errors.New("no route found")
	// ErrStaleResponse marks a computation result superseded by a newer request.
	ErrStaleResponse = errors.New("stale response")
)

// ValidationError lists every problem found in a payload.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add records a problem.
func (e *ValidationError) Add(problem string) {
	e.Problems = append(e.Problems, problem)
}

// OrNil returns nil when no problems were recorded.
func (e *ValidationError) OrNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
