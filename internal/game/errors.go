package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDelta is returned by Update for a negative frame delta.
	ErrInvalidDelta = errors.New("invalid frame delta")
	// ErrInvalidInterval is returned when a formation interval is no longer
	// a positive number.
	ErrInvalidInterval = errors.New("invalid interval")
)

// PhaseError records a fault raised by one update phase.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// FaultedPhases returns the names of every phase that failed in err.
func FaultedPhases(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var names []string
		for _, e := range joined.Unwrap() {
			names = append(names, FaultedPhases(e)...)
		}
		return names
	}
	var pe *PhaseError
	if errors.As(err, &pe) {
		return []string{pe.Phase}
	}
	return nil
}
