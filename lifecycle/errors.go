package lifecycle

import (
	"fmt"
)

// ValidationError - malformed or missing input for the requested transition.
// Surfaced to the actor, never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ConflictError - business-rule conflict, distinguishable from a validation
// failure so callers can explain why the action was blocked.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// GeofenceError - the check-in happened too far from the point. Soft block:
// resubmitting with a justification succeeds.
type GeofenceError struct {
	DistanceKm  float64
	ThresholdKm float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("check-in %.2f km away from the point (threshold %.2f km); justification required",
		e.DistanceKm, e.ThresholdKm)
}
