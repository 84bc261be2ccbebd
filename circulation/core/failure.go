package core

import (
	"errors"
	"fmt"
)

// FailureKind classifies why the state machine refused an operation.
type FailureKind string

const (
	NotFound         FailureKind = "NotFound"
	Unavailable      FailureKind = "Unavailable"
	AlreadyProcessed FailureKind = "AlreadyProcessed"
	LimitExceeded    FailureKind = "LimitExceeded"
	ValidationError  FailureKind = "ValidationError"
	InUse            FailureKind = "InUse"
)

// Failure is a refused operation. No state was changed.
type Failure struct {
	Kind     FailureKind
	Reason   string
	EntityID string
}

func (f Failure) Error() string {
	if f.EntityID == "" {
		return fmt.Sprintf("%s: %s", f.Kind, f.Reason)
	}

	return fmt.Sprintf("%s: %s [%s]", f.Kind, f.Reason, f.EntityID)
}

// Is makes errors.Is match any Failure of the same kind, so Failure{Kind: NotFound} works as a sentinel.
func (f Failure) Is(target error) bool {
	var other Failure
	if !errors.As(target, &other) {
		return false
	}

	return other.Kind == f.Kind && other.Reason == "" && other.EntityID == ""
}

// NewFailure builds a Failure.
func NewFailure(kind FailureKind, reason, entityID string) Failure {
	return Failure{Kind: kind, Reason: reason, EntityID: entityID}
}

// KindOf extracts the FailureKind from err, if err is or wraps a Failure.
func KindOf(err error) (FailureKind, bool) {
	var f Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}

	return "", false
}
