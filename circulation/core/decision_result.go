package core

import (
	"errors"
)

// DecisionResult is the outcome of a Decide function.
// Build it only with SuccessDecision, IdempotentDecision or ErrorDecision.
type DecisionResult struct {
	Outcome  string       // "success", "idempotent" or "error"
	Ledger   Ledger       // the ledger after the decision, only set on success
	Changed  []Collection // collections that differ from the input ledger
	EntityID string       // id of the created or affected record
	Err      error
}

const (
	successOutcome    = "success"
	idempotentOutcome = "idempotent"
	errorOutcome      = "error"
)

// SuccessDecision carries the mutated ledger and the collections to persist.
func SuccessDecision(ledger Ledger, entityID string, changed ...Collection) DecisionResult {
	return DecisionResult{
		Outcome:  successOutcome,
		Ledger:   ledger,
		Changed:  changed,
		EntityID: entityID,
	}
}

// IdempotentDecision reports that the operation already happened. Nothing is written,
// but the caller still receives an AlreadyProcessed failure.
func IdempotentDecision(entityID, reason string) DecisionResult {
	return DecisionResult{
		Outcome:  idempotentOutcome,
		EntityID: entityID,
		Err:      NewFailure(AlreadyProcessed, reason, entityID),
	}
}

// ErrorDecision reports a refused operation.
func ErrorDecision(kind FailureKind, reason, entityID string) DecisionResult {
	return DecisionResult{
		Outcome:  errorOutcome,
		EntityID: entityID,
		Err:      NewFailure(kind, reason, entityID),
	}
}

// HasChanges returns true if there is something to commit.
func (r DecisionResult) HasChanges() bool {
	return r.Outcome == successOutcome && len(r.Changed) > 0
}

// IsIdempotent returns true for decisions that found the work already done.
func (r DecisionResult) IsIdempotent() bool {
	return r.Outcome == idempotentOutcome
}

// HasError returns the failure if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == successOutcome {
		return nil
	}

	return r.Err
}

// Failure returns the typed failure, if any.
func (r DecisionResult) Failure() (Failure, bool) {
	var f Failure
	ok := errors.As(r.Err, &f)

	return f, ok
}
