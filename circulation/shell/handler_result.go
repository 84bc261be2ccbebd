package shell

import "time"

// HandlerResult represents the outcome of a command handler execution.
// It captures business outcomes and retry metadata without coupling the handler to observability.
type HandlerResult struct {
	// Idempotent is true when the operation had already happened. The error is then an AlreadyProcessed failure.
	Idempotent bool

	// EntityID is the id of the created or affected record, e.g. the new Issue on approval.
	EntityID string

	// RetryAttempts is the total number of attempts made (1 for no retries).
	RetryAttempts int

	// TotalRetryDelay is the time spent sleeping between attempts.
	TotalRetryDelay time.Duration

	// LastErrorType is "none", "concurrency_conflict", "context_canceled", "context_deadline_exceeded" or "other".
	LastErrorType string

	// RetriesExhausted is true when every attempt ended in a concurrency conflict.
	RetriesExhausted bool
}

// RetryMetrics describes how RetryWithExponentialBackoff went.
type RetryMetrics struct {
	Attempts         int
	TotalDelay       time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

func newResult(retryMetrics RetryMetrics, entityID string, idempotent bool) HandlerResult {
	return HandlerResult{
		Idempotent:       idempotent,
		EntityID:         entityID,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

// NewSuccessResult creates a HandlerResult for an operation that changed the ledger.
func NewSuccessResult(retryMetrics RetryMetrics, entityID string) HandlerResult {
	return newResult(retryMetrics, entityID, false)
}

// NewIdempotentResult creates a HandlerResult for an operation that was already done.
func NewIdempotentResult(retryMetrics RetryMetrics, entityID string) HandlerResult {
	return newResult(retryMetrics, entityID, true)
}

// NewErrorResult creates a HandlerResult for a refused or failed operation.
func NewErrorResult(retryMetrics RetryMetrics, entityID string) HandlerResult {
	return newResult(retryMetrics, entityID, false)
}
