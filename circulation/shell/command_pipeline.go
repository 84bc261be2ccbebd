package shell

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
)

// LedgerLockKey is the single lock every state-machine operation takes.
const LedgerLockKey = "circulation-ledger"

// DecideFunc is a feature's pure decision, bound to its command.
type DecideFunc func(ledger core.Ledger) core.DecisionResult

// HandlerDeps is what every command handler needs besides its own policies.
type HandlerDeps struct {
	store        LedgerStore
	locker       Locker
	retryOptions []RetryOption
}

// HandlerOption configures HandlerDeps.
type HandlerOption func(*HandlerDeps)

// WithLocker guards each attempt with locker under LedgerLockKey.
func WithLocker(locker Locker) HandlerOption {
	return func(d *HandlerDeps) {
		d.locker = locker
	}
}

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...RetryOption) HandlerOption {
	return func(d *HandlerDeps) {
		d.retryOptions = opts
	}
}

// BuildHandlerDeps applies opts on top of store.
func BuildHandlerDeps(store LedgerStore, opts ...HandlerOption) (HandlerDeps, error) {
	if store == nil {
		return HandlerDeps{}, ErrNilLedgerStore
	}

	deps := HandlerDeps{store: store}
	for _, opt := range opts {
		opt(&deps)
	}

	return deps, nil
}

// Store exposes the store, e.g. for handlers that read before deciding.
func (d HandlerDeps) Store() LedgerStore {
	return d.store
}

// ExecuteDecision runs lock -> load -> decide -> commit and retries the whole cycle on conflicts.
//
// Returns:
//   - success: a result with the decision's entity id and nil error
//   - domain failure: the core.Failure; AlreadyProcessed also sets Idempotent
//   - storage failure: ErrStorage joined with the cause
//   - exhausted retries: ledgerstore.ErrConcurrencyConflict
func ExecuteDecision(ctx context.Context, deps HandlerDeps, operation string, decide DecideFunc) (HandlerResult, error) {
	var decision core.DecisionResult

	retryMetrics, err := RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		decision, execErr = executeOnce(retryCtx, deps, operation, decide)

		return execErr
	}, deps.retryOptions...)

	switch {
	case decision.IsIdempotent():
		return NewIdempotentResult(retryMetrics, decision.EntityID), err
	case err != nil:
		return NewErrorResult(retryMetrics, decision.EntityID), err
	default:
		return NewSuccessResult(retryMetrics, decision.EntityID), nil
	}
}

func executeOnce(ctx context.Context, deps HandlerDeps, operation string, decide DecideFunc) (core.DecisionResult, error) {
	ctx = ledgerstore.WithStrongConsistency(ctx)

	if deps.locker != nil {
		unlock, err := deps.locker.Lock(ctx, LedgerLockKey)
		if err != nil {
			return core.DecisionResult{}, errors.Join(ErrStorage, err)
		}

		defer func() { _ = unlock(context.WithoutCancel(ctx)) }()
	}

	ledger, versions, err := LoadLedger(ctx, deps.store)
	if err != nil {
		return core.DecisionResult{}, err
	}

	decision := decide(ledger)

	if decisionErr := decision.HasError(); decisionErr != nil {
		return decision, decisionErr
	}

	if !decision.HasChanges() {
		return decision, nil
	}

	changes, err := ChangesFrom(decision, versions)
	if err != nil {
		return core.DecisionResult{}, err
	}

	err = deps.store.Commit(ctx, ledgerstore.BuildCommitMeta(operation), changes...)

	switch {
	case err == nil:
		return decision, nil
	case errors.Is(err, ledgerstore.ErrConcurrencyConflict):
		return core.DecisionResult{}, err
	default:
		return core.DecisionResult{}, errors.Join(ErrStorage, err)
	}
}
