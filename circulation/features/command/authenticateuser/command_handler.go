package authenticateuser

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
)

// ErrNilMatcher is returned when the handler is built without a password matcher.
var ErrNilMatcher = errors.New("password matcher must not be nil")

// PasswordMatcher verifies a plain password against a stored hash.
type PasswordMatcher interface {
	Matches(hash, plain string) bool
}

// CommandHandler validates the command and runs Decide inside the shell's retrying critical section.
type CommandHandler struct {
	deps    shell.HandlerDeps
	matcher PasswordMatcher
}

// NewCommandHandler creates a handler on top of store.
func NewCommandHandler(store shell.LedgerStore, matcher PasswordMatcher, opts ...shell.HandlerOption) (CommandHandler, error) {
	if matcher == nil {
		return CommandHandler{}, ErrNilMatcher
	}

	deps, err := shell.BuildHandlerDeps(store, opts...)
	if err != nil {
		return CommandHandler{}, err
	}

	return CommandHandler{deps: deps, matcher: matcher}, nil
}

// Handle returns the authenticated user id in HandlerResult.EntityID.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if err := shell.ValidateStruct(command); err != nil {
		return shell.HandlerResult{}, err
	}

	return shell.ExecuteDecision(ctx, h.deps, commandType, func(ledger core.Ledger) core.DecisionResult {
		return Decide(ledger, command, h.matcher.Matches)
	})
}
