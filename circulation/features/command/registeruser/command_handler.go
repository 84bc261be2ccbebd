package registeruser

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
)

// ErrNilHasher is returned when the handler is built without a password hasher.
var ErrNilHasher = errors.New("password hasher must not be nil")

// PasswordHasher turns a plain password into a storable hash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// CommandHandler hashes the password once, then runs Decide inside the shell's retrying critical section.
type CommandHandler struct {
	deps   shell.HandlerDeps
	hasher PasswordHasher
}

// NewCommandHandler creates a handler on top of store.
func NewCommandHandler(store shell.LedgerStore, hasher PasswordHasher, opts ...shell.HandlerOption) (CommandHandler, error) {
	if hasher == nil {
		return CommandHandler{}, ErrNilHasher
	}

	deps, err := shell.BuildHandlerDeps(store, opts...)
	if err != nil {
		return CommandHandler{}, err
	}

	return CommandHandler{deps: deps, hasher: hasher}, nil
}

// Handle returns the new user id in HandlerResult.EntityID.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if err := shell.ValidateStruct(command); err != nil {
		return shell.HandlerResult{}, err
	}

	hash, err := h.hasher.Hash(command.Password)
	if err != nil {
		return shell.HandlerResult{}, core.NewFailure(core.ValidationError, err.Error(), "")
	}

	return shell.ExecuteDecision(ctx, h.deps, commandType, func(ledger core.Ledger) core.DecisionResult {
		return Decide(ledger, command, hash)
	})
}
