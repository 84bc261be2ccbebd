package approverequest

import (
	"context"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
)

// CommandHandler validates the command and runs Decide inside the shell's retrying critical section.
type CommandHandler struct {
	deps shell.HandlerDeps
}

// NewCommandHandler creates a handler on top of store.
func NewCommandHandler(store shell.LedgerStore, opts ...shell.HandlerOption) (CommandHandler, error) {
	deps, err := shell.BuildHandlerDeps(store, opts...)
	if err != nil {
		return CommandHandler{}, err
	}

	return CommandHandler{deps: deps}, nil
}

// Handle returns the new issue id in HandlerResult.EntityID.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if err := shell.ValidateStruct(command); err != nil {
		return shell.HandlerResult{}, err
	}

	return shell.ExecuteDecision(ctx, h.deps, commandType, func(ledger core.Ledger) core.DecisionResult {
		return Decide(ledger, command)
	})
}
