package acceptreturn

import (
	"context"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
)

// CommandHandler validates the command and runs Decide inside the shell's retrying critical section.
type CommandHandler struct {
	deps   shell.HandlerDeps
	policy core.FinePolicy
}

// NewCommandHandler creates a handler on top of store. A nil policy means core.DefaultFinePolicy.
func NewCommandHandler(store shell.LedgerStore, policy core.FinePolicy, opts ...shell.HandlerOption) (CommandHandler, error) {
	deps, err := shell.BuildHandlerDeps(store, opts...)
	if err != nil {
		return CommandHandler{}, err
	}

	if policy == nil {
		policy = core.DefaultFinePolicy()
	}

	return CommandHandler{deps: deps, policy: policy}, nil
}

// Handle returns the returned issue id in HandlerResult.EntityID.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if err := shell.ValidateStruct(command); err != nil {
		return shell.HandlerResult{}, err
	}

	return shell.ExecuteDecision(ctx, h.deps, commandType, func(ledger core.Ledger) core.DecisionResult {
		return Decide(ledger, command, h.policy)
	})
}
