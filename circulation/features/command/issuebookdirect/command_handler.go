package issuebookdirect

import (
	"context"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
)

// CommandHandler validates the command and runs Decide inside the shell's retrying critical section.
type CommandHandler struct {
	deps   shell.HandlerDeps
	rules  core.CheckoutRules
	policy core.FinePolicy
}

// NewCommandHandler creates a handler on top of store.
// The checkout rules and fine policy only matter for QR checkouts.
func NewCommandHandler(
	store shell.LedgerStore,
	rules core.CheckoutRules,
	policy core.FinePolicy,
	opts ...shell.HandlerOption,
) (CommandHandler, error) {
	deps, err := shell.BuildHandlerDeps(store, opts...)
	if err != nil {
		return CommandHandler{}, err
	}

	if policy == nil {
		policy = core.DefaultFinePolicy()
	}

	return CommandHandler{deps: deps, rules: rules, policy: policy}, nil
}

// Handle returns the new issue id in HandlerResult.EntityID.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if err := shell.ValidateStruct(command); err != nil {
		return shell.HandlerResult{}, err
	}

	return shell.ExecuteDecision(ctx, h.deps, commandType, func(ledger core.Ledger) core.DecisionResult {
		return Decide(ledger, command, h.rules, h.policy)
	})
}
