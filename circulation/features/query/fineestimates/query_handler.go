package fineestimates

import (
	"context"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
)

// QueryHandler loads the ledger and delegates to Project.
// Observability is added by wrapping it in observable.QueryWrapper.
type QueryHandler struct {
	reader shell.LedgerReader
	policy core.FinePolicy
}

// NewQueryHandler creates a handler reading from reader. A nil policy means core.DefaultFinePolicy.
func NewQueryHandler(reader shell.LedgerReader, policy core.FinePolicy) (QueryHandler, error) {
	if reader == nil {
		return QueryHandler{}, shell.ErrNilLedgerStore
	}

	if policy == nil {
		policy = core.DefaultFinePolicy()
	}

	return QueryHandler{reader: reader, policy: policy}, nil
}

// Handle reads with eventual consistency; fine estimates tolerate replica lag.
func (h QueryHandler) Handle(ctx context.Context, query Query) (FineEstimates, error) {
	if err := shell.ValidateStruct(query); err != nil {
		return FineEstimates{}, err
	}

	ledger, _, err := shell.LoadLedger(ledgerstore.WithEventualConsistency(ctx), h.reader)
	if err != nil {
		return FineEstimates{}, err
	}

	return Project(ledger, query, h.policy), nil
}
