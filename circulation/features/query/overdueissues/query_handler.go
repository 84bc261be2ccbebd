package overdueissues

import (
	"context"

	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
)

// QueryHandler loads the ledger and delegates to Project.
type QueryHandler struct {
	reader shell.LedgerReader
}

// NewQueryHandler creates a handler reading from reader.
func NewQueryHandler(reader shell.LedgerReader) (QueryHandler, error) {
	if reader == nil {
		return QueryHandler{}, shell.ErrNilLedgerStore
	}

	return QueryHandler{reader: reader}, nil
}

// Handle reads with eventual consistency.
func (h QueryHandler) Handle(ctx context.Context, query Query) (OverdueIssues, error) {
	ledger, _, err := shell.LoadLedger(ledgerstore.WithEventualConsistency(ctx), h.reader)
	if err != nil {
		return OverdueIssues{}, err
	}

	return Project(ledger, query), nil
}
