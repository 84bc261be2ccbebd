package ledgeraudit

const (
	queryType = "LedgerAudit"
)

// Query represents the intent to audit the whole ledger.
type Query struct{}

// BuildQuery creates a new Query.
func BuildQuery() Query {
	return Query{}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
