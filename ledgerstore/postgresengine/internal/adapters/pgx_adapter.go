package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
)

// PGXAdapter implements DBAdapter for pgxpool.Pool.
type PGXAdapter struct {
	pool        *pgxpool.Pool
	replicaPool *pgxpool.Pool
}

// NewPGXAdapter creates a new PGX adapter with a primary pool.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool}
}

// NewPGXAdapterWithReplica creates a new PGX adapter with a primary pool and a replica pool.
func NewPGXAdapterWithReplica(pool *pgxpool.Pool, replica *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool, replicaPool: replica}
}

// Query uses the replica pool for eventually consistent reads if one is configured, otherwise the primary pool.
func (p *PGXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	pool := p.pool

	if p.replicaPool != nil && ledgerstore.GetConsistencyLevel(ctx) == ledgerstore.EventualConsistency {
		pool = p.replicaPool
	}

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return &pgxRows{rows: rows}, nil
}

// Exec runs a statement on the primary pool. Commits never go to the replica.
func (p *PGXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	tag, err := p.pool.Exec(ctx, query)
	if err != nil {
		return nil, err
	}

	return &pgxResult{tag: tag}, nil
}

// pgxRows adapts pgx.Rows to DBRows.
type pgxRows struct {
	rows pgx.Rows
}

// Next moves to the next ledger row.
func (p *pgxRows) Next() bool {
	return p.rows.Next()
}

// Scan reads the current row, e.g. items and version of one resource.
func (p *pgxRows) Scan(dest ...any) error {
	return p.rows.Scan(dest...)
}

// Err reports an error hit while iterating.
func (p *pgxRows) Err() error {
	return p.rows.Err()
}

// Close releases the connection. pgx closes without an error.
func (p *pgxRows) Close() error {
	p.rows.Close()
	return nil
}

// pgxResult adapts pgconn.CommandTag to DBResult.
type pgxResult struct {
	tag pgconn.CommandTag
}

// RowsAffected is what a guarded commit compares against its number of writes.
func (p *pgxResult) RowsAffected() (int64, error) {
	return p.tag.RowsAffected(), nil
}
