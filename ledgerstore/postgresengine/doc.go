// Package postgresengine provides a PostgreSQL implementation of the ledger store.
//
// All collections live in one table, one row per resource, holding the JSON array in a jsonb column
// and a bigint version. Commit replaces several rows with a single statement: a VALUES CTE carries the
// new documents and expected versions, a locking CTE selects the matching rows FOR UPDATE, and the UPDATE
// only fires when every expected row was locked. Either all rows change or none do.
//
// The engine accepts pgxpool.Pool, sql.DB and sqlx.DB connections. Each can be paired with a replica
// that serves Load calls made with ledgerstore.WithEventualConsistency.
//
// Usage:
//
//	store, err := postgresengine.NewLedgerStoreFromPGXPool(pool,
//		postgresengine.WithContextualLogger(logger),
//		postgresengine.WithMetrics(metrics),
//	)
//
// Schema migrations are embedded and applied with Migrate.
package postgresengine
