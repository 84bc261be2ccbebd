// Package adapters provide database adapter implementations for the PostgreSQL ledger store.
//
// It supports pgxpool.Pool (optionally with a read replica), sql.DB and sqlx.DB behind
// one DBAdapter interface, so the engine builds SQL once and runs it on any of them.
package adapters
