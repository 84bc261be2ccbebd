// Package postgreswrapper opens a migrated, emptied PostgreSQL ledger for tests over pgx, database/sql or sqlx.
//
// LEDGER_TEST_POSTGRES_DSN names the database; tests are skipped when it is unset.
// ADAPTER_TYPE selects the driver: pgx.pool (default), sql.db or sqlx.db.
package postgreswrapper
