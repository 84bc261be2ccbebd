// Package sqliteengine provides a SQLite implementation of the ledger store for single-node deployments.
//
// The database runs in WAL mode and every write transaction starts IMMEDIATE, so writers serialize
// on the database lock instead of failing on upgrade. Commit checks each expected version inside
// that transaction and rolls back on the first mismatch.
package sqliteengine
