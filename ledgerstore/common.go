package ledgerstore

import (
	"errors"
)

var (
	// ErrConcurrencyConflict is returned by Commit when at least one expected version no longer matches.
	ErrConcurrencyConflict = errors.New("concurrency error, the ledger was modified concurrently")

	// ErrNilDatabaseConnection is returned when an engine is constructed without a database connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when an empty table name is configured.
	ErrEmptyTableName = errors.New("empty table name supplied")

	// ErrLoadingResourceFailed is returned when reading a collection from the backing store fails.
	ErrLoadingResourceFailed = errors.New("loading resource failed")

	// ErrSavingResourceFailed is returned when replacing a collection in the backing store fails.
	ErrSavingResourceFailed = errors.New("saving resource failed")

	// ErrCommitFailed is returned when a commit fails for reasons other than a concurrency conflict.
	ErrCommitFailed = errors.New("committing changes failed")

	// ErrBuildingQueryFailed is returned when a SQL statement cannot be built.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrEmptyCommit is returned when Commit is called without any changes.
	ErrEmptyCommit = errors.New("commit must contain at least one change")

	// ErrDuplicateResourceInCommit is returned when one commit changes the same resource twice.
	ErrDuplicateResourceInCommit = errors.New("commit contains the same resource more than once")
)

// VersionUint is the per-collection write counter. A collection that was never written has version 0.
type VersionUint = uint64
