package sqliteengine

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/pressly/goose/v3"

	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/internal/instrument"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	migrationsDir = "migrations"

	sqlLoad         = `SELECT items, version FROM ledger_resources WHERE resource = ?`
	sqlVersion      = `SELECT version FROM ledger_resources WHERE resource = ?`
	sqlSave         = `INSERT INTO ledger_resources (resource, items, version, updated_at) VALUES (?, ?, 1, CURRENT_TIMESTAMP) ON CONFLICT(resource) DO UPDATE SET items = excluded.items, version = ledger_resources.version + 1, updated_at = CURRENT_TIMESTAMP`
	sqlEnsureRow    = `INSERT OR IGNORE INTO ledger_resources (resource) VALUES (?)`
	sqlGuardedWrite = `UPDATE ledger_resources SET items = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP WHERE resource = ? AND version = ?`
	sqlJournal      = `INSERT INTO ledger_commits (commit_id, operation, resources, committed_at) VALUES (?, ?, ?, ?)`

	logMsgLoaded              = "resource loaded"
	logMsgSaved               = "resource saved"
	logMsgCommitted           = "changes committed"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgRollbackFailed      = "failed to roll back transaction"
	logAttrResource           = "resource"
	logAttrVersion            = "version"
	logAttrOperation          = "operation"
	logAttrChangeCount        = "change_count"
)

// LedgerStore is a SQLite-backed ledger store.
type LedgerStore struct {
	db       *sql.DB
	obs      ledgerstore.Observability
	recorder instrument.Recorder
}

// Option defines a functional option for configuring LedgerStore.
type Option func(*LedgerStore) error

// WithLogger sets the logger.
func WithLogger(logger ledgerstore.Logger) Option {
	return func(s *LedgerStore) error {
		s.obs.Logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger.
func WithContextualLogger(logger ledgerstore.ContextualLogger) Option {
	return func(s *LedgerStore) error {
		s.obs.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector ledgerstore.MetricsCollector) Option {
	return func(s *LedgerStore) error {
		s.obs.Metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector.
func WithTracing(collector ledgerstore.TracingCollector) Option {
	return func(s *LedgerStore) error {
		s.obs.Tracing = collector
		return nil
	}
}

// DSN builds the connection string used by Open: WAL journal, busy timeout and IMMEDIATE write transactions.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate", path)
}

// Open opens (or creates) the database file at path and applies all migrations.
func Open(ctx context.Context, path string, options ...Option) (*LedgerStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err = Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	store, err := NewLedgerStoreFromSQLDB(db, options...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, migrationsDir)
}

// NewLedgerStoreFromSQLDB wraps an already migrated SQLite connection.
func NewLedgerStoreFromSQLDB(db *sql.DB, options ...Option) (*LedgerStore, error) {
	if db == nil {
		return nil, ledgerstore.ErrNilDatabaseConnection
	}

	s := &LedgerStore{db: db}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	s.recorder = instrument.NewRecorder(s.obs)

	return s, nil
}

// Close closes the underlying database.
func (s *LedgerStore) Close() error {
	return s.db.Close()
}

// Load reads one collection. A collection without a row loads as an empty array at version 0.
func (s *LedgerStore) Load(ctx context.Context, resource ledgerstore.Resource) (ledgerstore.Snapshot, error) {
	ctx, span := s.recorder.StartSpan(ctx, ledgerstore.SpanNameLoad, map[string]string{ledgerstore.AttrResource: resource.String()})

	snapshot, err := s.load(ctx, resource)
	if err != nil {
		s.finishWithError(ctx, span, ledgerstore.OperationLoad, ledgerstore.MetricLoadDuration, err)
		return ledgerstore.Snapshot{}, err
	}

	s.recorder.RecordDuration(ctx, ledgerstore.MetricLoadDuration, span.Elapsed(), ledgerstore.OperationLoad, ledgerstore.StatusSuccess)
	s.recorder.FinishSpan(span, ledgerstore.StatusSuccess, nil)
	s.recorder.Operation(ctx, logMsgLoaded, logAttrResource, resource.String(), logAttrVersion, snapshot.Version)

	return snapshot, nil
}

func (s *LedgerStore) load(ctx context.Context, resource ledgerstore.Resource) (ledgerstore.Snapshot, error) {
	if _, err := ledgerstore.ParseResource(string(resource)); err != nil {
		return ledgerstore.Snapshot{}, err
	}

	var items string
	var version int64

	err := s.db.QueryRowContext(ctx, sqlLoad, resource.String()).Scan(&items, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return ledgerstore.BuildSnapshot(resource, nil, 0)
	}

	if err != nil {
		s.recorder.Error(ctx, "sqlite load failed", err, logAttrResource, resource.String())
		return ledgerstore.Snapshot{}, errors.Join(ledgerstore.ErrLoadingResourceFailed, err)
	}

	return ledgerstore.BuildSnapshot(resource, []byte(items), ledgerstore.VersionUint(version))
}

// Save replaces one collection unconditionally and bumps its version.
func (s *LedgerStore) Save(ctx context.Context, resource ledgerstore.Resource, itemsJSON []byte) error {
	ctx, span := s.recorder.StartSpan(ctx, ledgerstore.SpanNameSave, map[string]string{ledgerstore.AttrResource: resource.String()})

	err := func() error {
		if _, err := ledgerstore.ParseResource(string(resource)); err != nil {
			return err
		}

		if err := ledgerstore.ValidateItemsJSON(itemsJSON); err != nil {
			return err
		}

		if _, err := s.db.ExecContext(ctx, sqlSave, resource.String(), string(itemsJSON)); err != nil {
			return errors.Join(ledgerstore.ErrSavingResourceFailed, err)
		}

		return nil
	}()

	if err != nil {
		s.finishWithError(ctx, span, ledgerstore.OperationSave, ledgerstore.MetricSaveDuration, err)
		return err
	}

	s.recorder.RecordDuration(ctx, ledgerstore.MetricSaveDuration, span.Elapsed(), ledgerstore.OperationSave, ledgerstore.StatusSuccess)
	s.recorder.FinishSpan(span, ledgerstore.StatusSuccess, nil)
	s.recorder.Operation(ctx, logMsgSaved, logAttrResource, resource.String())

	return nil
}

// Commit applies all changes in one IMMEDIATE transaction, or none of them if any expected version is stale.
func (s *LedgerStore) Commit(ctx context.Context, meta ledgerstore.CommitMeta, changes ...ledgerstore.Change) error {
	ctx, span := s.recorder.StartSpan(ctx, ledgerstore.SpanNameCommit, map[string]string{
		ledgerstore.AttrCommitID:  meta.CommitID.String(),
		ledgerstore.AttrOperation: meta.Operation,
	})

	err := s.commit(ctx, meta, changes)

	switch {
	case errors.Is(err, ledgerstore.ErrConcurrencyConflict):
		s.recorder.RecordConflict(ctx, ledgerstore.OperationCommit)
		s.recorder.RecordDuration(ctx, ledgerstore.MetricCommitDuration, span.Elapsed(), ledgerstore.OperationCommit, ledgerstore.StatusConcurrencyConflict)
		s.recorder.FinishSpan(span, ledgerstore.StatusConcurrencyConflict, nil)
		s.recorder.Operation(ctx, logMsgConcurrencyConflict, logAttrOperation, meta.Operation)

		return err

	case err != nil:
		s.finishWithError(ctx, span, ledgerstore.OperationCommit, ledgerstore.MetricCommitDuration, err)
		return err
	}

	s.recorder.RecordDuration(ctx, ledgerstore.MetricCommitDuration, span.Elapsed(), ledgerstore.OperationCommit, ledgerstore.StatusSuccess)
	s.recorder.FinishSpan(span, ledgerstore.StatusSuccess, nil)
	s.recorder.Operation(ctx, logMsgCommitted, logAttrOperation, meta.Operation, logAttrChangeCount, ledgerstore.CountWrites(changes))

	return nil
}

func (s *LedgerStore) commit(ctx context.Context, meta ledgerstore.CommitMeta, changes []ledgerstore.Change) error {
	if err := ledgerstore.ValidateChanges(changes); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Join(ledgerstore.ErrCommitFailed, err)
	}

	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.recorder.Warn(ctx, logMsgRollbackFailed, rbErr)
		}
	}

	names := make([]string, 0, len(changes))

	for _, change := range changes {
		if change.IsGuard() {
			if err = s.checkGuard(ctx, tx, change); err != nil {
				rollback()
				return err
			}

			continue
		}

		names = append(names, change.Resource.String())

		if change.ExpectedVersion == 0 {
			if _, err = tx.ExecContext(ctx, sqlEnsureRow, change.Resource.String()); err != nil {
				rollback()
				return errors.Join(ledgerstore.ErrCommitFailed, err)
			}
		}

		result, execErr := tx.ExecContext(ctx, sqlGuardedWrite, string(change.ItemsJSON), change.Resource.String(), int64(change.ExpectedVersion))
		if execErr != nil {
			rollback()
			return errors.Join(ledgerstore.ErrCommitFailed, execErr)
		}

		affected, affectedErr := result.RowsAffected()
		if affectedErr != nil {
			rollback()
			return errors.Join(ledgerstore.ErrCommitFailed, affectedErr)
		}

		if affected != 1 {
			rollback()
			return ledgerstore.ErrConcurrencyConflict
		}
	}

	if _, err = tx.ExecContext(ctx, sqlJournal, meta.CommitID.String(), meta.Operation, strings.Join(names, ","), meta.CommittedAt); err != nil {
		rollback()
		return errors.Join(ledgerstore.ErrCommitFailed, err)
	}

	if err = tx.Commit(); err != nil {
		return errors.Join(ledgerstore.ErrCommitFailed, err)
	}

	return nil
}

// checkGuard compares the stored version inside the write transaction. A missing row counts as version 0.
func (s *LedgerStore) checkGuard(ctx context.Context, tx *sql.Tx, change ledgerstore.Change) error {
	var version int64

	err := tx.QueryRowContext(ctx, sqlVersion, change.Resource.String()).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		version = 0
	case err != nil:
		return errors.Join(ledgerstore.ErrCommitFailed, err)
	}

	if ledgerstore.VersionUint(version) != change.ExpectedVersion {
		return ledgerstore.ErrConcurrencyConflict
	}

	return nil
}

func (s *LedgerStore) finishWithError(ctx context.Context, span instrument.Span, operation, metric string, err error) {
	errorType := instrument.ClassifyError(err)

	s.recorder.RecordDatabaseError(ctx, operation, errorType)
	s.recorder.RecordDuration(ctx, metric, span.Elapsed(), operation, ledgerstore.StatusError)
	s.recorder.FinishSpan(span, ledgerstore.StatusError, map[string]string{ledgerstore.AttrErrorType: errorType})
}
