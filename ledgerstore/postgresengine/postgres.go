package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/internal/instrument"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/postgresengine/internal/adapters"
)

const (
	defaultTableName        = "ledger_resources"
	defaultJournalTableName = "ledger_commits"
	dialectPostgres         = "postgres"

	colResource    = "resource"
	colItems       = "items"
	colVersion     = "version"
	colUpdatedAt   = "updated_at"
	colExpected    = "expected"
	colMatched     = "matched"
	colWrite       = "write"
	colCommitID    = "commit_id"
	colOperation   = "operation"
	colResources   = "resources"
	colCommittedAt = "committed_at"

	cteVals    = "vals"
	cteLocked  = "locked"
	cteGuard   = "guard"
	aliasRow   = "r"
	aliasVals  = "v"
	aliasGuard = "g"

	castText    = "?::text"
	castJsonb   = "?::jsonb"
	castBigint  = "?::bigint"
	castBoolean = "?::boolean"

	logMsgBuildQueryFailed    = "failed to build query"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgJournalFailed       = "failed to write commit journal"
	logMsgSQLExecuted         = "executed sql for: "
	logMsgLoaded              = "resource loaded"
	logMsgSaved               = "resource saved"
	logMsgCommitted           = "changes committed"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logAttrQuery              = "query"
	logAttrResource           = "resource"
	logAttrVersion            = "version"
	logAttrChangeCount        = "change_count"
	logAttrRowsAffected       = "rows_affected"
	logAttrDurationMS         = "duration_ms"
	logAttrOperation          = "operation"
	logAttrCommitID           = "commit_id"
)

// LedgerStore is a PostgreSQL-backed ledger store.
type LedgerStore struct {
	db               adapters.DBAdapter
	tableName        string
	journalTableName string
	obs              ledgerstore.Observability
	recorder         instrument.Recorder
}

// NewLedgerStoreFromPGXPool creates a new LedgerStore using a pgx Pool with optional configuration.
func NewLedgerStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*LedgerStore, error) {
	if db == nil {
		return nil, ledgerstore.ErrNilDatabaseConnection
	}

	return newLedgerStore(adapters.NewPGXAdapter(db), options...)
}

// NewLedgerStoreFromPGXPoolAndReplica creates a new LedgerStore that reads eventually consistent loads from the replica.
func NewLedgerStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*LedgerStore, error) {
	if db == nil || replica == nil {
		return nil, ledgerstore.ErrNilDatabaseConnection
	}

	return newLedgerStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewLedgerStoreFromSQLDB creates a new LedgerStore using a sql.DB with optional configuration.
func NewLedgerStoreFromSQLDB(db *sql.DB, options ...Option) (*LedgerStore, error) {
	if db == nil {
		return nil, ledgerstore.ErrNilDatabaseConnection
	}

	return newLedgerStore(adapters.NewSQLAdapter(db), options...)
}

// NewLedgerStoreFromSQLDBAndReplica creates a new LedgerStore using a sql.DB primary and replica.
func NewLedgerStoreFromSQLDBAndReplica(db *sql.DB, replica *sql.DB, options ...Option) (*LedgerStore, error) {
	if db == nil || replica == nil {
		return nil, ledgerstore.ErrNilDatabaseConnection
	}

	return newLedgerStore(adapters.NewSQLAdapterWithReplica(db, replica), options...)
}

// NewLedgerStoreFromSQLX creates a new LedgerStore using a sqlx.DB with optional configuration.
func NewLedgerStoreFromSQLX(db *sqlx.DB, options ...Option) (*LedgerStore, error) {
	if db == nil {
		return nil, ledgerstore.ErrNilDatabaseConnection
	}

	return newLedgerStore(adapters.NewSQLXAdapter(db), options...)
}

// NewLedgerStoreFromSQLXAndReplica creates a new LedgerStore using a sqlx.DB primary and replica.
func NewLedgerStoreFromSQLXAndReplica(db *sqlx.DB, replica *sqlx.DB, options ...Option) (*LedgerStore, error) {
	if db == nil || replica == nil {
		return nil, ledgerstore.ErrNilDatabaseConnection
	}

	return newLedgerStore(adapters.NewSQLXAdapterWithReplica(db, replica), options...)
}

func newLedgerStore(db adapters.DBAdapter, options ...Option) (*LedgerStore, error) {
	s := &LedgerStore{
		db:               db,
		tableName:        defaultTableName,
		journalTableName: defaultJournalTableName,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	s.recorder = instrument.NewRecorder(s.obs)

	return s, nil
}

// Load reads one collection. A collection without a row loads as an empty array at version 0.
func (s *LedgerStore) Load(ctx context.Context, resource ledgerstore.Resource) (ledgerstore.Snapshot, error) {
	ctx, span := s.recorder.StartSpan(ctx, ledgerstore.SpanNameLoad, map[string]string{
		ledgerstore.AttrResource:    resource.String(),
		ledgerstore.AttrConsistency: ledgerstore.GetConsistencyLevel(ctx).String(),
	})

	snapshot, err := s.load(ctx, resource)
	if err != nil {
		s.finishWithError(ctx, span, ledgerstore.OperationLoad, ledgerstore.MetricLoadDuration, err)
		return ledgerstore.Snapshot{}, err
	}

	s.recorder.RecordDuration(ctx, ledgerstore.MetricLoadDuration, span.Elapsed(), ledgerstore.OperationLoad, ledgerstore.StatusSuccess)
	s.recorder.RecordValue(ctx, ledgerstore.MetricItemsBytes, float64(len(snapshot.ItemsJSON)), ledgerstore.OperationLoad, resource)
	s.recorder.FinishSpan(span, ledgerstore.StatusSuccess, map[string]string{ledgerstore.AttrVersion: formatVersion(snapshot.Version)})
	s.recorder.Operation(ctx, logMsgLoaded,
		logAttrResource, resource.String(),
		logAttrVersion, snapshot.Version,
		logAttrDurationMS, instrument.ToMilliseconds(span.Elapsed()))

	return snapshot, nil
}

func (s *LedgerStore) load(ctx context.Context, resource ledgerstore.Resource) (ledgerstore.Snapshot, error) {
	if _, err := ledgerstore.ParseResource(string(resource)); err != nil {
		return ledgerstore.Snapshot{}, err
	}

	sqlQuery, err := s.buildLoadQuery(resource)
	if err != nil {
		s.recorder.Error(ctx, logMsgBuildQueryFailed, err, logAttrResource, resource.String())
		return ledgerstore.Snapshot{}, err
	}

	rows, err := s.db.Query(ctx, sqlQuery)
	s.recorder.Debug(ctx, logMsgSQLExecuted+ledgerstore.OperationLoad, logAttrQuery, sqlQuery)
	if err != nil {
		s.recorder.Error(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
		return ledgerstore.Snapshot{}, errors.Join(ledgerstore.ErrLoadingResourceFailed, err)
	}
	defer s.closeRows(ctx, rows)

	var itemsJSON string
	var version int64

	if rows.Next() {
		if scanErr := rows.Scan(&itemsJSON, &version); scanErr != nil {
			s.recorder.Error(ctx, logMsgScanRowFailed, scanErr)
			return ledgerstore.Snapshot{}, errors.Join(ledgerstore.ErrLoadingResourceFailed, scanErr)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return ledgerstore.Snapshot{}, errors.Join(ledgerstore.ErrLoadingResourceFailed, rowsErr)
	}

	return ledgerstore.BuildSnapshot(resource, []byte(itemsJSON), ledgerstore.VersionUint(version))
}

// Save replaces one collection unconditionally (last write wins) and bumps its version.
func (s *LedgerStore) Save(ctx context.Context, resource ledgerstore.Resource, itemsJSON []byte) error {
	ctx, span := s.recorder.StartSpan(ctx, ledgerstore.SpanNameSave, map[string]string{ledgerstore.AttrResource: resource.String()})

	if err := s.save(ctx, resource, itemsJSON); err != nil {
		s.finishWithError(ctx, span, ledgerstore.OperationSave, ledgerstore.MetricSaveDuration, err)
		return err
	}

	s.recorder.RecordDuration(ctx, ledgerstore.MetricSaveDuration, span.Elapsed(), ledgerstore.OperationSave, ledgerstore.StatusSuccess)
	s.recorder.FinishSpan(span, ledgerstore.StatusSuccess, nil)
	s.recorder.Operation(ctx, logMsgSaved, logAttrResource, resource.String())

	return nil
}

func (s *LedgerStore) save(ctx context.Context, resource ledgerstore.Resource, itemsJSON []byte) error {
	if _, err := ledgerstore.ParseResource(string(resource)); err != nil {
		return err
	}

	if err := ledgerstore.ValidateItemsJSON(itemsJSON); err != nil {
		return err
	}

	sqlQuery, err := s.buildSaveQuery(resource, itemsJSON)
	if err != nil {
		s.recorder.Error(ctx, logMsgBuildQueryFailed, err, logAttrResource, resource.String())
		return err
	}

	if _, err = s.exec(ctx, ledgerstore.OperationSave, sqlQuery); err != nil {
		return errors.Join(ledgerstore.ErrSavingResourceFailed, err)
	}

	return nil
}

// Commit replaces all changed collections in one statement if every expected version still matches.
// If any collection was written in the meantime nothing is changed and ErrConcurrencyConflict is returned.
func (s *LedgerStore) Commit(ctx context.Context, meta ledgerstore.CommitMeta, changes ...ledgerstore.Change) error {
	ctx, span := s.recorder.StartSpan(ctx, ledgerstore.SpanNameCommit, map[string]string{
		ledgerstore.AttrCommitID:  meta.CommitID.String(),
		ledgerstore.AttrOperation: meta.Operation,
		ledgerstore.AttrResources: joinResources(changes),
	})

	if err := s.commit(ctx, changes); err != nil {
		if errors.Is(err, ledgerstore.ErrConcurrencyConflict) {
			s.recorder.RecordConflict(ctx, ledgerstore.OperationCommit)
			s.recorder.RecordDuration(ctx, ledgerstore.MetricCommitDuration, span.Elapsed(), ledgerstore.OperationCommit, ledgerstore.StatusConcurrencyConflict)
			s.recorder.FinishSpan(span, ledgerstore.StatusConcurrencyConflict, nil)
			s.recorder.Operation(ctx, logMsgConcurrencyConflict,
				logAttrOperation, meta.Operation,
				logAttrCommitID, meta.CommitID.String(),
				logAttrChangeCount, len(changes))

			return err
		}

		s.finishWithError(ctx, span, ledgerstore.OperationCommit, ledgerstore.MetricCommitDuration, err)

		return err
	}

	s.writeJournal(ctx, meta, changes)

	s.recorder.RecordDuration(ctx, ledgerstore.MetricCommitDuration, span.Elapsed(), ledgerstore.OperationCommit, ledgerstore.StatusSuccess)
	s.recorder.FinishSpan(span, ledgerstore.StatusSuccess, nil)
	s.recorder.Operation(ctx, logMsgCommitted,
		logAttrOperation, meta.Operation,
		logAttrCommitID, meta.CommitID.String(),
		logAttrChangeCount, len(changes),
		logAttrDurationMS, instrument.ToMilliseconds(span.Elapsed()))

	return nil
}

func (s *LedgerStore) commit(ctx context.Context, changes []ledgerstore.Change) error {
	if err := ledgerstore.ValidateChanges(changes); err != nil {
		return err
	}

	// Collections that were never written have no row yet; create them at version 0 so they can be locked.
	if seedQuery, needed, err := s.buildEnsureRowsQuery(changes); err != nil {
		return err
	} else if needed {
		if _, err = s.exec(ctx, ledgerstore.OperationCommit, seedQuery); err != nil {
			return errors.Join(ledgerstore.ErrCommitFailed, err)
		}
	}

	sqlQuery, err := s.buildCommitQuery(changes)
	if err != nil {
		s.recorder.Error(ctx, logMsgBuildQueryFailed, err, logAttrChangeCount, len(changes))
		return err
	}

	rowsAffected, err := s.exec(ctx, ledgerstore.OperationCommit, sqlQuery)
	if err != nil {
		return errors.Join(ledgerstore.ErrCommitFailed, err)
	}

	if rowsAffected < int64(ledgerstore.CountWrites(changes)) {
		return ledgerstore.ErrConcurrencyConflict
	}

	return nil
}

func (s *LedgerStore) exec(ctx context.Context, operation string, sqlQuery string) (int64, error) {
	result, err := s.db.Exec(ctx, sqlQuery)
	s.recorder.Debug(ctx, logMsgSQLExecuted+operation, logAttrQuery, sqlQuery)

	if err != nil {
		s.recorder.Error(ctx, logMsgDBExecFailed, err, logAttrQuery, sqlQuery)
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.recorder.Error(ctx, logMsgRowsAffectedFailed, err)
		return 0, err
	}

	s.recorder.Debug(ctx, logMsgSQLExecuted+operation, logAttrRowsAffected, rowsAffected)

	return rowsAffected, nil
}

// writeJournal records the commit. The ledger change is already durable, so a failure here is only logged.
func (s *LedgerStore) writeJournal(ctx context.Context, meta ledgerstore.CommitMeta, changes []ledgerstore.Change) {
	if s.journalTableName == "" {
		return
	}

	sqlQuery, err := s.buildJournalQuery(meta, changes)
	if err == nil {
		_, err = s.exec(ctx, ledgerstore.OperationCommit, sqlQuery)
	}

	if err != nil {
		s.recorder.Warn(ctx, logMsgJournalFailed, err, logAttrCommitID, meta.CommitID.String())
	}
}

func (s *LedgerStore) buildLoadQuery(resource ledgerstore.Resource) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(goqu.L("?::text", goqu.C(colItems)), goqu.C(colVersion)).
		Where(goqu.C(colResource).Eq(resource.String()))

	sqlQuery, _, err := selectStmt.ToSQL()
	if err != nil {
		return "", errors.Join(ledgerstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (s *LedgerStore) buildSaveQuery(resource ledgerstore.Resource, itemsJSON []byte) (string, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tableName).
		Rows(goqu.Record{
			colResource:  resource.String(),
			colItems:     goqu.L(castJsonb, string(itemsJSON)),
			colVersion:   1,
			colUpdatedAt: goqu.L("now()"),
		}).
		OnConflict(goqu.DoUpdate(colResource, goqu.Record{
			colItems:     goqu.L("EXCLUDED.items"),
			colVersion:   goqu.L("? + 1", goqu.I(s.tableName+"."+colVersion)),
			colUpdatedAt: goqu.L("now()"),
		}))

	sqlQuery, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", errors.Join(ledgerstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (s *LedgerStore) buildEnsureRowsQuery(changes []ledgerstore.Change) (string, bool, error) {
	rows := make([]any, 0, len(changes))
	for _, c := range changes {
		if c.ExpectedVersion == 0 {
			rows = append(rows, goqu.Record{colResource: c.Resource.String()})
		}
	}

	if len(rows) == 0 {
		return "", false, nil
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tableName).
		Rows(rows...).
		OnConflict(goqu.DoNothing())

	sqlQuery, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", false, errors.Join(ledgerstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, true, nil
}

func (s *LedgerStore) buildCommitQuery(changes []ledgerstore.Change) (string, error) {
	builder := goqu.Dialect(dialectPostgres)

	// One SELECT per change, combined with UNION ALL, carries the new documents and expected versions.
	// Guards carry an empty document and write = false: they are locked and counted but never updated.
	valueStmts := make([]*goqu.SelectDataset, len(changes))
	for i, c := range changes {
		itemsJSON := c.ItemsJSON
		if c.IsGuard() {
			itemsJSON = ledgerstore.EmptyItemsJSON
		}

		valueStmts[i] = builder.Select(
			goqu.L(castText, c.Resource.String()).As(colResource),
			goqu.L(castJsonb, string(itemsJSON)).As(colItems),
			goqu.L(castBigint, c.ExpectedVersion).As(colExpected),
			goqu.L(castBoolean, !c.IsGuard()).As(colWrite),
		)
	}

	valsStmt := valueStmts[0]
	for i := 1; i < len(valueStmts); i++ {
		valsStmt = valsStmt.UnionAll(valueStmts[i])
	}

	// Lock exactly the rows that are still at their expected version
	lockedStmt := builder.
		From(goqu.T(s.tableName).As(aliasRow)).
		Join(
			goqu.T(cteVals).As(aliasVals),
			goqu.On(
				goqu.I(aliasRow+"."+colResource).Eq(goqu.I(aliasVals+"."+colResource)),
				goqu.I(aliasRow+"."+colVersion).Eq(goqu.I(aliasVals+"."+colExpected)),
			),
		).
		Select(goqu.I(aliasRow + "." + colResource)).
		ForUpdate(exp.Wait, goqu.T(aliasRow))

	guardStmt := builder.
		From(cteLocked).
		Select(goqu.COUNT(goqu.Star()).As(colMatched))

	updateStmt := builder.
		Update(goqu.T(s.tableName).As(aliasRow)).
		With(cteVals, valsStmt).
		With(cteLocked, lockedStmt).
		With(cteGuard, guardStmt).
		Set(goqu.Record{
			colItems:     goqu.I(aliasVals + "." + colItems),
			colVersion:   goqu.L("? + 1", goqu.I(aliasRow+"."+colVersion)),
			colUpdatedAt: goqu.L("now()"),
		}).
		From(goqu.T(cteVals).As(aliasVals), goqu.T(cteGuard).As(aliasGuard)).
		Where(
			goqu.I(aliasRow+"."+colResource).Eq(goqu.I(aliasVals+"."+colResource)),
			goqu.I(aliasRow+"."+colVersion).Eq(goqu.I(aliasVals+"."+colExpected)),
			goqu.I(aliasVals+"."+colWrite).IsTrue(),
			goqu.I(aliasGuard+"."+colMatched).Eq(len(changes)),
		)

	sqlQuery, _, err := updateStmt.ToSQL()
	if err != nil {
		return "", errors.Join(ledgerstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (s *LedgerStore) buildJournalQuery(meta ledgerstore.CommitMeta, changes []ledgerstore.Change) (string, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.journalTableName).
		Rows(goqu.Record{
			colCommitID:    meta.CommitID.String(),
			colOperation:   meta.Operation,
			colResources:   joinResources(changes),
			colCommittedAt: meta.CommittedAt,
		})

	sqlQuery, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", errors.Join(ledgerstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (s *LedgerStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		s.recorder.Warn(ctx, logMsgCloseRowsFailed, err)
	}
}

func (s *LedgerStore) finishWithError(ctx context.Context, span instrument.Span, operation, metric string, err error) {
	errorType := instrument.ClassifyError(err)

	s.recorder.RecordDatabaseError(ctx, operation, errorType)
	s.recorder.RecordDuration(ctx, metric, span.Elapsed(), operation, ledgerstore.StatusError)
	s.recorder.FinishSpan(span, ledgerstore.StatusError, map[string]string{ledgerstore.AttrErrorType: errorType})
}

func joinResources(changes []ledgerstore.Change) string {
	names := make([]string, 0, len(changes))
	for _, c := range changes {
		if !c.IsGuard() {
			names = append(names, c.Resource.String())
		}
	}

	return strings.Join(names, ",")
}

func formatVersion(v ledgerstore.VersionUint) string {
	return strconv.FormatUint(v, 10)
}
