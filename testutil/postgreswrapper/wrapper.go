package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/shell/config"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/postgresengine"
)

// DSNEnv holds the connection string of a disposable test database.
const DSNEnv = "LEDGER_TEST_POSTGRES_DSN"

const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

var resetStatements = []string{
	`UPDATE ledger_resources SET items = '[]'::jsonb, version = 0`,
	`TRUNCATE ledger_commits`,
}

// Wrapper hides which driver the store was built on.
type Wrapper interface {
	Store() *postgresengine.LedgerStore
	Exec(ctx context.Context, statement string) error
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing.
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store *postgresengine.LedgerStore
}

func (w *PGXPoolWrapper) Store() *postgresengine.LedgerStore { return w.store }

func (w *PGXPoolWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.pool.Exec(ctx, statement)
	return err
}

func (w *PGXPoolWrapper) Close() { w.pool.Close() }

// SQLDBWrapper wraps sql.DB-based testing.
type SQLDBWrapper struct {
	db    *sql.DB
	store *postgresengine.LedgerStore
}

func (w *SQLDBWrapper) Store() *postgresengine.LedgerStore { return w.store }

func (w *SQLDBWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.db.ExecContext(ctx, statement)
	return err
}

func (w *SQLDBWrapper) Close() { _ = w.db.Close() }

// SQLXWrapper wraps sqlx.DB-based testing.
type SQLXWrapper struct {
	db    *sqlx.DB
	store *postgresengine.LedgerStore
}

func (w *SQLXWrapper) Store() *postgresengine.LedgerStore { return w.store }

func (w *SQLXWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.db.ExecContext(ctx, statement)
	return err
}

func (w *SQLXWrapper) Close() { _ = w.db.Close() }

// Open builds the store for ADAPTER_TYPE, migrates the schema and empties every collection.
// The wrapper is closed when the test ends.
func Open(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skipf("%s not set, skipping PostgreSQL tests", DSNEnv)
	}

	ctx := context.Background()
	wrapper := open(ctx, t, dsn, options)
	t.Cleanup(wrapper.Close)

	for _, statement := range resetStatements {
		require.NoError(t, wrapper.Exec(ctx, statement), "error resetting the ledger tables")
	}

	return wrapper
}

func open(ctx context.Context, t testing.TB, dsn string, options []postgresengine.Option) Wrapper {
	switch adapter := strings.ToLower(os.Getenv("ADAPTER_TYPE")); adapter {
	case typePGXPool, "":
		poolConfig, err := config.PostgresPGXPoolConfig(dsn)
		require.NoError(t, err)

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		require.NoError(t, err, "error connecting to DB pool in test setup")

		db := stdlib.OpenDBFromPool(pool)
		defer func() { _ = db.Close() }()
		require.NoError(t, postgresengine.Migrate(ctx, db))

		store, err := postgresengine.NewLedgerStoreFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating ledger store")

		return &PGXPoolWrapper{pool: pool, store: store}

	case typeSQLDB:
		db, err := config.PostgresSQLDBConfig(ctx, dsn)
		require.NoError(t, err)
		require.NoError(t, postgresengine.Migrate(ctx, db))

		store, err := postgresengine.NewLedgerStoreFromSQLDB(db, options...)
		require.NoError(t, err, "error creating ledger store")

		return &SQLDBWrapper{db: db, store: store}

	case typeSQLXDB:
		db, err := config.PostgresSQLXConfig(ctx, dsn)
		require.NoError(t, err)
		require.NoError(t, postgresengine.Migrate(ctx, db.DB))

		store, err := postgresengine.NewLedgerStoreFromSQLX(db, options...)
		require.NoError(t, err, "error creating ledger store")

		return &SQLXWrapper{db: db, store: store}

	default:
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapter))
	}
}
