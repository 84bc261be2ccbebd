package config

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/memengine"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/postgresengine"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/restengine"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/sqliteengine"
)

// Observability is handed to whichever engine gets built. Nil fields are skipped.
type Observability struct {
	Logger  ledgerstore.ContextualLogger
	Metrics ledgerstore.MetricsCollector
	Tracing ledgerstore.TracingCollector
}

// Ledger is an opened store plus whatever must be released on shutdown.
type Ledger struct {
	Store   shell.LedgerStore
	closers []func() error
}

// Close releases connections in reverse opening order.
func (l *Ledger) Close() error {
	var err error

	for i := len(l.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, l.closers[i]())
	}

	l.closers = nil

	return err
}

func (l *Ledger) onClose(fn func() error) {
	l.closers = append(l.closers, fn)
}

// OpenLedger builds the store selected by cfg.LedgerDriver.
// SQL engines are migrated before they are returned.
func OpenLedger(ctx context.Context, cfg Config, obs Observability) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.LedgerDriver {
	case DriverMemory:
		return openMemory(obs)
	case DriverSQLite:
		return openSQLite(ctx, cfg, obs)
	case DriverPostgres:
		return openPostgres(ctx, cfg, obs)
	case DriverREST:
		return openREST(cfg, obs)
	default:
		return nil, ErrUnknownLedgerDriver
	}
}

func openMemory(obs Observability) (*Ledger, error) {
	var opts []memengine.Option

	if obs.Logger != nil {
		opts = append(opts, memengine.WithContextualLogger(obs.Logger))
	}

	if obs.Metrics != nil {
		opts = append(opts, memengine.WithMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		opts = append(opts, memengine.WithTracing(obs.Tracing))
	}

	store, err := memengine.NewLedgerStore(opts...)
	if err != nil {
		return nil, err
	}

	return &Ledger{Store: store}, nil
}

func openSQLite(ctx context.Context, cfg Config, obs Observability) (*Ledger, error) {
	var opts []sqliteengine.Option

	if obs.Logger != nil {
		opts = append(opts, sqliteengine.WithContextualLogger(obs.Logger))
	}

	if obs.Metrics != nil {
		opts = append(opts, sqliteengine.WithMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		opts = append(opts, sqliteengine.WithTracing(obs.Tracing))
	}

	store, err := sqliteengine.Open(ctx, cfg.SQLitePath, opts...)
	if err != nil {
		return nil, err
	}

	ledger := &Ledger{Store: store}
	ledger.onClose(store.Close)

	return ledger, nil
}

func postgresOptions(obs Observability) []postgresengine.Option {
	var opts []postgresengine.Option

	if obs.Logger != nil {
		opts = append(opts, postgresengine.WithContextualLogger(obs.Logger))
	}

	if obs.Metrics != nil {
		opts = append(opts, postgresengine.WithMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		opts = append(opts, postgresengine.WithTracing(obs.Tracing))
	}

	return opts
}

func openPostgres(ctx context.Context, cfg Config, obs Observability) (*Ledger, error) {
	ledger := &Ledger{}

	store, err := connectPostgres(ctx, cfg, obs, ledger)
	if err != nil {
		return nil, errors.Join(err, ledger.Close())
	}

	ledger.Store = store

	return ledger, nil
}

func connectPostgres(ctx context.Context, cfg Config, obs Observability, ledger *Ledger) (*postgresengine.LedgerStore, error) {
	opts := postgresOptions(obs)

	switch cfg.PostgresDriver {
	case PostgresDriverSQL:
		db, err := PostgresSQLDBConfig(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		ledger.onClose(db.Close)

		if err = postgresengine.Migrate(ctx, db); err != nil {
			return nil, err
		}

		if cfg.PostgresReplicaDSN == "" {
			return postgresengine.NewLedgerStoreFromSQLDB(db, opts...)
		}

		replica, err := PostgresSQLDBConfig(ctx, cfg.PostgresReplicaDSN)
		if err != nil {
			return nil, err
		}
		ledger.onClose(replica.Close)

		return postgresengine.NewLedgerStoreFromSQLDBAndReplica(db, replica, opts...)

	case PostgresDriverSQLX:
		db, err := PostgresSQLXConfig(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		ledger.onClose(db.Close)

		if err = postgresengine.Migrate(ctx, db.DB); err != nil {
			return nil, err
		}

		if cfg.PostgresReplicaDSN == "" {
			return postgresengine.NewLedgerStoreFromSQLX(db, opts...)
		}

		replica, err := PostgresSQLXConfig(ctx, cfg.PostgresReplicaDSN)
		if err != nil {
			return nil, err
		}
		ledger.onClose(replica.Close)

		return postgresengine.NewLedgerStoreFromSQLXAndReplica(db, replica, opts...)

	default:
		pool, err := openPGXPool(ctx, cfg.PostgresDSN, ledger)
		if err != nil {
			return nil, err
		}

		if err = migratePGXPool(ctx, pool); err != nil {
			return nil, err
		}

		if cfg.PostgresReplicaDSN == "" {
			return postgresengine.NewLedgerStoreFromPGXPool(pool, opts...)
		}

		replica, err := openPGXPool(ctx, cfg.PostgresReplicaDSN, ledger)
		if err != nil {
			return nil, err
		}

		return postgresengine.NewLedgerStoreFromPGXPoolAndReplica(pool, replica, opts...)
	}
}

func openPGXPool(ctx context.Context, dsn string, ledger *Ledger) (*pgxpool.Pool, error) {
	poolConfig, err := PostgresPGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	ledger.onClose(func() error {
		pool.Close()
		return nil
	})

	return pool, nil
}

func migratePGXPool(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)

	return errors.Join(postgresengine.Migrate(ctx, db), db.Close())
}

func openREST(cfg Config, obs Observability) (*Ledger, error) {
	var opts []restengine.Option

	if cfg.LedgerAPIToken != "" {
		opts = append(opts, restengine.WithBearerToken(cfg.LedgerAPIToken))
	}

	if obs.Logger != nil {
		opts = append(opts, restengine.WithContextualLogger(obs.Logger))
	}

	if obs.Metrics != nil {
		opts = append(opts, restengine.WithMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		opts = append(opts, restengine.WithTracing(obs.Tracing))
	}

	store, err := restengine.NewLedgerStore(cfg.LedgerAPIURL, opts...)
	if err != nil {
		return nil, err
	}

	return &Ledger{Store: store}, nil
}

// NewLocker returns a Redis-backed locker when REDIS_ADDR is set, otherwise an in-process one.
// The returned close func is never nil.
func NewLocker(cfg Config) (shell.Locker, func() error) {
	if cfg.RedisAddr == "" {
		return shell.NewMutexLocker(), func() error { return nil }
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	return shell.NewRedisLocker(client), client.Close
}
