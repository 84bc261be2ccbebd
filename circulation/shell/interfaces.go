package shell

import (
	"context"

	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
)

// LedgerReader is what query handlers need from a store.
type LedgerReader interface {
	Load(ctx context.Context, resource ledgerstore.Resource) (ledgerstore.Snapshot, error)
}

// LedgerStore is what command handlers need from a store.
// memengine, postgresengine, sqliteengine and restengine all satisfy it.
type LedgerStore interface {
	LedgerReader
	Save(ctx context.Context, resource ledgerstore.Resource, itemsJSON []byte) error
	Commit(ctx context.Context, meta ledgerstore.CommitMeta, changes ...ledgerstore.Change) error
}

// Unlock releases a lock obtained from a Locker.
type Unlock func(ctx context.Context) error

// Locker serializes state-machine operations on one key.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// Command represents the contract for all command types.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// CoreCommandHandler processes one command type without observability concerns.
// Handlers return HandlerResult containing business outcomes (idempotency, entity id) and retry metadata.
type CoreCommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// Query represents the contract for all query types.
type Query interface {
	QueryType() string
}

// CoreQueryHandler processes one query type without observability concerns.
type CoreQueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
