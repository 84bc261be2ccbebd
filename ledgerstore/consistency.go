package ledgerstore

import "context"

// ConsistencyLevel selects which database node an engine reads from.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. Command handlers need it because
	// they load, decide and commit against the versions they just read.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica. Read-only projections such as
	// fine estimates or the overdue list can tolerate slightly stale collections.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key used to store the consistency level.
const ConsistencyLevelKey contextKey = "ledgerstore.consistency_level"

// WithStrongConsistency returns a context that makes Load read from the primary.
//
//	ctx = ledgerstore.WithStrongConsistency(ctx)
//	snapshot, err := store.Load(ctx, ledgerstore.Books)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that allows Load to read from a replica.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context, defaulting to StrongConsistency.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
