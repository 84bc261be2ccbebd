package ledgerstore

import (
	"errors"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// ErrInvalidItemsJSON is returned when a collection document is not a JSON array.
var ErrInvalidItemsJSON = errors.New("items json must be a valid json array")

// EmptyItemsJSON is the document of a collection that was never written.
var EmptyItemsJSON = []byte("[]")

// Snapshot is the result of loading one collection: the raw JSON array and the version it was read at.
// It is built on scalars so the store stays agnostic of the record types in the client code.
type Snapshot struct {
	Resource  Resource
	ItemsJSON []byte
	Version   VersionUint
}

// Change replaces one collection during a Commit, provided it is still at ExpectedVersion.
// A Change without ItemsJSON is a guard: it only asserts ExpectedVersion and writes nothing.
type Change struct {
	Resource        Resource
	ExpectedVersion VersionUint
	ItemsJSON       []byte
}

// CommitMeta identifies a commit in the journal of engines that keep one.
type CommitMeta struct {
	CommitID    uuid.UUID
	Operation   string
	CommittedAt time.Time
}

// BuildSnapshot is a factory method for Snapshot. Nil or empty input is normalized to an empty array.
func BuildSnapshot(resource Resource, itemsJSON []byte, version VersionUint) (Snapshot, error) {
	if len(itemsJSON) == 0 {
		itemsJSON = EmptyItemsJSON
	}

	if err := ValidateItemsJSON(itemsJSON); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Resource: resource, ItemsJSON: itemsJSON, Version: version}, nil
}

// BuildChange is a factory method for Change.
func BuildChange(resource Resource, expectedVersion VersionUint, itemsJSON []byte) (Change, error) {
	if _, err := ParseResource(string(resource)); err != nil {
		return Change{}, err
	}

	if err := ValidateItemsJSON(itemsJSON); err != nil {
		return Change{}, err
	}

	return Change{Resource: resource, ExpectedVersion: expectedVersion, ItemsJSON: itemsJSON}, nil
}

// BuildGuard is a factory method for a version-only Change.
// It lets a commit fail when a collection the decision depended on was written concurrently.
func BuildGuard(resource Resource, expectedVersion VersionUint) (Change, error) {
	if _, err := ParseResource(string(resource)); err != nil {
		return Change{}, err
	}

	return Change{Resource: resource, ExpectedVersion: expectedVersion}, nil
}

// IsGuard reports whether the change only asserts a version.
func (c Change) IsGuard() bool {
	return c.ItemsJSON == nil
}

// CountWrites returns how many changes replace a collection, guards excluded.
func CountWrites(changes []Change) int {
	n := 0

	for _, c := range changes {
		if !c.IsGuard() {
			n++
		}
	}

	return n
}

// BuildCommitMeta creates a CommitMeta with a fresh commit id for the given operation.
func BuildCommitMeta(operation string) CommitMeta {
	return CommitMeta{
		CommitID:    uuid.New(),
		Operation:   operation,
		CommittedAt: time.Now().UTC(),
	}
}

// ValidateItemsJSON checks that a collection document is a JSON array.
func ValidateItemsJSON(itemsJSON []byte) error {
	if !jsoniter.ConfigFastest.Valid(itemsJSON) {
		return ErrInvalidItemsJSON
	}

	if jsoniter.ConfigFastest.Get(itemsJSON).ValueType() != jsoniter.ArrayValue {
		return ErrInvalidItemsJSON
	}

	return nil
}

// ValidateChanges checks the invariants every engine relies on before committing.
// A commit needs at least one write; guards alone are rejected with ErrEmptyCommit.
func ValidateChanges(changes []Change) error {
	if CountWrites(changes) == 0 {
		return ErrEmptyCommit
	}

	seen := make(map[Resource]struct{}, len(changes))
	for _, c := range changes {
		if _, ok := seen[c.Resource]; ok {
			return ErrDuplicateResourceInCommit
		}
		seen[c.Resource] = struct{}{}

		if c.IsGuard() {
			continue
		}

		if err := ValidateItemsJSON(c.ItemsJSON); err != nil {
			return err
		}
	}

	return nil
}
