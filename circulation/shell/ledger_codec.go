package shell

import (
	"context"
	"errors"
	"fmt"
	"slices"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Versions are the collection versions observed by LoadLedger.
type Versions map[core.Collection]ledgerstore.VersionUint

// ResourceOf maps a core collection onto its ledgerstore resource.
func ResourceOf(collection core.Collection) ledgerstore.Resource {
	return ledgerstore.Resource(collection)
}

// LoadLedger reads all six collections and decodes them.
// Any failure is joined with ErrStorage: without a consistent read the state machine cannot run.
func LoadLedger(ctx context.Context, store LedgerReader) (core.Ledger, Versions, error) {
	var ledger core.Ledger

	versions := make(Versions, len(core.AllCollections()))

	for _, collection := range core.AllCollections() {
		snapshot, err := store.Load(ctx, ResourceOf(collection))
		if err != nil {
			return core.Ledger{}, nil, errors.Join(ErrStorage, err)
		}

		if err = decodeInto(&ledger, collection, snapshot.ItemsJSON); err != nil {
			return core.Ledger{}, nil, errors.Join(ErrStorage, ErrDecodingLedgerFailed, fmt.Errorf("%s: %w", collection, err))
		}

		versions[collection] = snapshot.Version
	}

	return ledger, versions, nil
}

func decodeInto(ledger *core.Ledger, collection core.Collection, itemsJSON []byte) error {
	switch collection {
	case core.BooksCollection:
		return jsonAPI.Unmarshal(itemsJSON, &ledger.Books)
	case core.CategoriesCollection:
		return jsonAPI.Unmarshal(itemsJSON, &ledger.Categories)
	case core.MembersCollection:
		return jsonAPI.Unmarshal(itemsJSON, &ledger.Members)
	case core.UsersCollection:
		return jsonAPI.Unmarshal(itemsJSON, &ledger.Users)
	case core.RequestsCollection:
		return jsonAPI.Unmarshal(itemsJSON, &ledger.Requests)
	case core.IssuesCollection:
		return jsonAPI.Unmarshal(itemsJSON, &ledger.Issues)
	default:
		return fmt.Errorf("unknown collection %q", collection)
	}
}

// EncodeCollection serializes one collection of ledger. Nil slices encode as [].
func EncodeCollection(ledger core.Ledger, collection core.Collection) ([]byte, error) {
	var v any

	switch collection {
	case core.BooksCollection:
		v = nonNil(ledger.Books)
	case core.CategoriesCollection:
		v = nonNil(ledger.Categories)
	case core.MembersCollection:
		v = nonNil(ledger.Members)
	case core.UsersCollection:
		v = nonNil(ledger.Users)
	case core.RequestsCollection:
		v = nonNil(ledger.Requests)
	case core.IssuesCollection:
		v = nonNil(ledger.Issues)
	default:
		return nil, fmt.Errorf("%w: unknown collection %q", ErrEncodingLedgerFailed, collection)
	}

	itemsJSON, err := jsonAPI.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrEncodingLedgerFailed, err)
	}

	return itemsJSON, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}

// ChangesFrom turns a successful decision into guarded changes for all six collections.
// Changed collections are replaced; every other collection becomes a version-only guard,
// because the decision was taken against all of them.
func ChangesFrom(decision core.DecisionResult, versions Versions) ([]ledgerstore.Change, error) {
	changes := make([]ledgerstore.Change, 0, len(core.AllCollections()))

	for _, collection := range core.AllCollections() {
		if !slices.Contains(decision.Changed, collection) {
			guard, err := ledgerstore.BuildGuard(ResourceOf(collection), versions[collection])
			if err != nil {
				return nil, errors.Join(ErrEncodingLedgerFailed, err)
			}

			changes = append(changes, guard)

			continue
		}

		itemsJSON, err := EncodeCollection(decision.Ledger, collection)
		if err != nil {
			return nil, err
		}

		change, err := ledgerstore.BuildChange(ResourceOf(collection), versions[collection], itemsJSON)
		if err != nil {
			return nil, errors.Join(ErrEncodingLedgerFailed, err)
		}

		changes = append(changes, change)
	}

	return changes, nil
}

// SeedLedger writes every collection of ledger unconditionally. Used by imports and tests.
func SeedLedger(ctx context.Context, store LedgerStore, ledger core.Ledger) error {
	for _, collection := range core.AllCollections() {
		itemsJSON, err := EncodeCollection(ledger, collection)
		if err != nil {
			return err
		}

		if err = store.Save(ctx, ResourceOf(collection), itemsJSON); err != nil {
			return errors.Join(ErrStorage, err)
		}
	}

	return nil
}
