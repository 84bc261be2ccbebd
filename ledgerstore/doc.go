// Package ledgerstore provides the core abstractions for storing the circulation ledger:
// a small, fixed set of whole-collection resources (books, categories, members, issues, users, requests)
// that are loaded and replaced as JSON arrays.
//
// Every collection carries a version that is incremented on each write. Engines implement
// three operations:
//   - Load: read one collection and its version
//   - Save: replace one collection unconditionally (last write wins)
//   - Commit: replace several collections atomically, but only if all expected versions still match
//
// Commit is what makes read-modify-write cycles over several collections safe under concurrent writers.
// A mismatch on any collection rejects the whole commit with ErrConcurrencyConflict.
//
// Common usage pattern:
//
//	books, err := store.Load(ctx, ledgerstore.Books)
//	if err != nil {
//		// handle error
//	}
//
//	change, err := ledgerstore.BuildChange(ledgerstore.Books, books.Version, updatedBooksJSON)
//	if err != nil {
//		// handle error
//	}
//
//	err = store.Commit(ctx, ledgerstore.BuildCommitMeta("ApproveRequest"), change)
package ledgerstore
