// Package shell is the imperative shell around the circulation core.
//
// It loads the whole Ledger from a ledgerstore in one critical section, runs a pure Decide function,
// and commits the changed collections with their expected versions. Conflicts are retried with
// exponential backoff. The package also holds the pieces every handler shares: lockers,
// password hashing, boundary validation and the observability helpers used by the observable wrappers.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
