// Package memengine provides an in-memory ledgerstore engine.
//
// It keeps every collection as an immutable JSON document with a version and guards
// all access with a single read-write mutex, so Commit is trivially atomic.
// It is used by tests, by the CLI in "memory" mode, and as the backing store of the HTTP shim in demos.
package memengine
