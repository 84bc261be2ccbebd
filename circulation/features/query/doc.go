// Package query groups the read-only projections over the circulation ledger.
// Query handlers load with eventual consistency and never write.
package query
