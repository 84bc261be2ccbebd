// Package ledgeraudit recomputes the copy accounting of every book and reports records
// that point at deleted books or members.
package ledgeraudit
