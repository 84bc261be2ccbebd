// Package registeruser creates a login account. The password is hashed before the ledger is locked.
package registeruser
