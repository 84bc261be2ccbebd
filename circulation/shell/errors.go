package shell

import "errors"

var (
	// ErrStorage marks a failed load or commit. It is joined with the underlying error.
	ErrStorage = errors.New("storage error")

	// ErrNilLedgerStore is returned when a handler is built without a store.
	ErrNilLedgerStore = errors.New("ledger store must not be nil")

	// ErrLockNotAcquired is returned when a Locker gives up before ctx is done.
	ErrLockNotAcquired = errors.New("ledger lock not acquired")

	// ErrDecodingLedgerFailed is joined with ErrStorage when a stored collection is not valid for its record type.
	ErrDecodingLedgerFailed = errors.New("decoding ledger failed")

	// ErrEncodingLedgerFailed is returned when a changed collection cannot be serialized.
	ErrEncodingLedgerFailed = errors.New("encoding ledger failed")
)

// IsStorageError reports whether err came from the storage collaborator.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}
