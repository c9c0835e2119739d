package quote

import "errors"

var (
	// ErrQuoteNotFound is returned when no quote exists for the key.
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrStoreFailure marks quote-store failures that are not a
	// business outcome.
	ErrStoreFailure = errors.New("quote store failure")
)
