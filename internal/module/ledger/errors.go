package ledger

import "errors"

var (
	// ErrUserNotFound is returned when no account exists for the email.
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientCredit is returned when a decrement would take the
	// balance below zero.
	ErrInsufficientCredit = errors.New("insufficient credit")

	// ErrUnknownFeature is returned for a feature with no credit column.
	ErrUnknownFeature = errors.New("unknown feature")
)
