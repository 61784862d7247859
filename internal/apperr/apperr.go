// Package apperr holds the error taxonomy shared by the order and payment
// services. Handlers rely on errors.Is against these sentinels to pick the
// HTTP status, so services must wrap them, never shadow them.
package apperr

import "errors"

var (
	// ErrNotFound covers both truly absent records and records that belong
	// to another tenant. The two cases must stay indistinguishable.
	ErrNotFound = errors.New("not found")

	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidState      = errors.New("invalid state")
	ErrAmountMismatch    = errors.New("amount mismatch")
)
