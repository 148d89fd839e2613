package auctionerrors

import "errors"

// Store-level errors
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Business logic errors
var (
	ErrValidation = errors.New("validation failed")
	ErrBidTooLow  = errors.New("bid amount too low")
)

// Push-channel errors. Delivery is best-effort: this error is logged by the
// broadcaster and never propagated to the operation that triggered it.
var (
	ErrChannelUnavailable = errors.New("channel unavailable")
)
