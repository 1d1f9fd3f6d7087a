package repository

import "errors"

// Repository errors
var (
	ErrEntryNotFound          = errors.New("activity entry not found")
	ErrInvalidPage            = errors.New("invalid page: limit must be positive and offset non-negative")
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
)
