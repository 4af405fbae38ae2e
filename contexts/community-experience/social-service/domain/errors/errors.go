package errors

import "errors"

var (
	ErrInvalidRequest         = errors.New("social: invalid request")
	ErrIdempotencyKeyRequired = errors.New("social: idempotency key required")
	ErrIdempotencyConflict    = errors.New("social: idempotency key reused with different request")
	ErrPostNotFound           = errors.New("social: post not found")
)
