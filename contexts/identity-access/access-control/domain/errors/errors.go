package errors

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrInvalidChannel         = errors.New("invalid channel name")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyConflict    = errors.New("idempotency key reused with different request")

	// Denial taxonomy. Each kind must stay distinguishable for audit logs.
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("forbidden")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrNotFound               = errors.New("target not found")

	ErrGrantNotFound = errors.New("subscription grant not found or expired")
)
