package errors

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrHandleTaken            = errors.New("handle already exists")
	ErrAuthenticationRequired = errors.New("wrong handle or password")
	ErrForbidden              = errors.New("account is banned")
	ErrNotFound               = errors.New("account not found")
)
