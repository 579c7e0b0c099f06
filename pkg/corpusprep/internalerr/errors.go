package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrMissingColumn = errors.New("required column missing")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNotFound      = errors.New("not found")
)
