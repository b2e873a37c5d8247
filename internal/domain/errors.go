package domain

import "errors"

var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidFilter indicates a malformed caller-supplied scan parameter.
	// Invalid input is rejected, never silently defaulted.
	ErrInvalidFilter = errors.New("invalid filter")
)
