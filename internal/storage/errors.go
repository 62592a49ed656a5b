package storage

import "errors"

// Errors shared by every storage backend. Stores map their native failure
// modes onto these so callers can branch with errors.Is regardless of the
// backend in use.
var (
	// ErrNotFound is returned when a requested record does not exist,
	// including closing a trade that is no longer OPEN.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert violates a uniqueness
	// rule: a reused trade id, a second OPEN trade for a token, or a
	// replayed suggestion id.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
