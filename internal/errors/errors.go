package errors

import (
	"errors"
)

// Sentinels shared across packages. Storage lookups use db.ErrNotFound
// instead; these cover input validation.
var (
	ErrInvalidInput = errors.New("invalid input")
)
