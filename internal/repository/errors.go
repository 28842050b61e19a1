package repository

import "errors"

// Common repository errors
var (
	ErrNotFound = errors.New("record not found")

	// ErrStaleStatus means a conditional status update matched no row: the
	// donation is gone or its status no longer satisfies the precondition.
	// Callers re-read the row to decide which of the two it was.
	ErrStaleStatus = errors.New("status precondition not met")
)
