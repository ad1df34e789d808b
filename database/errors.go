package database

import "errors"

var (
	// ErrNotFound is returned when an update or delete targets a row that
	// is absent or already soft-deleted.
	ErrNotFound = errors.New("entity not found")

	// ErrCreateFailed is returned when the re-read after a successful
	// insert finds nothing. That should never happen in normal operation;
	// it signals a logic error, not a user-facing condition.
	ErrCreateFailed = errors.New("entity creation failed")
)
