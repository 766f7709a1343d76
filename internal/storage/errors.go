package storage

import "errors"

// Storage errors shared by every backend.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPipelineBusy is returned when the rebuild lock for a target is
	// already held. Callers must not block waiting for it.
	ErrPipelineBusy = errors.New("pipeline rebuild already in progress")
)
