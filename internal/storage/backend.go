package storage

import "fmt"

// Backend enumerates the storage engines a pipeline target can run on. The
// engine is chosen once at configuration time and threaded through as a
// value; no code path inspects a connection to infer it.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

// String returns the string representation of Backend.
func (b Backend) String() string {
	return string(b)
}

// IsValid checks if the backend is a valid value.
func (b Backend) IsValid() bool {
	return b == BackendPostgres || b == BackendMemory
}

// ParseBackend converts a flag/env value into a Backend.
func ParseBackend(s string) (Backend, error) {
	b := Backend(s)
	if !b.IsValid() {
		return "", fmt.Errorf("%w: unknown backend %q", ErrInvalidInput, s)
	}
	return b, nil
}
