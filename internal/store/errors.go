package store

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when the store itself is unreachable.
	// The cycle runner aborts the whole cycle on it.
	ErrUnavailable = errors.New("store unavailable")
)
