package repository

import "errors"

// Repository errors
var (
	// ErrNotFound indicates the requested key was not found.
	ErrNotFound = errors.New("not found")

	// ErrBackendUnavailable indicates the backend could not be reached.
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)
