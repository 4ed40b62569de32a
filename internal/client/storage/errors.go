package storage

import "errors"

// Common client storage errors
var (
	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrEmptyKey indicates an attempt to use an empty key
	ErrEmptyKey = errors.New("key must not be empty")
)
