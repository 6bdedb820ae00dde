package store

import "errors"

// Sentinel kinds for store errors.
var (
	ErrPersistence = errors.New("persistence failure")
)
