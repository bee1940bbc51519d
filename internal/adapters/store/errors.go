package store

import "errors"

// Sentinel kinds for directory store errors.
var (
	ErrClosed       = errors.New("store closed")
	ErrInvalidEntry = errors.New("invalid entry")
)
