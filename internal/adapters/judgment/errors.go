package judgment

import "errors"

// Sentinel kinds for judgment write errors.
var (
	// ErrPersistence marks a write that reached the store and failed there.
	ErrPersistence = errors.New("judgment persistence failed")
	// ErrReset marks a reset sweep that left records behind.
	ErrReset = errors.New("reset incomplete")
)
