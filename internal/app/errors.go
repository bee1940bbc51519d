package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotStarted is returned when an operation runs before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrNoStore is returned by Start when no directory store was wired in.
	ErrNoStore = errors.New("no store configured")
	// ErrUnknownEntry marks an operation against an entry id that is not in
	// the current catalog.
	ErrUnknownEntry = errors.New("unknown entry")
	// ErrIncomplete rejects a submit while required criteria are still unset.
	ErrIncomplete = errors.New("judgment incomplete")
	// ErrUnknownCategory rejects a vote for a category outside the
	// configured set.
	ErrUnknownCategory = errors.New("unknown vote category")
)
