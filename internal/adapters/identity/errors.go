package identity

import "errors"

// Sentinel kinds for identity errors.
var (
	ErrNoSubject = errors.New("no subject id available")
)
