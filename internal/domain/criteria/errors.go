package criteria

import "errors"

// Sentinel kinds for criteria configuration errors.
var (
	ErrEmptyList        = errors.New("empty criteria list")
	ErrInvalidCriterion = errors.New("invalid criterion")
	ErrUnknownCriterion = errors.New("unknown criterion")
)
