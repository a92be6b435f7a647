package model

import "errors"

var (
	// ErrNotFound is returned when a key, hypothesis, event or signal is not configured.
	ErrNotFound = errors.New("not found")
	// ErrInvalid is returned for out-of-range input such as a probability outside [0,1].
	ErrInvalid = errors.New("invalid")
)
