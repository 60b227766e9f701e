package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrTurnInFlight  = errors.New("a turn is already in flight")
	ErrUnavailable   = errors.New("capability unavailable")
	ErrEmptyResponse = errors.New("empty response body")
)
