package replay

import "errors"

var (
	// ErrEmptyTrace is returned for a trace without events.
	ErrEmptyTrace = errors.New("replay: trace has no events")

	// ErrInvalidEvent is returned for an event missing its location.
	ErrInvalidEvent = errors.New("replay: invalid event")
)
