package eval

import "errors"

// Evaluation errors.
var (
	// ErrTimeout indicates the expression ran past the evaluation timeout.
	ErrTimeout = errors.New("eval: evaluation timed out")

	// ErrNoCheckpoint indicates there is no checkpoint to evaluate against.
	ErrNoCheckpoint = errors.New("eval: no checkpoint")
)
