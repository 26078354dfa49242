package timeline

import (
	"errors"
	"fmt"

	"github.com/dshills/backstep/internal/checkpoint"
)

// Timeline errors.
var (
	// ErrIncomparableFrames is matched by every IncomparableFramesError.
	ErrIncomparableFrames = errors.New("timeline: checkpoints belong to different calls")

	// ErrNotCaptured indicates the variable is absent at every checkpoint involved.
	ErrNotCaptured = errors.New("timeline: variable not captured")

	// ErrNoEarlierValue indicates no earlier checkpoint in the call captured the variable.
	ErrNoEarlierValue = errors.New("timeline: no earlier value in this call")
)

// IncomparableFramesError reports a diff requested across two calls.
type IncomparableFramesError struct {
	Name string
	From checkpoint.CallID
	To   checkpoint.CallID
}

// Error implements error.
func (e *IncomparableFramesError) Error() string {
	return fmt.Sprintf("timeline: cannot diff %q across calls %s and %s", e.Name, e.From, e.To)
}

// Is reports whether target is ErrIncomparableFrames.
func (e *IncomparableFramesError) Is(target error) bool {
	return target == ErrIncomparableFrames
}
