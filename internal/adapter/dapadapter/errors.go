package dapadapter

import "errors"

var (
	// ErrNoFrames is returned when a stopped thread reports no stack.
	ErrNoFrames = errors.New("dapadapter: stopped thread has no frames")

	// ErrNoTarget is returned when neither a command nor an address is set.
	ErrNoTarget = errors.New("dapadapter: no adapter command or address")

	// ErrAdapterExited is returned when the connection ends during setup.
	ErrAdapterExited = errors.New("dapadapter: debug adapter exited during setup")
)
