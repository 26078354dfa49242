package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrNoTrace indicates replay was started without a trace file.
	ErrNoTrace = errors.New("app: no trace file given")

	// ErrUnknownUI indicates an unsupported render.ui setting.
	ErrUnknownUI = errors.New("app: unknown ui")

	// ErrClosed indicates use of a closed application.
	ErrClosed = errors.New("app: closed")
)

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("app: initializing %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
