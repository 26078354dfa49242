package dap

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by requests made after the client closed.
	ErrClosed = errors.New("dap: client closed")

	// ErrMissingLength is returned for a message without Content-Length.
	ErrMissingLength = errors.New("dap: missing Content-Length header")

	// ErrTooLarge is returned for a message over MaxContentLength.
	ErrTooLarge = errors.New("dap: message too large")
)

// ResponseError is a response with success set to false.
type ResponseError struct {
	Command string
	Message string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("dap: %s failed", e.Command)
	}
	return fmt.Sprintf("dap: %s failed: %s", e.Command, e.Message)
}
