package config

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound indicates an explicitly named config file doesn't exist.
	ErrFileNotFound = errors.New("config: file not found")

	// ErrUnsupportedFormat indicates a config file extension with no decoder.
	ErrUnsupportedFormat = errors.New("config: unsupported file format")

	// ErrWatcherClosed indicates use of a closed watcher.
	ErrWatcherClosed = errors.New("config: watcher closed")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("config: parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("config: parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("config: parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError describes a setting with an unacceptable value.
type ValidationError struct {
	// Field is the dotted setting name, e.g. "render.color".
	Field string
	// Value is the rejected value.
	Value any
	// Message describes what is accepted.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: invalid %s %v: %s", e.Field, e.Value, e.Message)
}
