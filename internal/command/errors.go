package command

import (
	"errors"
	"fmt"
)

// Command errors.
var (
	// ErrUnrecognized indicates the first input field is not a registered alias.
	// It is a routing signal: the input should be evaluated as an expression.
	ErrUnrecognized = errors.New("command: unrecognized command")

	// ErrEmptyInput indicates the input contained no fields.
	ErrEmptyInput = errors.New("command: empty input")

	// ErrNoAliases indicates a command was registered without any alias.
	ErrNoAliases = errors.New("command: command has no aliases")

	// ErrKindRegistered indicates a second definition of an already registered kind.
	ErrKindRegistered = errors.New("command: kind already registered")

	// ErrDuplicateAlias is matched by every DuplicateAliasError.
	ErrDuplicateAlias = errors.New("command: duplicate alias")

	// ErrArity is matched by every ArityError.
	ErrArity = errors.New("command: wrong number of arguments")
)

// DuplicateAliasError reports an alias already bound to a different command.
type DuplicateAliasError struct {
	Alias    string
	Existing Kind
	Incoming Kind
}

// Error implements error.
func (e *DuplicateAliasError) Error() string {
	return fmt.Sprintf("command: alias %q already bound to %s, cannot bind to %s",
		e.Alias, e.Existing, e.Incoming)
}

// Is reports whether target is ErrDuplicateAlias.
func (e *DuplicateAliasError) Is(target error) bool {
	return target == ErrDuplicateAlias
}

// ArityError reports a mismatch between a command's arity and the
// arguments supplied.
type ArityError struct {
	Command  string
	Expected int
	Actual   int
}

// Error implements error.
func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: expected %d %s, got %d",
		e.Command, e.Expected, plural(e.Expected, "argument"), e.Actual)
}

// Is reports whether target is ErrArity.
func (e *ArityError) Is(target error) bool {
	return target == ErrArity
}

// SyntaxError reports input for a known alias that could not be tokenized,
// for example an unterminated quote.
type SyntaxError struct {
	Input string
	Err   error
}

// Error implements error.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("command: cannot parse %q: %v", e.Input, e.Err)
}

// Unwrap returns the tokenizer error.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
