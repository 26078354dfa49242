// Package command defines the built-in debugger commands and the registry
// that resolves operator input into them.
//
// Commands are plain data. Each one carries a Kind from a closed set, the
// aliases it answers to, a fixed arity and an Effect. The session loop
// switches on Kind to execute a command; nothing here runs behavior.
//
// # Resolution
//
// Input is split with shell-style quoting, so an argument containing spaces
// can be quoted:
//
//	pp "user.name"
//	history 'total count'
//
// The first field is looked up as an exact, case-sensitive alias. An unknown
// alias yields ErrUnrecognized, which callers treat as a request to evaluate
// the whole line as an expression rather than as a failure.
//
// Arity is checked separately with ValidateArity so a resolved command with
// the wrong number of arguments can be reported without being executed.
package command
