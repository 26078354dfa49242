// Package session implements the interactive loop that runs while the
// debugged program is paused.
//
// # States
//
//	            OnPause
//	AwaitingPause ───────▶ Prompting ◀─┐ Stay commands,
//	      ▲                   │   └────┘ evaluations, errors
//	      │  Proceed command  │
//	      └───────────────────┤
//	                          │ quit, end of input
//	                          ▼
//	                        Quit
//
// An instrumentation adapter calls OnPause each time the program stops. The
// snapshot is appended to the checkpoint history and the operator is prompted
// until a Proceed command runs. Proceed commands call the matching adapter
// primitive (next, step, return, continue) before OnPause returns; the adapter
// then resumes the program and calls OnPause again at the next stop.
//
// Quit is terminal. The adapter is detached and later pauses are ignored.
//
// # Errors
//
// Only context cancellation escapes OnPause. Arity errors, evaluation
// failures, unknown variables and adapter errors on resume are rendered as
// messages and the operator stays at the prompt.
//
// The loop runs on the adapter's goroutine; Session does no locking.
package session
