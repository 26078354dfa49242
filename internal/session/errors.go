package session

import "errors"

// Session errors.
var (
	// ErrInterrupted is returned by a LineReader when the operator cancels the
	// line being typed. The session prompts again.
	ErrInterrupted = errors.New("session: input interrupted")

	// ErrDetached is returned by adapters asked to resume after Detach.
	ErrDetached = errors.New("session: adapter detached")

	// ErrNoEvaluator indicates an expression was entered with no evaluator configured.
	ErrNoEvaluator = errors.New("session: expression evaluation unavailable")

	// ErrUnknownVariable indicates a name not captured at the viewed checkpoint.
	ErrUnknownVariable = errors.New("session: no such variable")

	// ErrMissingCollaborator indicates New was called without a required collaborator.
	ErrMissingCollaborator = errors.New("session: missing collaborator")
)
