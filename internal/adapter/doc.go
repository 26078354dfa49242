// Package adapter holds what instrumentation adapters share.
//
// An adapter pauses a program, copies the paused frame into a
// checkpoint.Snapshot and hands it to a session.PauseHandler. While the
// handler runs, the session asks the adapter how to resume through one of
// its primitives:
//
//	primitive   resumes until
//	---------   ----------------------------------------
//	next        the next line in the same or an outer frame
//	step        the next line anywhere, entering calls
//	return      the current frame returns
//	continue    the next breakpoint
//	detach      never; tracing stops
//
// Tracker turns call stacks into call identities so checkpoints taken in the
// same function invocation can be compared.
package adapter
