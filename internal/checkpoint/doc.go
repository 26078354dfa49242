// Package checkpoint records the pause points of a debugging session.
//
// A Checkpoint is an immutable snapshot of where a program stopped and what
// its local variables held at that moment. Checkpoints are copied out of the
// running program by an instrumentation adapter before they reach this
// package; nothing here refers back to a live frame.
//
// # History
//
// History is an append-only sequence of checkpoints with a cursor:
//
//	 oldest                               latest
//	┌──────┬──────┬──────┬──────┬──────┐
//	│  C1  │  C2  │  C3  │  C4  │  C5  │
//	└──────┴──────┴──▲───┴──────┴──▲───┘
//	                 │             │
//	              cursor      real execution
//
// Latest always reports where the program actually is. The cursor marks the
// checkpoint the operator is looking at; Rewind and Forward move it and clamp
// silently at either end. Appending a checkpoint moves the cursor to it.
//
// History is owned by a single session goroutine and does no locking.
// Checkpoints themselves may be shared freely once appended.
package checkpoint
