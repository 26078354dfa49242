// Package timeline derives how a variable changed across the checkpoints of
// one call.
//
// Nothing is stored here. HistoryOf walks a checkpoint sequence and keeps the
// entries that share a call identity and captured the variable; Diff compares
// the pretty representation of a variable at two checkpoints line by line.
//
// Diffs only make sense inside one invocation. Comparing checkpoints from
// different calls yields an *IncomparableFramesError and never a partial
// result.
//
// Variable names may carry a path into a structured value, so "user.name"
// follows the name field of the captured user value.
package timeline
