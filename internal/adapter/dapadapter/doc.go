// Package dapadapter is an instrumentation adapter backed by a Debug
// Adapter Protocol server such as "dlv dap" or debugpy.
//
// Run performs the DAP handshake:
//
//	initialize ─▶ launch|attach ─▶ (initialized) ─▶ setBreakpoints ─▶ configurationDone
//
// and then turns every stopped event into a checkpoint.Snapshot. The top
// frame's scopes are copied out, with structured variables expanded to a
// bounded depth, before the pause handler sees them. Resume primitives map
// to next, stepIn, stepOut and continue; detach sends disconnect.
package dapadapter
