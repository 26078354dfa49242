// Package app wires backstep's components together and runs sessions.
//
// An Application owns everything that outlives a single run: the logger,
// the metrics collector, the command registry, the source cache and the
// terminal front end. Replay and Debug each build an instrumentation
// adapter and a session on top of those and run them to completion.
//
//	         ┌──────────────┐
//	         │   session    │◄──── input (plain or screen)
//	         └──────┬───────┘────► render (text or screen)
//	                │ OnPause / Request*
//	     ┌──────────┴──────────┐
//	     │ replay      dapadapter ──► debug adapter (dlv dap, ...)
//	     └─────────────────────┘
//
// Alongside the adapter an errgroup runs the optional /metrics server and
// the config watcher. Both stop when the session ends.
package app
