// Package replay is an instrumentation adapter that replays a recorded trace.
//
// A trace is a YAML (or JSON) document listing every point where the program
// could pause:
//
//	program: ./cmd/demo
//	exit: exit status 0
//	events:
//	  - file: main.go
//	    line: 12
//	    function: main.main
//	    stack: [main.main]
//	    locals: {n: 3}
//	  - file: main.go
//	    line: 20
//	    function: main.sum
//	    stack: [main.main, main.sum]
//	    args: [xs]
//	    locals: {xs: [1, 2, 3], total: 0}
//	    breakpoint: true
//
// The first event pauses. Each later pause is chosen by the primitive the
// session requested, using the stack depth of the events to tell calls from
// returns. Running past the last event ends the program normally.
package replay
