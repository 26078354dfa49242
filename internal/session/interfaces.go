package session

import (
	"context"

	"github.com/dshills/backstep/internal/checkpoint"
	"github.com/dshills/backstep/internal/command"
	"github.com/dshills/backstep/internal/timeline"
)

// State is the session loop state.
type State int

const (
	// StateAwaitingPause means the program is running.
	StateAwaitingPause State = iota
	// StatePrompting means the operator is entering commands.
	StatePrompting
	// StateQuit means the session has ended.
	StateQuit
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateAwaitingPause:
		return "awaiting-pause"
	case StatePrompting:
		return "prompting"
	case StateQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Outcome tells the adapter what to do when OnPause returns.
type Outcome int

const (
	// OutcomeResume resumes the program with the primitive already requested.
	OutcomeResume Outcome = iota
	// OutcomeQuit stops tracing; the adapter has been detached.
	OutcomeQuit
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeResume:
		return "resume"
	case OutcomeQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Adapter is the instrumentation side of a session. Each resume primitive
// records how the program should continue once OnPause returns.
type Adapter interface {
	RequestNext(ctx context.Context) error
	RequestStep(ctx context.Context) error
	RequestReturn(ctx context.Context) error
	RequestContinue(ctx context.Context) error
	Detach(ctx context.Context) error
}

// PauseHandler receives stops from an adapter. *Session implements it.
type PauseHandler interface {
	OnPause(ctx context.Context, snap checkpoint.Snapshot) (Outcome, error)
	// Terminated reports that the program finished without a quit.
	Terminated(reason string)
}

// EvalContext is what an evaluator may see.
type EvalContext struct {
	// Checkpoint is the checkpoint being viewed.
	Checkpoint *checkpoint.Checkpoint
	// Live is true when Checkpoint is where the program is paused now.
	Live bool
}

// Evaluator evaluates input that did not resolve to a command.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string, ec EvalContext) (string, error)
}

// Renderer displays session output. Formatting is entirely its concern.
type Renderer interface {
	Render(p Payload)
}

// LineReader reads one line of operator input. It returns ErrInterrupted
// when the line is cancelled and io.EOF at end of input.
type LineReader interface {
	ReadLine(ctx context.Context, st Status) (string, error)
}

// EventKind classifies a render payload.
type EventKind int

const (
	// EventLocation shows where the viewed checkpoint paused.
	EventLocation EventKind = iota
	// EventValue shows one pretty-printed value.
	EventValue
	// EventValues lists name/value pairs (args, locals).
	EventValues
	// EventDiff shows diff results.
	EventDiff
	// EventTimeline shows a variable's history.
	EventTimeline
	// EventEvaluation shows an expression result.
	EventEvaluation
	// EventHelp lists commands.
	EventHelp
	// EventMessage is informational text.
	EventMessage
	// EventError is an error reported to the operator.
	EventError
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventLocation:
		return "location"
	case EventValue:
		return "value"
	case EventValues:
		return "values"
	case EventDiff:
		return "diff"
	case EventTimeline:
		return "timeline"
	case EventEvaluation:
		return "evaluation"
	case EventHelp:
		return "help"
	case EventMessage:
		return "message"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is the prompt status line.
type Status struct {
	// EvalCount counts successful evaluations.
	EvalCount int
	// Where is the viewed location, relative to the working directory when possible.
	Where string
	// Position is the 1-based index of the viewed checkpoint.
	Position int
	// Total is the number of checkpoints.
	Total int
	// ViewingPast is true when the viewed checkpoint is not the latest.
	ViewingPast bool
	State       State
}

// NamedValue is one row of an args or locals listing.
type NamedValue struct {
	Name string
	Type string
	Repr string
}

// Payload is one render event.
type Payload struct {
	Kind   EventKind
	Status Status

	// Location of the viewed checkpoint.
	Location checkpoint.Location
	// Latest is set when viewing the past and points at the real position.
	Latest *checkpoint.Location
	// Checkpoint is the id of the viewed checkpoint.
	Checkpoint checkpoint.ID

	Title    string
	Text     string
	Values   []NamedValue
	Diffs    []*timeline.Result
	Timeline []timeline.Entry
	Commands []*command.Command
}
