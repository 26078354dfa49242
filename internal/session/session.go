package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/backstep/internal/checkpoint"
	"github.com/dshills/backstep/internal/command"
	"github.com/dshills/backstep/internal/logging"
	"github.com/dshills/backstep/internal/metrics"
)

// Config holds the collaborators of a session.
type Config struct {
	// Registry resolves input. Required.
	Registry *command.Registry
	// Adapter resumes and detaches the program. Required.
	Adapter Adapter
	// Renderer displays output. Required.
	Renderer Renderer
	// Input reads operator lines. Required.
	Input LineReader

	// Evaluator handles input that is not a command. Optional.
	Evaluator Evaluator
	// History stores checkpoints. A new one is created when nil.
	History *checkpoint.History
	// Logger defaults to a discarding logger.
	Logger *logging.Logger
	// Metrics is optional.
	Metrics *metrics.Collector
	// BaseDir shortens file paths in the prompt status.
	BaseDir string
	// Watch lists variables to watch from the start.
	Watch []string
}

// Session is the interactive loop around one debugged program.
type Session struct {
	id       string
	registry *command.Registry
	history  *checkpoint.History
	adapter  Adapter
	eval     Evaluator
	render   Renderer
	input    LineReader
	log      *logging.Logger
	metrics  *metrics.Collector
	base     string

	state     State
	prev      *command.Command
	evalCount int
	watches   []string
}

// New creates a session in the AwaitingPause state.
func New(cfg Config) (*Session, error) {
	switch {
	case cfg.Registry == nil:
		return nil, fmt.Errorf("%w: registry", ErrMissingCollaborator)
	case cfg.Adapter == nil:
		return nil, fmt.Errorf("%w: adapter", ErrMissingCollaborator)
	case cfg.Renderer == nil:
		return nil, fmt.Errorf("%w: renderer", ErrMissingCollaborator)
	case cfg.Input == nil:
		return nil, fmt.Errorf("%w: input", ErrMissingCollaborator)
	}

	history := cfg.History
	if history == nil {
		history = checkpoint.NewHistory()
	}
	id := uuid.NewString()
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Session{
		id:       id,
		registry: cfg.Registry,
		history:  history,
		adapter:  cfg.Adapter,
		eval:     cfg.Evaluator,
		render:   cfg.Renderer,
		input:    cfg.Input,
		log:      logger.WithComponent("session").WithField("session", id),
		metrics:  cfg.Metrics,
		base:     cfg.BaseDir,
		state:    StateAwaitingPause,
	}
	for _, name := range cfg.Watch {
		s.toggleWatch(name)
	}
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns the current loop state.
func (s *Session) State() State { return s.state }

// History returns the checkpoint history.
func (s *Session) History() *checkpoint.History { return s.history }

// EvalCount returns the number of successful evaluations.
func (s *Session) EvalCount() int { return s.evalCount }

// Watches returns the watched variable names in the order they were added.
func (s *Session) Watches() []string {
	out := make([]string, len(s.watches))
	copy(out, s.watches)
	return out
}

// Status returns the prompt status.
func (s *Session) Status() Status {
	st := Status{
		EvalCount:   s.evalCount,
		Total:       s.history.Len(),
		ViewingPast: s.history.ViewingPast(),
		State:       s.state,
	}
	if cp := s.history.Current(); cp != nil {
		st.Position = s.history.Cursor() + 1
		st.Where = cp.Location().Short(s.base)
	}
	return st
}

// OnPause records a stop and prompts until a Proceed command runs. It
// returns OutcomeQuit once the session has ended; later calls return
// OutcomeQuit without prompting.
//
// A cancelled context detaches the adapter, ends the session and returns
// the context error.
func (s *Session) OnPause(ctx context.Context, snap checkpoint.Snapshot) (Outcome, error) {
	if s.state == StateQuit {
		return OutcomeQuit, nil
	}

	cp := s.history.Append(snap)
	s.metrics.Pause()
	s.log.WithFields(map[string]any{
		"checkpoint": cp.ID(),
		"call":       cp.CallID(),
	}).Debug("paused at %s (%s)", cp.Location(), cp.Reason())

	s.state = StatePrompting
	if s.prev == nil || s.prev.Effect == command.Proceed {
		s.renderLocation()
	}
	return s.prompt(ctx)
}

// Terminated renders the end of the program and ends the session.
func (s *Session) Terminated(reason string) {
	if s.state == StateQuit {
		return
	}
	s.state = StateQuit
	s.log.Info("program terminated: %s", reason)
	s.emit(Payload{Kind: EventMessage, Text: "program finished: " + reason})
}

func (s *Session) prompt(ctx context.Context) (Outcome, error) {
	for {
		line, err := s.input.ReadLine(ctx, s.Status())
		switch {
		case err == nil:
		case errors.Is(err, ErrInterrupted):
			s.metrics.InputEvent(metrics.InputInterrupt)
			continue
		case ctx.Err() != nil:
			s.log.Debug("context done while prompting: %v", ctx.Err())
			s.terminate(context.WithoutCancel(ctx))
			return OutcomeQuit, ctx.Err()
		case errors.Is(err, io.EOF):
			s.metrics.InputEvent(metrics.InputEOF)
			s.log.Debug("end of input, quitting")
			s.terminate(ctx)
			return OutcomeQuit, nil
		default:
			s.log.Error("reading input: %v", err)
			s.terminate(ctx)
			return OutcomeQuit, nil
		}

		if strings.TrimSpace(line) == "" {
			s.metrics.InputEvent(metrics.InputEmpty)
			continue
		}

		cmd, args, err := s.registry.Resolve(line)
		switch {
		case errors.Is(err, command.ErrUnrecognized):
			s.metrics.InputEvent(metrics.InputUnrecognized)
			s.evaluate(ctx, line)
			continue
		case errors.Is(err, command.ErrEmptyInput):
			s.metrics.InputEvent(metrics.InputEmpty)
			continue
		case err != nil:
			s.metrics.InputEvent(metrics.InputSyntax)
			s.emitError(err)
			continue
		}

		if err := command.ValidateArity(cmd, args); err != nil {
			s.metrics.InputEvent(metrics.InputArity)
			s.log.Debug("arity: %v", err)
			s.emitError(err)
			continue
		}

		if s.dispatch(ctx, cmd, args) {
			if cmd.Terminal {
				return OutcomeQuit, nil
			}
			s.state = StateAwaitingPause
			return OutcomeResume, nil
		}
	}
}

// dispatch runs cmd and reports whether control returns to the adapter.
func (s *Session) dispatch(ctx context.Context, cmd *command.Command, args []string) bool {
	start := time.Now()
	err := s.execute(ctx, cmd, args)
	s.metrics.Command(cmd.Name(), cmd.Effect.String(), time.Since(start))

	if err != nil {
		s.log.Debug("%s failed: %v", cmd.Name(), err)
		s.emitError(err)
		if cmd.Effect == command.Proceed && !cmd.Terminal {
			// the program did not resume
			return false
		}
	}

	s.prev = cmd
	return cmd.Effect == command.Proceed
}

func (s *Session) evaluate(ctx context.Context, expr string) {
	if s.eval == nil {
		s.metrics.Evaluation(metrics.EvalError)
		s.emitError(ErrNoEvaluator)
		return
	}

	cp := s.history.Current()
	result, err := s.safeEvaluate(ctx, expr, EvalContext{
		Checkpoint: cp,
		Live:       cp != nil && cp == s.history.Latest(),
	})
	if err != nil {
		s.metrics.Evaluation(metrics.EvalError)
		s.log.Debug("evaluate %q: %v", expr, err)
		s.emitError(err)
		return
	}

	s.metrics.Evaluation(metrics.EvalOK)
	s.evalCount++
	s.emit(Payload{Kind: EventEvaluation, Title: expr, Text: result})
}

func (s *Session) safeEvaluate(ctx context.Context, expr string, ec EvalContext) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluator panic: %v", r)
		}
	}()
	return s.eval.Evaluate(ctx, expr, ec)
}

// terminate detaches the adapter and enters the Quit state.
func (s *Session) terminate(ctx context.Context) {
	if s.state == StateQuit {
		return
	}
	if err := s.adapter.Detach(ctx); err != nil {
		s.log.Warn("detach: %v", err)
	}
	s.state = StateQuit
}

func (s *Session) emit(p Payload) {
	p.Status = s.Status()
	if cp := s.history.Current(); cp != nil {
		if p.Location.IsZero() {
			p.Location = cp.Location()
		}
		if p.Checkpoint == 0 {
			p.Checkpoint = cp.ID()
		}
	}
	s.render.Render(p)
}

func (s *Session) emitError(err error) {
	s.emit(Payload{Kind: EventError, Text: err.Error()})
}
