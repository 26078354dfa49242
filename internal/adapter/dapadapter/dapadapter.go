package dapadapter

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/dshills/backstep/internal/adapter"
	"github.com/dshills/backstep/internal/checkpoint"
	"github.com/dshills/backstep/internal/dap"
	"github.com/dshills/backstep/internal/logging"
	"github.com/dshills/backstep/internal/session"
)

// maxFrames bounds the stack fetched per stop.
const maxFrames = 128

// Adapter drives a DAP client for a session.
type Adapter struct {
	client  *dap.Client
	cfg     Config
	tracker *adapter.Tracker
	log     *logging.Logger

	mu       sync.Mutex
	thread   int
	frame    int
	live     bool
	exitCode *int
	detached bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Adapter) {
		a.log = l.WithComponent("dap")
	}
}

// New creates an adapter over a connected client.
func New(client *dap.Client, cfg Config, opts ...Option) *Adapter {
	def := DefaultConfig()
	if cfg.Request == "" {
		cfg.Request = def.Request
	}
	if cfg.Depth < 0 {
		cfg.Depth = 0
	}
	if cfg.MaxChildren <= 0 {
		cfg.MaxChildren = def.MaxChildren
	}

	a := &Adapter{
		client:  client,
		cfg:     cfg,
		tracker: adapter.NewTracker(),
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Close closes the connection to the debug adapter.
func (a *Adapter) Close() error {
	return a.client.Close()
}

func (a *Adapter) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

// Run configures the debuggee, then feeds every stop to h until the handler
// quits or the program terminates.
func (a *Adapter) Run(ctx context.Context, h session.PauseHandler) error {
	if err := a.configure(ctx); err != nil {
		return err
	}
	return a.loop(ctx, h)
}

func (a *Adapter) configure(ctx context.Context) error {
	rctx, cancel := a.requestContext(ctx)
	caps, err := a.client.Initialize(rctx, dap.InitializeArguments{
		ClientID:             "backstep",
		ClientName:           "backstep",
		AdapterID:            "backstep",
		LinesStartAt1:        true,
		ColumnsStartAt1:      true,
		PathFormat:           "path",
		SupportsVariableType: true,
	})
	cancel()
	if err != nil {
		return err
	}

	// Some adapters answer launch only after configurationDone, so it runs
	// alongside the rest of the handshake.
	started := make(chan error, 1)
	go func() {
		switch a.cfg.Request {
		case "attach":
			started <- a.client.Attach(ctx, a.cfg.Arguments)
		default:
			started <- a.client.Launch(ctx, a.cfg.Arguments)
		}
	}()

	launched := false
	for initialized := false; !initialized; {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-started:
			if err != nil {
				return err
			}
			launched = true
		case ev, ok := <-a.client.Events():
			if !ok {
				return ErrAdapterExited
			}
			switch ev.Event {
			case "initialized":
				initialized = true
			case "terminated":
				return ErrAdapterExited
			default:
				a.note(ev)
			}
		}
	}

	if err := a.setBreakpoints(ctx); err != nil {
		return err
	}
	if caps.SupportsConfigurationDoneRequest {
		rctx, cancel := a.requestContext(ctx)
		err := a.client.ConfigurationDone(rctx)
		cancel()
		if err != nil {
			return err
		}
	}

	if !launched {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-started:
			if err != nil {
				return err
			}
		}
	}
	a.log.Info("debuggee started (%s)", a.cfg.Request)
	return nil
}

func (a *Adapter) setBreakpoints(ctx context.Context) error {
	byFile := make(map[string][]dap.SourceBreakpoint)
	for _, bp := range a.cfg.Breakpoints {
		byFile[bp.File] = append(byFile[bp.File], dap.SourceBreakpoint{Line: bp.Line, Condition: bp.Condition})
	}
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, file := range files {
		rctx, cancel := a.requestContext(ctx)
		placed, err := a.client.SetBreakpoints(rctx, dap.SetBreakpointsArguments{
			Source:      dap.Source{Path: file},
			Breakpoints: byFile[file],
		})
		cancel()
		if err != nil {
			return fmt.Errorf("dapadapter: breakpoints in %s: %w", file, err)
		}
		for _, bp := range placed {
			if !bp.Verified {
				a.log.Warn("breakpoint %s:%d not verified: %s", file, bp.Line, bp.Message)
			}
		}
	}
	return nil
}

func (a *Adapter) loop(ctx context.Context, h session.PauseHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-a.client.Events():
			if !ok {
				if a.isDetached() {
					return nil
				}
				h.Terminated("debug adapter disconnected")
				return nil
			}

			switch ev.Event {
			case "stopped":
				var body dap.StoppedEventBody
				if err := ev.Decode(&body); err != nil {
					return fmt.Errorf("dapadapter: stopped event: %w", err)
				}
				snap, err := a.capture(ctx, body)
				if err != nil {
					return err
				}
				out, err := h.OnPause(ctx, snap)
				a.setIdle()
				if err != nil {
					return err
				}
				if out == session.OutcomeQuit {
					return nil
				}
			case "terminated":
				if !a.isDetached() {
					h.Terminated(a.exitReason())
				}
				return nil
			default:
				a.note(ev)
			}
		}
	}
}

// note handles events that need no reply.
func (a *Adapter) note(ev dap.Event) {
	switch ev.Event {
	case "exited":
		var body dap.ExitedEventBody
		if err := ev.Decode(&body); err == nil {
			a.mu.Lock()
			a.exitCode = &body.ExitCode
			a.mu.Unlock()
		}
	case "output":
		var body dap.OutputEventBody
		if err := ev.Decode(&body); err == nil {
			a.log.Debug("%s: %s", body.Category, strings.TrimRight(body.Output, "\n"))
		}
	default:
		a.log.Debug("event %s", ev.Event)
	}
}

func (a *Adapter) exitReason() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.exitCode != nil {
		return fmt.Sprintf("exit status %d", *a.exitCode)
	}
	return "program terminated"
}

func (a *Adapter) isDetached() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.detached
}

func (a *Adapter) setLive(thread, frame int) {
	a.mu.Lock()
	a.thread, a.frame, a.live = thread, frame, true
	a.mu.Unlock()
}

func (a *Adapter) setIdle() {
	a.mu.Lock()
	a.live = false
	a.mu.Unlock()
}

// liveFrame returns the paused top frame, if the program is paused.
func (a *Adapter) liveFrame() (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame, a.live
}

// capture copies the stopped thread's top frame into a snapshot.
func (a *Adapter) capture(ctx context.Context, stop dap.StoppedEventBody) (checkpoint.Snapshot, error) {
	thread := stop.ThreadID
	if thread == 0 {
		a.mu.Lock()
		thread = a.thread
		a.mu.Unlock()
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()

	frames, err := a.client.StackTrace(rctx, dap.StackTraceArguments{ThreadID: thread, Levels: maxFrames})
	if err != nil {
		return checkpoint.Snapshot{}, fmt.Errorf("dapadapter: stack trace: %w", err)
	}
	if len(frames) == 0 {
		return checkpoint.Snapshot{}, ErrNoFrames
	}
	top := frames[0]

	stack := make([]string, len(frames))
	for i, f := range frames {
		stack[len(frames)-1-i] = f.Name
	}

	scopes, err := a.client.Scopes(rctx, top.ID)
	if err != nil {
		return checkpoint.Snapshot{}, fmt.Errorf("dapadapter: scopes: %w", err)
	}

	locals := make(map[string]checkpoint.Value)
	var args []string
	for _, sc := range scopes {
		kind := scopeKind(sc)
		if sc.Expensive || kind == "" {
			continue
		}
		vars, err := a.client.Variables(rctx, dap.VariablesArguments{VariablesReference: sc.VariablesReference})
		if err != nil {
			a.log.Warn("variables of scope %s: %v", sc.Name, err)
			continue
		}
		for _, v := range vars {
			if _, dup := locals[v.Name]; dup {
				continue
			}
			locals[v.Name] = a.value(rctx, v)
			if kind == "arguments" {
				args = append(args, v.Name)
			}
		}
	}

	loc := checkpoint.Location{Line: top.Line, Function: top.Name}
	if top.Source != nil {
		loc.File = top.Source.Path
		if loc.File == "" {
			loc.File = top.Source.Name
		}
	}

	a.setLive(thread, top.ID)
	return checkpoint.Snapshot{
		Location: loc,
		Locals:   locals,
		Args:     args,
		CallID:   a.tracker.Identify(stack),
		Reason:   stop.Reason,
	}, nil
}

// scopeKind returns "locals" or "arguments" for scopes worth copying and ""
// for the rest (globals, registers).
func scopeKind(sc dap.Scope) string {
	hint := strings.ToLower(sc.PresentationHint)
	name := strings.ToLower(sc.Name)
	switch {
	case hint == "arguments" || strings.Contains(name, "argument"):
		return "arguments"
	case hint == "locals" || strings.Contains(name, "local"):
		return "locals"
	default:
		return ""
	}
}

func (a *Adapter) value(ctx context.Context, v dap.Variable) checkpoint.Value {
	val, err := checkpoint.NewValue(v.Type, a.expand(ctx, v, a.cfg.Depth))
	if err != nil {
		return checkpoint.TextValue(v.Type, v.Value)
	}
	return val
}

var indexName = regexp.MustCompile(`^\[?\d+\]?$`)

// expand converts a variable to plain data, fetching children up to depth
// levels down.
func (a *Adapter) expand(ctx context.Context, v dap.Variable, depth int) any {
	if v.VariablesReference == 0 || depth <= 0 {
		return scalar(v.Value)
	}
	children, err := a.client.Variables(ctx, dap.VariablesArguments{
		VariablesReference: v.VariablesReference,
		Count:              a.cfg.MaxChildren,
	})
	if err != nil {
		a.log.Debug("expand %s: %v", v.Name, err)
		return scalar(v.Value)
	}

	sequence := len(children) > 0 && !slices.ContainsFunc(children, func(c dap.Variable) bool {
		return !indexName.MatchString(c.Name)
	})
	if sequence {
		out := make([]any, len(children))
		for i, c := range children {
			out[i] = a.expand(ctx, c, depth-1)
		}
		return out
	}

	out := make(map[string]any, len(children))
	for _, c := range children {
		out[c.Name] = a.expand(ctx, c, depth-1)
	}
	return out
}

// scalar interprets an adapter's display string. JSON-compatible text
// (numbers, booleans, quoted strings) becomes data; anything else is kept
// as text.
func scalar(s string) any {
	if gjson.Valid(s) {
		return gjson.Parse(s).Value()
	}
	return s
}

// resume sends a stepping request for the stopped thread.
func (a *Adapter) resume(ctx context.Context, p adapter.Primitive) error {
	a.mu.Lock()
	thread, detached := a.thread, a.detached
	a.mu.Unlock()
	if detached {
		return session.ErrDetached
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()

	var err error
	switch p {
	case adapter.Next:
		err = a.client.Next(rctx, thread)
	case adapter.Step:
		err = a.client.StepIn(rctx, thread)
	case adapter.Return:
		err = a.client.StepOut(rctx, thread)
	case adapter.Continue:
		err = a.client.Continue(rctx, thread)
	default:
		return fmt.Errorf("dapadapter: cannot resume with %s", p)
	}
	if err != nil {
		return err
	}
	a.log.Debug("%s on thread %d", p, thread)
	return nil
}

// RequestNext implements session.Adapter.
func (a *Adapter) RequestNext(ctx context.Context) error { return a.resume(ctx, adapter.Next) }

// RequestStep implements session.Adapter.
func (a *Adapter) RequestStep(ctx context.Context) error { return a.resume(ctx, adapter.Step) }

// RequestReturn implements session.Adapter.
func (a *Adapter) RequestReturn(ctx context.Context) error { return a.resume(ctx, adapter.Return) }

// RequestContinue implements session.Adapter.
func (a *Adapter) RequestContinue(ctx context.Context) error { return a.resume(ctx, adapter.Continue) }

// Detach implements session.Adapter. The adapter counts as detached even
// when the disconnect request fails.
func (a *Adapter) Detach(ctx context.Context) error {
	a.mu.Lock()
	if a.detached {
		a.mu.Unlock()
		return nil
	}
	a.detached = true
	a.mu.Unlock()

	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	return a.client.Disconnect(rctx, dap.DisconnectArguments{TerminateDebuggee: a.cfg.Terminate})
}

// Evaluator returns an evaluator that sends expressions for the paused
// checkpoint to the debug adapter and hands historical checkpoints to
// fallback.
func (a *Adapter) Evaluator(fallback session.Evaluator) session.Evaluator {
	return &liveEvaluator{a: a, fallback: fallback}
}

type liveEvaluator struct {
	a        *Adapter
	fallback session.Evaluator
}

func (e *liveEvaluator) Evaluate(ctx context.Context, expr string, ec session.EvalContext) (string, error) {
	if frame, live := e.a.liveFrame(); ec.Live && live {
		rctx, cancel := e.a.requestContext(ctx)
		defer cancel()
		res, err := e.a.client.Evaluate(rctx, dap.EvaluateArguments{Expression: expr, FrameID: frame, Context: "repl"})
		if err != nil {
			return "", err
		}
		return res.Result, nil
	}
	if e.fallback == nil {
		return "", session.ErrNoEvaluator
	}
	return e.fallback.Evaluate(ctx, expr, ec)
}
