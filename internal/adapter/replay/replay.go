package replay

import (
	"context"
	"sync"

	"github.com/dshills/backstep/internal/adapter"
	"github.com/dshills/backstep/internal/checkpoint"
	"github.com/dshills/backstep/internal/logging"
	"github.com/dshills/backstep/internal/session"
)

// Adapter replays a trace into a pause handler.
type Adapter struct {
	trace   *Trace
	calls   []checkpoint.CallID
	pending adapter.Pending
	log     *logging.Logger

	mu       sync.Mutex
	detached bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Adapter) {
		a.log = l.WithComponent("replay")
	}
}

// New creates an adapter for trace.
func New(trace *Trace, opts ...Option) *Adapter {
	a := &Adapter{
		trace: trace,
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	// identities follow every event, not just the ones that pause
	tracker := adapter.NewTracker()
	a.calls = make([]checkpoint.CallID, len(trace.Events))
	for i := range trace.Events {
		ev := &trace.Events[i]
		id := tracker.Identify(ev.frames())
		if ev.Call != "" {
			id = checkpoint.CallID(ev.Call)
		}
		a.calls[i] = id
	}
	return a
}

func (a *Adapter) request(p adapter.Primitive) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.detached {
		return session.ErrDetached
	}
	a.pending.Set(p)
	if p == adapter.Detach {
		a.detached = true
	}
	return nil
}

// RequestNext implements session.Adapter.
func (a *Adapter) RequestNext(context.Context) error { return a.request(adapter.Next) }

// RequestStep implements session.Adapter.
func (a *Adapter) RequestStep(context.Context) error { return a.request(adapter.Step) }

// RequestReturn implements session.Adapter.
func (a *Adapter) RequestReturn(context.Context) error { return a.request(adapter.Return) }

// RequestContinue implements session.Adapter.
func (a *Adapter) RequestContinue(context.Context) error { return a.request(adapter.Continue) }

// Detach implements session.Adapter.
func (a *Adapter) Detach(context.Context) error { return a.request(adapter.Detach) }

// Run pauses at the first event and keeps replaying until the handler quits
// or the trace runs out.
func (a *Adapter) Run(ctx context.Context, h session.PauseHandler) error {
	events := a.trace.Events
	reason := "entry"

	for i := 0; i < len(events); {
		if err := ctx.Err(); err != nil {
			return err
		}

		snap, err := events[i].snapshot(a.calls[i], reason)
		if err != nil {
			return err
		}

		a.log.Debug("pause at event %d (%s)", i, snap.Location)
		out, err := h.OnPause(ctx, snap)
		if err != nil {
			return err
		}
		if out == session.OutcomeQuit {
			return nil
		}

		p := a.pending.Take()
		switch p {
		case adapter.Detach:
			return nil
		case adapter.None:
			a.log.Warn("resumed without a primitive at event %d, continuing", i)
			p = adapter.Continue
		}
		reason = p.String()
		if p == adapter.Continue {
			reason = "breakpoint"
		}
		i = a.next(i, p)
	}

	exit := a.trace.Exit
	if exit == "" {
		exit = "end of trace"
	}
	h.Terminated(exit)
	return nil
}

// next returns the index of the event p pauses at after event i, or
// len(events) when the program runs to completion.
func (a *Adapter) next(i int, p adapter.Primitive) int {
	events := a.trace.Events
	depth := events[i].depth()

	for j := i + 1; j < len(events); j++ {
		ev := &events[j]
		switch p {
		case adapter.Step:
			return j
		case adapter.Next:
			if ev.depth() <= depth {
				return j
			}
		case adapter.Return:
			if ev.depth() < depth {
				return j
			}
		case adapter.Continue:
			if ev.Breakpoint {
				return j
			}
		}
	}
	return len(events)
}
