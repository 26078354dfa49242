package session

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/backstep/internal/checkpoint"
	"github.com/dshills/backstep/internal/command"
	"github.com/dshills/backstep/internal/timeline"
)

// execute runs cmd against the viewed checkpoint. Arity has been checked.
func (s *Session) execute(ctx context.Context, cmd *command.Command, args []string) error {
	cp := s.history.Current()

	switch cmd.Kind {
	case command.KindLine:
		s.renderLocation()
	case command.KindArgs:
		s.renderValues("arguments", cp, cp.Args())
	case command.KindLocals:
		s.renderValues("locals", cp, cp.Names())
	case command.KindPretty:
		return s.pretty(cp, args[0])
	case command.KindWatch:
		s.watch(args[0])
	case command.KindDiff:
		return s.diff(cp, args[0])
	case command.KindHistory:
		return s.variableHistory(cp, args[0])
	case command.KindBack:
		s.history.Rewind(1)
		s.renderLocation()
	case command.KindForward:
		s.history.Forward(1)
		s.renderLocation()
	case command.KindNext:
		return s.adapter.RequestNext(ctx)
	case command.KindStep:
		return s.adapter.RequestStep(ctx)
	case command.KindReturn:
		return s.adapter.RequestReturn(ctx)
	case command.KindContinue:
		return s.adapter.RequestContinue(ctx)
	case command.KindQuit:
		s.terminate(ctx)
	case command.KindHelp:
		s.emit(Payload{Kind: EventHelp, Title: "commands", Commands: s.registry.Commands()})
	default:
		return fmt.Errorf("session: command %q has no behavior", cmd.Name())
	}
	return nil
}

// renderLocation shows the viewed checkpoint with any watched changes.
func (s *Session) renderLocation() {
	cp := s.history.Current()
	if cp == nil {
		return
	}

	p := Payload{
		Kind:       EventLocation,
		Location:   cp.Location(),
		Checkpoint: cp.ID(),
		Title:      cp.Location().Function,
		Diffs:      s.watchDiffs(cp),
	}
	if s.history.ViewingPast() {
		latest := s.history.Latest().Location()
		p.Latest = &latest
	}
	s.emit(p)
}

func (s *Session) watchDiffs(cp *checkpoint.Checkpoint) []*timeline.Result {
	var out []*timeline.Result
	for _, name := range s.watches {
		res, err := timeline.DiffPrevious(s.history, name, cp)
		if err != nil {
			continue
		}
		out = append(out, res)
	}
	return out
}

func (s *Session) renderValues(title string, cp *checkpoint.Checkpoint, names []string) {
	if len(names) == 0 {
		s.emit(Payload{Kind: EventMessage, Text: "no " + title + " captured"})
		return
	}

	values := make([]NamedValue, 0, len(names))
	for _, name := range names {
		v, ok := cp.Local(name)
		if !ok {
			continue
		}
		values = append(values, NamedValue{Name: name, Type: v.Type(), Repr: v.Repr()})
	}
	s.emit(Payload{Kind: EventValues, Title: title, Values: values})
}

func (s *Session) pretty(cp *checkpoint.Checkpoint, expr string) error {
	v, ok := timeline.Value(cp, expr)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariable, expr)
	}
	s.emit(Payload{
		Kind:   EventValue,
		Title:  expr,
		Text:   v.Repr(),
		Values: []NamedValue{{Name: expr, Type: v.Type(), Repr: v.Repr()}},
	})
	return nil
}

func (s *Session) watch(name string) {
	if s.toggleWatch(name) {
		s.emit(Payload{Kind: EventMessage, Text: "watching " + name})
	} else {
		s.emit(Payload{Kind: EventMessage, Text: "no longer watching " + name})
	}
}

// toggleWatch adds or removes name and reports whether it is now watched.
func (s *Session) toggleWatch(name string) bool {
	if i := slices.Index(s.watches, name); i >= 0 {
		s.watches = slices.Delete(s.watches, i, i+1)
		return false
	}
	s.watches = append(s.watches, name)
	return true
}

func (s *Session) diff(cp *checkpoint.Checkpoint, name string) error {
	res, err := timeline.DiffPrevious(s.history, name, cp)
	switch {
	case errors.Is(err, timeline.ErrNotCaptured):
		return fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	case errors.Is(err, timeline.ErrNoEarlierValue):
		s.emit(Payload{Kind: EventMessage, Text: fmt.Sprintf("%s has no earlier value in this call", name)})
		return nil
	case err != nil:
		return err
	}
	s.emit(Payload{Kind: EventDiff, Title: name, Diffs: []*timeline.Result{res}})
	return nil
}

func (s *Session) variableHistory(cp *checkpoint.Checkpoint, name string) error {
	entries := timeline.HistoryOf(s.history, name, cp.CallID())
	if len(entries) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	s.emit(Payload{Kind: EventTimeline, Title: name, Timeline: entries})
	return nil
}
