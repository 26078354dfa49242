package input

import (
	"context"
	"io"
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/backstep/internal/session"
)

// PromptDrawer shows the line being edited. *render.Screen implements it.
type PromptDrawer interface {
	DrawPrompt(st session.Status, input []rune, cursor int)
	Resize()
}

// ScreenReader reads lines from tcell key events.
type ScreenReader struct {
	drawer    PromptDrawer
	events    chan tcell.Event
	history   []string
	completer *Completer
}

// ScreenOption configures a ScreenReader.
type ScreenOption func(*ScreenReader)

// WithCompletions lets Tab complete the first word of a line from words.
func WithCompletions(words []string) ScreenOption {
	return func(r *ScreenReader) {
		r.completer = NewCompleter(words)
	}
}

// NewScreenReader starts polling screen for events. Polling ends when the
// screen is finalized, after which ReadLine returns io.EOF.
func NewScreenReader(screen tcell.Screen, drawer PromptDrawer, opts ...ScreenOption) *ScreenReader {
	r := &ScreenReader{
		drawer: drawer,
		events: make(chan tcell.Event, 16),
	}
	for _, opt := range opts {
		opt(r)
	}
	go func() {
		defer close(r.events)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			r.events <- ev
		}
	}()
	return r
}

// lineEditor is the state of one line being typed.
type lineEditor struct {
	buf    []rune
	cursor int
	// recall indexes history while walking it with Up/Down
	recall int
}

func (e *lineEditor) set(s string) {
	e.buf = []rune(s)
	e.cursor = len(e.buf)
}

// ReadLine implements session.LineReader.
func (r *ScreenReader) ReadLine(ctx context.Context, st session.Status) (string, error) {
	ed := &lineEditor{recall: len(r.history)}
	r.drawer.DrawPrompt(st, ed.buf, ed.cursor)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case ev, ok := <-r.events:
			if !ok {
				return "", io.EOF
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				r.drawer.Resize()
			case *tcell.EventKey:
				line, done, err := r.key(ed, ev)
				if done || err != nil {
					r.drawer.DrawPrompt(st, nil, 0)
					return line, err
				}
			}
			r.drawer.DrawPrompt(st, ed.buf, ed.cursor)
		}
	}
}

// key applies one key press. done is set when the line is complete.
func (r *ScreenReader) key(ed *lineEditor, ev *tcell.EventKey) (line string, done bool, err error) {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return "", false, session.ErrInterrupted
	case tcell.KeyCtrlD:
		if len(ed.buf) == 0 {
			return "", false, io.EOF
		}
		if ed.cursor < len(ed.buf) {
			ed.buf = slices.Delete(ed.buf, ed.cursor, ed.cursor+1)
		}
	case tcell.KeyEnter:
		line = string(ed.buf)
		if line != "" && (len(r.history) == 0 || r.history[len(r.history)-1] != line) {
			r.history = append(r.history, line)
		}
		return line, true, nil
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if ed.cursor > 0 {
			ed.buf = slices.Delete(ed.buf, ed.cursor-1, ed.cursor)
			ed.cursor--
		}
	case tcell.KeyDelete:
		if ed.cursor < len(ed.buf) {
			ed.buf = slices.Delete(ed.buf, ed.cursor, ed.cursor+1)
		}
	case tcell.KeyLeft:
		ed.cursor = max(0, ed.cursor-1)
	case tcell.KeyRight:
		ed.cursor = min(len(ed.buf), ed.cursor+1)
	case tcell.KeyHome, tcell.KeyCtrlA:
		ed.cursor = 0
	case tcell.KeyEnd, tcell.KeyCtrlE:
		ed.cursor = len(ed.buf)
	case tcell.KeyCtrlU:
		ed.buf = ed.buf[:0]
		ed.cursor = 0
	case tcell.KeyUp:
		if ed.recall > 0 {
			ed.recall--
			ed.set(r.history[ed.recall])
		}
	case tcell.KeyDown:
		if ed.recall < len(r.history)-1 {
			ed.recall++
			ed.set(r.history[ed.recall])
		} else {
			ed.recall = len(r.history)
			ed.set("")
		}
	case tcell.KeyTab:
		r.complete(ed)
	case tcell.KeyRune:
		ed.buf = slices.Insert(ed.buf, ed.cursor, ev.Rune())
		ed.cursor++
	}
	return "", false, nil
}

// complete replaces the first word when the cursor is at its end.
func (r *ScreenReader) complete(ed *lineEditor) {
	if r.completer == nil {
		return
	}
	end := slices.Index(ed.buf, ' ')
	if end < 0 {
		end = len(ed.buf)
	}
	if end == 0 || ed.cursor != end {
		return
	}
	word, ok := r.completer.Complete(string(ed.buf[:end]))
	if !ok {
		return
	}
	rest := ed.buf[end:]
	if len(rest) > 0 {
		word = strings.TrimSuffix(word, " ")
	}
	ed.buf = append([]rune(word), rest...)
	ed.cursor = len([]rune(word))
}
