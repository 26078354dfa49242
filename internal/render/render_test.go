package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/backstep/internal/checkpoint"
	"github.com/dshills/backstep/internal/command"
	"github.com/dshills/backstep/internal/session"
	"github.com/dshills/backstep/internal/timeline"
)

const sample = `package main

func main() {
	x := 1
	x++
	println(x)
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.go")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newCache(t *testing.T) *SourceCache {
	t.Helper()
	c, err := NewSourceCache(2)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSourceCacheSnippet(t *testing.T) {
	path := writeSample(t)
	c := newCache(t)

	got := c.Snippet(path, 4, 1)
	if len(got) != 3 {
		t.Fatalf("Snippet() = %d lines, want 3", len(got))
	}
	if got[0].Number != 3 || got[1].Number != 4 || !got[1].Current || got[1].Text != "\tx := 1" {
		t.Errorf("Snippet() = %+v", got)
	}

	// clamps at file edges
	if got := c.Snippet(path, 1, 5); got[0].Number != 1 || len(got) != 6 {
		t.Errorf("Snippet(line 1) = %+v", got)
	}
	if got := c.Snippet(path, 99, 1); got != nil {
		t.Errorf("Snippet(out of range) = %+v", got)
	}
	if got := c.Snippet(filepath.Join(t.TempDir(), "nope.go"), 1, 1); got != nil {
		t.Errorf("Snippet(missing) = %+v", got)
	}
}

func TestSourceCacheReusesReads(t *testing.T) {
	c := newCache(t)
	reads := 0
	c.read = func(name string) ([]byte, error) {
		reads++
		if name == "bad" {
			return nil, errors.New("nope")
		}
		return []byte("a\nb\n"), nil
	}

	c.Lines("one")
	c.Lines("one")
	if reads != 1 {
		t.Errorf("reads = %d, want 1", reads)
	}

	c.Lines("bad")
	c.Lines("bad")
	if reads != 3 {
		t.Errorf("unreadable file was cached, reads = %d", reads)
	}

	c.Lines("two")
	c.Lines("three")
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d", c.Len())
	}
}

func TestTextLocation(t *testing.T) {
	path := writeSample(t)
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.ContextLines = 1
	opts.BaseDir = filepath.Dir(path)
	r := NewText(&buf, opts, newCache(t))

	latest := checkpoint.Location{File: path, Line: 6}
	r.Render(session.Payload{
		Kind:     session.EventLocation,
		Location: checkpoint.Location{File: path, Line: 5, Function: "main.main"},
		Latest:   &latest,
		Status:   session.Status{Position: 1, Total: 2, ViewingPast: true},
	})

	out := buf.String()
	for _, want := range []string{
		"> main.main (main.go:5)",
		"viewing checkpoint 1 of 2; program is at main.go:6",
		"4    \tx := 1",
		"5 ->",
	} {
		want = strings.ReplaceAll(want, "\t", "    ")
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("non-terminal output contains escape sequences")
	}
}

func TestTextPayloads(t *testing.T) {
	res := &timeline.Result{
		Name: "x", From: 1, To: 2,
		Lines: []timeline.Line{
			{Tag: timeline.Unchanged, Text: "1"},
			{Tag: timeline.Removed, Text: "3"},
			{Tag: timeline.Added, Text: "4"},
		},
	}
	quit := command.Builtins()[len(command.Builtins())-2]

	tests := []struct {
		name string
		p    session.Payload
		want []string
	}{
		{"value", session.Payload{Kind: session.EventValue, Title: "user", Text: "{\n  \"a\": 1\n}"},
			[]string{"user =", "  {", "    \"a\": 1"}},
		{"values", session.Payload{Kind: session.EventValues, Values: []session.NamedValue{{Name: "n", Repr: "3"}}},
			[]string{"n = 3"}},
		{"diff", session.Payload{Kind: session.EventDiff, Diffs: []*timeline.Result{res}},
			[]string{"x: checkpoint 1 -> 2", "  1", "- 3", "+ 4"}},
		{"timeline", session.Payload{Kind: session.EventTimeline, Title: "x", Checkpoint: 2,
			Timeline: []timeline.Entry{{Checkpoint: 1, Repr: "a"}, {Checkpoint: 2, Repr: "b"}}},
			[]string{"x in this call:", "  #1 a", "* #2 b"}},
		{"help", session.Payload{Kind: session.EventHelp, Commands: []*command.Command{&quit}},
			[]string{"quit/q", "detach and end the session"}},
		{"error", session.Payload{Kind: session.EventError, Text: "boom"}, []string{"boom"}},
		{"evaluation", session.Payload{Kind: session.EventEvaluation, Text: "42"}, []string{"42"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewText(&buf, DefaultOptions(), nil).Render(tt.p)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestTextUnifiedAndTypes(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Unified = true
	opts.ShowTypes = true
	r := NewText(&buf, opts, nil)

	r.Render(session.Payload{Kind: session.EventDiff, Diffs: []*timeline.Result{{
		Name: "x", From: 1, To: 2,
		Lines: []timeline.Line{{Tag: timeline.Removed, Text: "a"}, {Tag: timeline.Added, Text: "b"}},
	}}})
	r.Render(session.Payload{Kind: session.EventValues, Values: []session.NamedValue{{Name: "n", Type: "int", Repr: "3"}}})

	out := buf.String()
	for _, want := range []string{"--- x@1", "+++ x@2", "-a", "+b", "n (int) = 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTextColorAlways(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Color = ColorAlways
	r := NewText(&buf, opts, nil)

	r.Render(session.Payload{Kind: session.EventError, Text: "boom"})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("ColorAlways produced no escape sequences: %q", buf.String())
	}

	buf.Reset()
	opts.Color = ColorNever
	r.Apply(opts)
	r.Render(session.Payload{Kind: session.EventError, Text: "boom"})
	if buf.String() != "boom\n" {
		t.Errorf("ColorNever output = %q", buf.String())
	}
}

func TestPrompt(t *testing.T) {
	tests := []struct {
		st   session.Status
		want string
	}{
		{session.Status{}, "[0] > "},
		{session.Status{EvalCount: 2, Where: "a.go:3", Position: 3, Total: 3}, "[2] a.go:3 (3/3)> "},
		{session.Status{Where: "a.go:1", Position: 1, Total: 3, ViewingPast: true}, "[0] a.go:1 (1/3, past)> "},
	}
	for _, tt := range tests {
		if got := PromptLine(tt.st); got != tt.want {
			t.Errorf("PromptLine(%+v) = %q, want %q", tt.st, got, tt.want)
		}
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"日本語", 4, "日本"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := clip(tt.in, tt.width); got != tt.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func screenRow(s tcell.SimulationScreen, row int) string {
	cells, width, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < width; x++ {
		c := cells[row*width+x]
		if len(c.Runes) == 0 {
			b.WriteRune(' ')
			continue
		}
		b.WriteString(string(c.Runes))
	}
	return strings.TrimRight(b.String(), " ")
}

func TestScreenLayout(t *testing.T) {
	path := writeSample(t)
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatal(err)
	}
	defer sim.Fini()
	sim.SetSize(60, 12)

	opts := DefaultOptions()
	opts.ContextLines = 1
	opts.BaseDir = filepath.Dir(path)
	r := NewScreen(sim, opts, newCache(t))

	st := session.Status{EvalCount: 4, Where: "main.go:4", Position: 1, Total: 1}
	r.Render(session.Payload{
		Kind:     session.EventLocation,
		Location: checkpoint.Location{File: path, Line: 4, Function: "main.main"},
		Status:   st,
	})
	r.Render(session.Payload{Kind: session.EventEvaluation, Text: "42", Status: st})
	r.DrawPrompt(st, []rune("pp x"), 4)

	if got := screenRow(sim, 1); !strings.Contains(got, "4 -> ") {
		t.Errorf("row 1 = %q, want current source line", got)
	}
	if got := screenRow(sim, 3); !strings.Contains(got, "main.main (main.go:4)") || !strings.Contains(got, "(1/1)") {
		t.Errorf("location bar = %q", got)
	}
	if got := screenRow(sim, 5); got != "42" {
		t.Errorf("output row = %q, want 42", got)
	}
	if got := screenRow(sim, 11); got != "[4] pp x" {
		t.Errorf("prompt row = %q", got)
	}
}

func TestScreenScrollback(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatal(err)
	}
	defer sim.Fini()
	sim.SetSize(40, 8)

	r := NewScreen(sim, DefaultOptions(), nil)
	for i := 0; i < maxOutputLines+10; i++ {
		r.Render(session.Payload{Kind: session.EventMessage, Text: "line"})
	}
	if len(r.output) != maxOutputLines {
		t.Errorf("output kept %d lines, want %d", len(r.output), maxOutputLines)
	}
	r.Resize()
}
