package timeline

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dshills/backstep/internal/checkpoint"
)

func text(s string) checkpoint.Value {
	return checkpoint.TextValue("", s)
}

func record(h *checkpoint.History, call checkpoint.CallID, locals map[string]checkpoint.Value) *checkpoint.Checkpoint {
	return h.Append(checkpoint.Snapshot{
		Location: checkpoint.Location{File: "f.go", Line: h.Len() + 1},
		Locals:   locals,
		CallID:   call,
	})
}

func TestDiffLCS(t *testing.T) {
	h := checkpoint.NewHistory()
	a := record(h, "c", map[string]checkpoint.Value{"x": text("1\n2\n3")})
	b := record(h, "c", map[string]checkpoint.Value{"x": text("1\n2\n4")})

	res, err := Diff("x", a, b)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	want := []Line{
		{Unchanged, "1"},
		{Unchanged, "2"},
		{Removed, "3"},
		{Added, "4"},
	}
	if !reflect.DeepEqual(res.Lines, want) {
		t.Errorf("Diff() lines = %v, want %v", res.Lines, want)
	}
	if res.From != a.ID() || res.To != b.ID() || !res.Changed() {
		t.Errorf("Diff() = %+v", res)
	}
	if added, removed := res.Counts(); added != 1 || removed != 1 {
		t.Errorf("Counts() = %d, %d", added, removed)
	}
}

func TestDiffIncomparableFrames(t *testing.T) {
	h := checkpoint.NewHistory()
	a := record(h, "outer", map[string]checkpoint.Value{"x": text("1")})
	b := record(h, "inner", map[string]checkpoint.Value{"x": text("1")})

	res, err := Diff("x", a, b)
	if res != nil {
		t.Errorf("Diff() across calls returned a result: %+v", res)
	}
	var inc *IncomparableFramesError
	if !errors.As(err, &inc) || !errors.Is(err, ErrIncomparableFrames) {
		t.Fatalf("Diff() error = %v, want IncomparableFramesError", err)
	}
	if inc.From != "outer" || inc.To != "inner" {
		t.Errorf("IncomparableFramesError = %+v", inc)
	}
}

func TestDiffMissingSide(t *testing.T) {
	h := checkpoint.NewHistory()
	a := record(h, "c", nil)
	b := record(h, "c", map[string]checkpoint.Value{"x": text("new")})
	c := record(h, "c", nil)

	res, err := Diff("x", a, b)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if want := []Line{{Added, "new"}}; !reflect.DeepEqual(res.Lines, want) {
		t.Errorf("Diff() = %v, want %v", res.Lines, want)
	}

	if _, err := Diff("x", a, c); !errors.Is(err, ErrNotCaptured) {
		t.Errorf("Diff() with neither side = %v, want ErrNotCaptured", err)
	}
}

func TestDiffInsertionKeepsAlignment(t *testing.T) {
	got := Lines([]string{"a", "b", "c"}, []string{"a", "x", "b", "c"})
	want := []Line{{Unchanged, "a"}, {Added, "x"}, {Unchanged, "b"}, {Unchanged, "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
}

func TestHistoryOf(t *testing.T) {
	h := checkpoint.NewHistory()
	c1 := record(h, "c", nil)
	c2 := record(h, "c", map[string]checkpoint.Value{"x": text("1")})
	record(h, "other", map[string]checkpoint.Value{"x": text("99")})
	c4 := record(h, "c", map[string]checkpoint.Value{"x": text("2")})

	got := HistoryOf(h, "x", "c")
	want := []Entry{{c2.ID(), "1"}, {c4.ID(), "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("HistoryOf() = %v, want %v", got, want)
	}
	if got := HistoryOf(h, "y", c1.CallID()); len(got) != 0 {
		t.Errorf("HistoryOf(y) = %v, want empty", got)
	}
}

func TestHistoryOfPath(t *testing.T) {
	h := checkpoint.NewHistory()
	v1, _ := checkpoint.NewValue("", map[string]any{"name": "ada", "age": 36})
	v2, _ := checkpoint.NewValue("", map[string]any{"name": "ada", "age": 37})
	record(h, "c", map[string]checkpoint.Value{"user": v1})
	record(h, "c", map[string]checkpoint.Value{"user": v2})

	got := HistoryOf(h, "user.age", "c")
	if len(got) != 2 || got[0].Repr != "36" || got[1].Repr != "37" {
		t.Errorf("HistoryOf(user.age) = %v", got)
	}
}

func TestDiffPrevious(t *testing.T) {
	h := checkpoint.NewHistory()
	record(h, "c", map[string]checkpoint.Value{"x": text("1")})
	mid := record(h, "other", map[string]checkpoint.Value{"x": text("5")})
	prev := record(h, "c", map[string]checkpoint.Value{"x": text("2")})
	record(h, "c", map[string]checkpoint.Value{"y": text("0")})
	cur := record(h, "c", map[string]checkpoint.Value{"x": text("3")})

	res, err := DiffPrevious(h, "x", cur)
	if err != nil {
		t.Fatalf("DiffPrevious: %v", err)
	}
	if res.From != prev.ID() || res.To != cur.ID() {
		t.Errorf("DiffPrevious() compared %v -> %v, want %v -> %v", res.From, res.To, prev.ID(), cur.ID())
	}

	if _, err := DiffPrevious(h, "x", mid); !errors.Is(err, ErrNoEarlierValue) {
		t.Errorf("DiffPrevious(first in call) = %v, want ErrNoEarlierValue", err)
	}
	if _, err := DiffPrevious(h, "zz", cur); !errors.Is(err, ErrNotCaptured) {
		t.Errorf("DiffPrevious(absent) = %v, want ErrNotCaptured", err)
	}
}

func TestUnified(t *testing.T) {
	res := &Result{
		Name: "x",
		From: 1,
		To:   2,
		Lines: []Line{
			{Unchanged, "1"},
			{Removed, "3"},
			{Added, "4"},
		},
	}

	out, err := res.Unified()
	if err != nil {
		t.Fatalf("Unified: %v", err)
	}
	for _, want := range []string{"--- x@1", "+++ x@2", "@@ -1,2 +1,2 @@", " 1\n", "-3\n", "+4\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("Unified() missing %q in:\n%s", want, out)
		}
	}
}

func TestDiffReconstructsBothSides_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	// small alphabet so matches are frequent
	lines := gen.SliceOf(gen.IntRange(0, 3))
	alphabet := []string{"a", "b", "c", "d"}
	toLines := func(xs []int) []string {
		out := make([]string, len(xs))
		for i, x := range xs {
			out[i] = alphabet[x]
		}
		return out
	}

	properties.Property("unchanged+removed rebuilds a, unchanged+added rebuilds b", prop.ForAll(
		func(xa, xb []int) bool {
			a, b := toLines(xa), toLines(xb)
			var gotA, gotB []string
			for _, l := range Lines(a, b) {
				switch l.Tag {
				case Unchanged:
					gotA = append(gotA, l.Text)
					gotB = append(gotB, l.Text)
				case Removed:
					gotA = append(gotA, l.Text)
				case Added:
					gotB = append(gotB, l.Text)
				}
			}
			return equalLines(gotA, a) && equalLines(gotB, b)
		},
		lines, lines,
	))

	properties.TestingRun(t)
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
