package timeline

import (
	"github.com/pmezard/go-difflib/difflib"

	"github.com/dshills/backstep/internal/checkpoint"
	"github.com/dshills/backstep/internal/pretty"
)

// Tag classifies a diff line.
type Tag uint8

const (
	// Unchanged lines appear on both sides.
	Unchanged Tag = iota

	// Added lines appear only on the newer side.
	Added

	// Removed lines appear only on the older side.
	Removed
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Line is one tagged line of a diff.
type Line struct {
	Tag  Tag
	Text string
}

// Result is a line diff of one variable between two checkpoints.
type Result struct {
	Name string
	From checkpoint.ID
	To   checkpoint.ID
	// Lines covers both representations in full.
	Lines []Line
}

// Changed reports whether any line was added or removed.
func (r *Result) Changed() bool {
	for _, l := range r.Lines {
		if l.Tag != Unchanged {
			return true
		}
	}
	return false
}

// Counts returns the number of added and removed lines.
func (r *Result) Counts() (added, removed int) {
	for _, l := range r.Lines {
		switch l.Tag {
		case Added:
			added++
		case Removed:
			removed++
		}
	}
	return added, removed
}

// Diff compares name at a (older) and b (newer). Both checkpoints must belong
// to the same call. A variable missing on one side diffs as empty.
func Diff(name string, a, b *checkpoint.Checkpoint) (*Result, error) {
	if a.CallID() != b.CallID() {
		return nil, &IncomparableFramesError{Name: name, From: a.CallID(), To: b.CallID()}
	}

	va, okA := Value(a, name)
	vb, okB := Value(b, name)
	if !okA && !okB {
		return nil, ErrNotCaptured
	}

	return &Result{
		Name:  name,
		From:  a.ID(),
		To:    b.ID(),
		Lines: Lines(pretty.Lines(va.Repr()), pretty.Lines(vb.Repr())),
	}, nil
}

// DiffPrevious compares name at cp against its most recent earlier value in
// the same call.
func DiffPrevious(src Source, name string, cp *checkpoint.Checkpoint) (*Result, error) {
	if _, ok := Value(cp, name); !ok {
		return nil, ErrNotCaptured
	}
	prev, ok := Previous(src, name, cp)
	if !ok {
		return nil, ErrNoEarlierValue
	}
	return Diff(name, prev, cp)
}

// Lines computes a line diff with a longest-matching-block algorithm, so
// insertions and deletions do not misalign the lines that follow them.
// Replaced regions emit their removed lines before the added ones.
func Lines(a, b []string) []Line {
	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	var out []Line
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, s := range a[op.I1:op.I2] {
				out = append(out, Line{Tag: Unchanged, Text: s})
			}
		case 'd':
			for _, s := range a[op.I1:op.I2] {
				out = append(out, Line{Tag: Removed, Text: s})
			}
		case 'i':
			for _, s := range b[op.J1:op.J2] {
				out = append(out, Line{Tag: Added, Text: s})
			}
		case 'r':
			for _, s := range a[op.I1:op.I2] {
				out = append(out, Line{Tag: Removed, Text: s})
			}
			for _, s := range b[op.J1:op.J2] {
				out = append(out, Line{Tag: Added, Text: s})
			}
		}
	}
	return out
}
