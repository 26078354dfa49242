package timeline

import (
	"bytes"
	"fmt"

	"github.com/sourcegraph/go-diff/diff"
)

// FileDiff converts the result into a single-hunk unified diff. The file
// names carry the variable name and the checkpoint ids.
func (r *Result) FileDiff() *diff.FileDiff {
	var body bytes.Buffer
	var orig, next int32
	for _, l := range r.Lines {
		switch l.Tag {
		case Unchanged:
			body.WriteByte(' ')
			orig++
			next++
		case Removed:
			body.WriteByte('-')
			orig++
		case Added:
			body.WriteByte('+')
			next++
		}
		body.WriteString(l.Text)
		body.WriteByte('\n')
	}

	hunk := &diff.Hunk{
		OrigLines: orig,
		NewLines:  next,
		Body:      body.Bytes(),
	}
	// empty sides start at line 0 in unified format
	if orig > 0 {
		hunk.OrigStartLine = 1
	}
	if next > 0 {
		hunk.NewStartLine = 1
	}

	return &diff.FileDiff{
		OrigName: fmt.Sprintf("%s@%s", r.Name, r.From),
		NewName:  fmt.Sprintf("%s@%s", r.Name, r.To),
		Hunks:    []*diff.Hunk{hunk},
	}
}

// Unified renders the result as unified diff text.
func (r *Result) Unified() (string, error) {
	out, err := diff.PrintFileDiff(r.FileDiff())
	if err != nil {
		return "", fmt.Errorf("timeline: print diff of %q: %w", r.Name, err)
	}
	return string(out), nil
}
