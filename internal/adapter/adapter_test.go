package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerKeepsUnchangedPrefix(t *testing.T) {
	tr := NewTracker()

	mainID := tr.Identify([]string{"main"})
	fID := tr.Identify([]string{"main", "f"})
	assert.NotEqual(t, mainID, fID)

	// stepping within f
	assert.Equal(t, fID, tr.Identify([]string{"main", "f"}))
	assert.Equal(t, 2, tr.Depth())

	// f calls g, g returns
	gID := tr.Identify([]string{"main", "f", "g"})
	assert.NotEqual(t, fID, gID)
	assert.Equal(t, fID, tr.Identify([]string{"main", "f"}))

	// back in main, then a second call of f
	assert.Equal(t, mainID, tr.Identify([]string{"main"}))
	assert.NotEqual(t, fID, tr.Identify([]string{"main", "f"}), "a new invocation needs a new identity")
}

func TestTrackerSiblingCalls(t *testing.T) {
	tr := NewTracker()

	a := tr.Identify([]string{"main", "a"})
	b := tr.Identify([]string{"main", "b"})
	assert.NotEqual(t, a, b)

	// changing an outer frame renews everything inside it
	inner := tr.Identify([]string{"main", "b", "c"})
	renamed := tr.Identify([]string{"other", "b", "c"})
	assert.NotEqual(t, inner, renamed)
}

func TestTrackerEmptyStack(t *testing.T) {
	tr := NewTracker()

	root := tr.Identify(nil)
	require.NotEmpty(t, root)
	assert.Equal(t, root, tr.Identify([]string{}))
	assert.Equal(t, 0, tr.Depth())

	tr.Identify([]string{"main"})
	tr.Reset()
	assert.Equal(t, 0, tr.Depth())
}

func TestPendingTakeClears(t *testing.T) {
	var p Pending
	assert.Equal(t, None, p.Take())

	p.Set(Step)
	p.Set(Next)
	assert.Equal(t, Next, p.Take())
	assert.Equal(t, None, p.Take())
}

func TestPrimitiveString(t *testing.T) {
	tests := []struct {
		p    Primitive
		want string
	}{
		{None, "none"},
		{Next, "next"},
		{Step, "step"},
		{Return, "return"},
		{Continue, "continue"},
		{Detach, "detach"},
		{Primitive(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.p.String())
	}
}
