package checkpoint

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func snap(line int, call CallID) Snapshot {
	return Snapshot{
		Location: Location{File: "main.go", Line: line, Function: "main.run"},
		Locals:   map[string]Value{"x": TextValue("int", "1")},
		CallID:   call,
	}
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory()

	if h.Current() != nil {
		t.Error("Current() on empty history should be nil")
	}
	if h.Latest() != nil {
		t.Error("Latest() on empty history should be nil")
	}
	if h.Rewind(1) != nil {
		t.Error("Rewind() on empty history should be nil")
	}
	if h.Forward(1) != nil {
		t.Error("Forward() on empty history should be nil")
	}
	if h.ViewingPast() {
		t.Error("ViewingPast() on empty history should be false")
	}
	if h.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0", h.Cursor())
	}
}

func TestHistoryAppendAssignsIDs(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	h := NewHistory(WithClock(func() time.Time { return at }))

	for i := 1; i <= 3; i++ {
		cp := h.Append(snap(i, "c"))
		if cp.ID() != ID(i) {
			t.Errorf("Append() id = %v, want %d", cp.ID(), i)
		}
		if !cp.Timestamp().Equal(at) {
			t.Errorf("Timestamp() = %v, want %v", cp.Timestamp(), at)
		}
		if h.Cursor() != i-1 {
			t.Errorf("Cursor() after append = %d, want %d", h.Cursor(), i-1)
		}
	}

	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}
	if got, ok := h.ByID(2); !ok || got.Location().Line != 2 {
		t.Errorf("ByID(2) = %v, %v", got, ok)
	}
	if _, ok := h.ByID(0); ok {
		t.Error("ByID(0) should not exist")
	}
	if _, ok := h.ByID(9); ok {
		t.Error("ByID(9) should not exist")
	}
}

func TestHistoryNavigationClamps(t *testing.T) {
	h := NewHistory()
	c1 := h.Append(snap(1, "c"))
	c2 := h.Append(snap(2, "c"))
	c3 := h.Append(snap(3, "c"))

	if got := h.Rewind(1); got != c2 {
		t.Fatalf("Rewind(1) = %v, want C2", got.ID())
	}
	if !h.ViewingPast() {
		t.Error("ViewingPast() should be true after rewind")
	}
	if h.Latest() != c3 {
		t.Error("Latest() must not follow the cursor")
	}

	if got := h.Rewind(1); got != c1 {
		t.Fatalf("Rewind(1) = %v, want C1", got.ID())
	}
	if got := h.Rewind(10); got != c1 || h.Cursor() != 0 {
		t.Errorf("Rewind(10) = %v cursor %d, want C1 at 0", got.ID(), h.Cursor())
	}

	if got := h.Forward(5); got != c3 || h.Cursor() != 2 {
		t.Errorf("Forward(5) = %v cursor %d, want C3 at 2", got.ID(), h.Cursor())
	}
	if h.ViewingPast() {
		t.Error("ViewingPast() should be false at latest")
	}
}

func TestHistoryNegativeSteps(t *testing.T) {
	h := NewHistory()
	h.Append(snap(1, "c"))
	h.Append(snap(2, "c"))
	h.Rewind(1)

	tests := []struct {
		name string
		move func(int) *Checkpoint
	}{
		{"Rewind", h.Rewind},
		{"Forward", h.Forward},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := h.Cursor()
			tt.move(-3)
			if h.Cursor() != before {
				t.Errorf("%s(-3) moved cursor %d -> %d", tt.name, before, h.Cursor())
			}
		})
	}
}

func TestHistoryAppendReturnsToPresent(t *testing.T) {
	h := NewHistory()
	h.Append(snap(1, "c"))
	h.Append(snap(2, "c"))
	h.Rewind(5)

	c3 := h.Append(snap(3, "c"))
	if h.Current() != c3 || h.ViewingPast() {
		t.Errorf("Append() should move cursor to the new checkpoint, cursor = %d", h.Cursor())
	}
}

func TestHistoryCheckpointsIsCopy(t *testing.T) {
	h := NewHistory()
	h.Append(snap(1, "c"))

	list := h.Checkpoints()
	list[0] = nil
	if cp, _ := h.At(0); cp == nil {
		t.Error("Checkpoints() exposed internal slice")
	}
	if _, ok := h.At(1); ok {
		t.Error("At(1) should be out of range")
	}
	if _, ok := h.At(-1); ok {
		t.Error("At(-1) should be out of range")
	}
}

// ops encodes a navigation script: op%3 selects append, rewind or forward and
// op/3 is the step count.
func runOps(h *History, ops []int) bool {
	for _, op := range ops {
		n := op / 3
		switch op % 3 {
		case 0:
			h.Append(snap(op, "c"))
			if h.Cursor() != h.Len()-1 {
				return false
			}
		case 1:
			h.Rewind(n)
		case 2:
			h.Forward(n)
		}
		if h.Len() > 0 && (h.Cursor() < 0 || h.Cursor() >= h.Len()) {
			return false
		}
		if h.ViewingPast() != (h.Len() > 0 && h.Cursor() != h.Len()-1) {
			return false
		}
		if h.Len() > 0 && h.Latest() != h.Checkpoints()[h.Len()-1] {
			return false
		}
	}
	return true
}

func TestHistoryCursorInvariants_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("cursor stays in bounds and tracks appends", prop.ForAll(
		func(ops []int) bool {
			return runOps(NewHistory(), ops)
		},
		gen.SliceOf(gen.IntRange(0, 30)),
	))

	properties.Property("rewind then forward by the same count returns to latest", prop.ForAll(
		func(count, n int) bool {
			h := NewHistory()
			for i := 0; i < count; i++ {
				h.Append(snap(i, "c"))
			}
			h.Rewind(n)
			h.Forward(n)
			return !h.ViewingPast() && h.Current() == h.Latest()
		},
		gen.IntRange(1, 20),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}
