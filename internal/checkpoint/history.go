package checkpoint

import "time"

// History is the append-only execution history of a session.
type History struct {
	checkpoints []*Checkpoint
	cursor      int
	nextID      ID
	now         func() time.Time
}

// Option configures a History.
type Option func(*History)

// WithClock sets the time source used to stamp appended checkpoints.
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHistory creates an empty history.
func NewHistory(opts ...Option) *History {
	h := &History{
		nextID: 1,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Append records a new pause point and moves the cursor to it.
func (h *History) Append(s Snapshot) *Checkpoint {
	cp := newCheckpoint(h.nextID, s, h.now())
	h.nextID++
	h.checkpoints = append(h.checkpoints, cp)
	h.cursor = len(h.checkpoints) - 1
	return cp
}

// Len returns the number of checkpoints.
func (h *History) Len() int {
	return len(h.checkpoints)
}

// Cursor returns the index of the checkpoint being viewed.
func (h *History) Cursor() int {
	return h.cursor
}

// Current returns the checkpoint at the cursor, or nil if the history is empty.
func (h *History) Current() *Checkpoint {
	if len(h.checkpoints) == 0 {
		return nil
	}
	return h.checkpoints[h.cursor]
}

// Latest returns the most recently appended checkpoint regardless of the
// cursor, or nil if the history is empty.
func (h *History) Latest() *Checkpoint {
	if len(h.checkpoints) == 0 {
		return nil
	}
	return h.checkpoints[len(h.checkpoints)-1]
}

// Rewind moves the cursor n checkpoints back, stopping at the oldest.
// Negative n is treated as zero.
func (h *History) Rewind(n int) *Checkpoint {
	if n < 0 {
		n = 0
	}
	h.cursor = max(0, h.cursor-n)
	return h.Current()
}

// Forward moves the cursor n checkpoints ahead, stopping at the latest.
// Negative n is treated as zero.
func (h *History) Forward(n int) *Checkpoint {
	if n < 0 {
		n = 0
	}
	if len(h.checkpoints) == 0 {
		return nil
	}
	h.cursor = min(len(h.checkpoints)-1, h.cursor+n)
	return h.Current()
}

// ViewingPast reports whether the cursor is behind the latest checkpoint.
func (h *History) ViewingPast() bool {
	return len(h.checkpoints) > 0 && h.cursor != len(h.checkpoints)-1
}

// At returns the checkpoint at index i.
func (h *History) At(i int) (*Checkpoint, bool) {
	if i < 0 || i >= len(h.checkpoints) {
		return nil, false
	}
	return h.checkpoints[i], true
}

// ByID finds a checkpoint by id.
func (h *History) ByID(id ID) (*Checkpoint, bool) {
	// ids are dense and start at 1
	i := int(id) - 1
	if i < 0 || i >= len(h.checkpoints) || h.checkpoints[i].id != id {
		return nil, false
	}
	return h.checkpoints[i], true
}

// Checkpoints returns all checkpoints in append order. The returned slice
// is a copy; the checkpoints are shared.
func (h *History) Checkpoints() []*Checkpoint {
	out := make([]*Checkpoint, len(h.checkpoints))
	copy(out, h.checkpoints)
	return out
}
