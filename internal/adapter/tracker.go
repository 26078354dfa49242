package adapter

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/backstep/internal/checkpoint"
)

type frame struct {
	name string
	id   checkpoint.CallID
}

// Tracker assigns call identities from successive call stacks.
//
// Stacks are given outermost first. Frames matching the previous stack by
// position and name keep their identity; the first differing frame and every
// frame inside it get fresh ones. A function that returns and is called again
// therefore gets a new identity as long as some pause observed the shorter
// stack in between.
type Tracker struct {
	mu     sync.Mutex
	frames []frame
	root   checkpoint.CallID
	newID  func() checkpoint.CallID
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	t := &Tracker{
		newID: func() checkpoint.CallID { return checkpoint.CallID(uuid.NewString()) },
	}
	t.root = t.newID()
	return t
}

// Identify records stack and returns the identity of its innermost frame.
// An empty stack maps to a fixed root identity.
func (t *Tracker) Identify(stack []string) checkpoint.CallID {
	t.mu.Lock()
	defer t.mu.Unlock()

	keep := 0
	for keep < len(stack) && keep < len(t.frames) && t.frames[keep].name == stack[keep] {
		keep++
	}

	t.frames = t.frames[:keep]
	for _, name := range stack[keep:] {
		t.frames = append(t.frames, frame{name: name, id: t.newID()})
	}

	if len(t.frames) == 0 {
		return t.root
	}
	return t.frames[len(t.frames)-1].id
}

// Depth returns the length of the last stack seen.
func (t *Tracker) Depth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.frames)
}

// Reset forgets every frame.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.frames = nil
	t.mu.Unlock()
}
