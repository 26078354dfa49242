package adapter

import "sync"

// Primitive is a resume request.
type Primitive int

const (
	// None means nothing was requested.
	None Primitive = iota
	Next
	Step
	Return
	Continue
	Detach
)

// String returns the primitive name.
func (p Primitive) String() string {
	switch p {
	case None:
		return "none"
	case Next:
		return "next"
	case Step:
		return "step"
	case Return:
		return "return"
	case Continue:
		return "continue"
	case Detach:
		return "detach"
	default:
		return "unknown"
	}
}

// Pending holds the primitive requested during a pause. It is safe for
// concurrent use.
type Pending struct {
	mu sync.Mutex
	p  Primitive
}

// Set records p, replacing any earlier request.
func (r *Pending) Set(p Primitive) {
	r.mu.Lock()
	r.p = p
	r.mu.Unlock()
}

// Take returns the recorded primitive and clears it.
func (r *Pending) Take() Primitive {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.p
	r.p = None
	return p
}
