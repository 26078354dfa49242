package timeline

import (
	"github.com/dshills/backstep/internal/checkpoint"
	"github.com/dshills/backstep/internal/pretty"
)

// Source supplies checkpoints in append order. *checkpoint.History
// satisfies it.
type Source interface {
	Checkpoints() []*checkpoint.Checkpoint
}

// Entry is one observation of a variable.
type Entry struct {
	Checkpoint checkpoint.ID
	Repr       string
}

// Value resolves name against a checkpoint. The name may carry a path into
// the captured value, as in "user.tags[0]".
func Value(cp *checkpoint.Checkpoint, name string) (checkpoint.Value, bool) {
	if cp == nil {
		return checkpoint.Value{}, false
	}
	root, path := pretty.SplitPath(name)
	v, ok := cp.Local(root)
	if !ok {
		return checkpoint.Value{}, false
	}
	return v.Lookup(path)
}

// HistoryOf returns every observation of name among the checkpoints of call,
// oldest first. Checkpoints where the variable is absent are skipped.
func HistoryOf(src Source, name string, call checkpoint.CallID) []Entry {
	var entries []Entry
	for _, cp := range src.Checkpoints() {
		if cp.CallID() != call {
			continue
		}
		v, ok := Value(cp, name)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Checkpoint: cp.ID(), Repr: v.Repr()})
	}
	return entries
}

// Previous returns the most recent checkpoint before cp, in the same call,
// that captured name.
func Previous(src Source, name string, cp *checkpoint.Checkpoint) (*checkpoint.Checkpoint, bool) {
	all := src.Checkpoints()
	for i := len(all) - 1; i >= 0; i-- {
		prev := all[i]
		if prev.ID() >= cp.ID() || !prev.SameCall(cp) {
			continue
		}
		if _, ok := Value(prev, name); ok {
			return prev, true
		}
	}
	return nil, false
}
