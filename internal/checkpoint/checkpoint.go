package checkpoint

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/backstep/internal/pretty"
)

// ID identifies a checkpoint. IDs increase monotonically in append order.
type ID uint64

// String returns the decimal form of the id.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// CallID groups checkpoints produced by the same function invocation.
type CallID string

// Location is a position in the program's source.
type Location struct {
	// File is the source file path.
	File string

	// Line is the 1-based line number.
	Line int

	// Function is the enclosing function name.
	Function string
}

// String returns "file:line".
func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Short returns the location with the file path made relative to base
// when possible, otherwise reduced to its base name.
func (l Location) Short(base string) string {
	file := l.File
	if base != "" {
		if rel, err := filepath.Rel(base, file); err == nil && !strings.HasPrefix(rel, "..") {
			file = rel
		} else {
			file = filepath.Base(file)
		}
	}
	return fmt.Sprintf("%s:%d", file, l.Line)
}

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0 && l.Function == ""
}

// Value is the stored representation of one variable.
type Value struct {
	typ  string
	data json.RawMessage
	repr string
}

// NewValue captures v by encoding it to canonical JSON.
func NewValue(typ string, v any) (Value, error) {
	data, err := pretty.Encode(v)
	if err != nil {
		return Value{}, err
	}
	return JSONValue(typ, data), nil
}

// JSONValue wraps an already encoded JSON document. The bytes are copied.
func JSONValue(typ string, data []byte) Value {
	cp := make(json.RawMessage, len(data))
	copy(cp, data)
	return Value{typ: typ, data: cp, repr: pretty.JSON(cp)}
}

// TextValue stores a value that only has a display form.
func TextValue(typ, text string) Value {
	return Value{typ: typ, repr: text}
}

// Type returns the type name reported by the adapter, if any.
func (v Value) Type() string { return v.typ }

// Repr returns the multi-line representation. It is stable for a given value.
func (v Value) Repr() string { return v.repr }

// Data returns a copy of the JSON encoding, or nil for text-only values.
func (v Value) Data() json.RawMessage {
	if v.data == nil {
		return nil
	}
	cp := make(json.RawMessage, len(v.data))
	copy(cp, v.data)
	return cp
}

// Structured reports whether the value carries a JSON encoding.
func (v Value) Structured() bool { return len(v.data) > 0 }

// Lookup resolves a path inside a structured value.
func (v Value) Lookup(path string) (Value, bool) {
	if path == "" {
		return v, true
	}
	if !v.Structured() {
		return Value{}, false
	}
	raw, ok := pretty.Lookup(v.data, path)
	if !ok {
		return Value{}, false
	}
	return JSONValue("", raw), true
}

// Snapshot is what an instrumentation adapter hands over at a pause.
type Snapshot struct {
	Location Location
	Locals   map[string]Value
	// Args lists which locals are function arguments, in declaration order.
	Args   []string
	CallID CallID
	// Reason describes why execution paused ("step", "breakpoint", ...).
	Reason string
}

// Checkpoint is an immutable record of one pause point.
type Checkpoint struct {
	id        ID
	location  Location
	locals    map[string]Value
	args      []string
	callID    CallID
	reason    string
	timestamp time.Time
}

func newCheckpoint(id ID, s Snapshot, at time.Time) *Checkpoint {
	locals := make(map[string]Value, len(s.Locals))
	for k, v := range s.Locals {
		locals[k] = v
	}
	args := make([]string, len(s.Args))
	copy(args, s.Args)

	return &Checkpoint{
		id:        id,
		location:  s.Location,
		locals:    locals,
		args:      args,
		callID:    s.CallID,
		reason:    s.Reason,
		timestamp: at,
	}
}

// ID returns the checkpoint id.
func (c *Checkpoint) ID() ID { return c.id }

// Location returns where execution paused.
func (c *Checkpoint) Location() Location { return c.location }

// CallID returns the call identity the checkpoint belongs to.
func (c *Checkpoint) CallID() CallID { return c.callID }

// Reason returns why execution paused.
func (c *Checkpoint) Reason() string { return c.reason }

// Timestamp returns when the checkpoint was appended.
func (c *Checkpoint) Timestamp() time.Time { return c.timestamp }

// Local returns the captured value of a variable.
func (c *Checkpoint) Local(name string) (Value, bool) {
	v, ok := c.locals[name]
	return v, ok
}

// Names returns the captured variable names in sorted order.
func (c *Checkpoint) Names() []string {
	names := make([]string, 0, len(c.locals))
	for name := range c.locals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Args returns the argument names in declaration order.
func (c *Checkpoint) Args() []string {
	args := make([]string, len(c.args))
	copy(args, c.args)
	return args
}

// SameCall reports whether both checkpoints belong to the same invocation.
func (c *Checkpoint) SameCall(other *Checkpoint) bool {
	return other != nil && c.callID == other.callID
}
