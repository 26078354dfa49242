package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dshills/backstep/internal/checkpoint"
)

// Trace is a recorded run.
type Trace struct {
	// Program names the recorded program.
	Program string `yaml:"program" json:"program"`

	// Exit is reported when the replay runs past the last event.
	Exit string `yaml:"exit" json:"exit"`

	Events []Event `yaml:"events" json:"events"`
}

// Event is one point where the program could pause.
type Event struct {
	File     string `yaml:"file" json:"file"`
	Line     int    `yaml:"line" json:"line"`
	Function string `yaml:"function" json:"function"`

	// Stack lists function names, outermost first. When empty the event is
	// treated as a single frame named Function.
	Stack []string `yaml:"stack" json:"stack"`

	// Call overrides the derived call identity.
	Call string `yaml:"call" json:"call"`

	Args   []string          `yaml:"args" json:"args"`
	Locals map[string]any    `yaml:"locals" json:"locals"`
	Types  map[string]string `yaml:"types" json:"types"`

	Breakpoint bool   `yaml:"breakpoint" json:"breakpoint"`
	Reason     string `yaml:"reason" json:"reason"`
}

// frames returns the stack with the single-frame default applied.
func (e *Event) frames() []string {
	if len(e.Stack) == 0 && e.Function != "" {
		return []string{e.Function}
	}
	return e.Stack
}

func (e *Event) depth() int {
	return len(e.frames())
}

// Load reads a trace file. Relative event paths are resolved against the
// trace file's directory.
func Load(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	tr, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range tr.Events {
		if f := tr.Events[i].File; !filepath.IsAbs(f) {
			tr.Events[i].File = filepath.Join(dir, f)
		}
	}
	return tr, nil
}

// Parse decodes a YAML or JSON trace.
func Parse(data []byte) (*Trace, error) {
	var tr Trace
	if err := yaml.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("replay: parse trace: %w", err)
	}
	if len(tr.Events) == 0 {
		return nil, ErrEmptyTrace
	}
	for i := range tr.Events {
		ev := &tr.Events[i]
		switch {
		case ev.File == "":
			return nil, fmt.Errorf("%w %d: missing file", ErrInvalidEvent, i)
		case ev.Line <= 0:
			return nil, fmt.Errorf("%w %d: line must be positive", ErrInvalidEvent, i)
		}
		for name, v := range ev.Locals {
			ev.Locals[name] = normalize(v)
		}
	}
	return &tr, nil
}

// normalize converts YAML mappings with non-string keys so values encode
// as JSON.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = normalize(e)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range v {
			v[i] = normalize(e)
		}
		return v
	default:
		return v
	}
}

// typeName names the type of a decoded value.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int, int64, uint64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// snapshot copies the event's data into a snapshot.
func (e *Event) snapshot(call checkpoint.CallID, reason string) (checkpoint.Snapshot, error) {
	names := make([]string, 0, len(e.Locals))
	for name := range e.Locals {
		names = append(names, name)
	}
	sort.Strings(names)

	locals := make(map[string]checkpoint.Value, len(names))
	for _, name := range names {
		v := e.Locals[name]
		typ := e.Types[name]
		if typ == "" {
			typ = typeName(v)
		}
		val, err := checkpoint.NewValue(typ, v)
		if err != nil {
			return checkpoint.Snapshot{}, fmt.Errorf("replay: local %s: %w", name, err)
		}
		locals[name] = val
	}

	if e.Reason != "" {
		reason = e.Reason
	}
	return checkpoint.Snapshot{
		Location: checkpoint.Location{File: e.File, Line: e.Line, Function: e.Function},
		Locals:   locals,
		Args:     append([]string(nil), e.Args...),
		CallID:   call,
		Reason:   reason,
	}, nil
}
