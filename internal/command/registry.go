package command

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/kballard/go-shellquote"
)

// Registry maps aliases to commands.
type Registry struct {
	mu       sync.RWMutex
	aliases  map[string]*Command
	commands []*Command // registration order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		aliases: make(map[string]*Command),
	}
}

// NewBuiltinRegistry creates a registry holding the built-in commands.
func NewBuiltinRegistry() (*Registry, error) {
	r := NewRegistry()
	for _, cmd := range Builtins() {
		if err := r.Register(cmd); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register binds every alias of cmd. Registration is all or nothing: if any
// alias is already bound, nothing is added and a *DuplicateAliasError is
// returned. A kind can be registered once; later definitions of it fail with
// ErrKindRegistered. The registry keeps its own copy of cmd.
func (r *Registry) Register(cmd Command) error {
	if len(cmd.Aliases) == 0 {
		return ErrNoAliases
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(cmd.Aliases))
	for _, alias := range cmd.Aliases {
		if existing, ok := r.aliases[alias]; ok {
			return &DuplicateAliasError{Alias: alias, Existing: existing.Kind, Incoming: cmd.Kind}
		}
		if seen[alias] {
			return &DuplicateAliasError{Alias: alias, Existing: cmd.Kind, Incoming: cmd.Kind}
		}
		seen[alias] = true
	}
	for _, c := range r.commands {
		if c.Kind == cmd.Kind {
			return fmt.Errorf("%w: %s", ErrKindRegistered, cmd.Kind)
		}
	}

	owned := cmd.clone()
	r.commands = append(r.commands, owned)
	for _, alias := range owned.Aliases {
		r.aliases[alias] = owned
	}
	return nil
}

// Lookup returns a copy of the command bound to alias.
func (r *Registry) Lookup(alias string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.aliases[alias]
	if !ok {
		return nil, false
	}
	return cmd.clone(), true
}

// Commands returns copies of the registered commands in registration order.
func (r *Registry) Commands() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Command, len(r.commands))
	for i, c := range r.commands {
		out[i] = c.clone()
	}
	return out
}

// Resolve tokenizes raw with shell-style quoting and looks up the first field.
// The returned command is a copy.
//
// Errors:
//   - ErrEmptyInput if raw holds no fields
//   - ErrUnrecognized if the first field is not an alias, or the line cannot be
//     tokenized and does not start with one
//   - *SyntaxError if a known alias is followed by malformed quoting
func (r *Registry) Resolve(raw string) (*Command, []string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, ErrEmptyInput
	}

	// quoting only: | ; & < > are ordinary characters in arguments
	fields, err := shellquote.Split(raw)
	if err != nil {
		// Expressions like `s == "a` are not commands; only report a syntax
		// error when the line clearly starts with one.
		first := strings.Fields(raw)[0]
		if _, ok := r.Lookup(first); ok {
			return nil, nil, &SyntaxError{Input: raw, Err: err}
		}
		return nil, nil, ErrUnrecognized
	}
	if len(fields) == 0 {
		return nil, nil, ErrEmptyInput
	}

	cmd, ok := r.Lookup(fields[0])
	if !ok {
		return nil, nil, ErrUnrecognized
	}
	return cmd, fields[1:], nil
}

// ValidateArity checks args against the command's arity.
func ValidateArity(cmd *Command, args []string) error {
	if len(args) != cmd.Arity {
		return &ArityError{Command: cmd.Name(), Expected: cmd.Arity, Actual: len(args)}
	}
	return nil
}

func (c *Command) clone() *Command {
	out := *c
	out.Aliases = slices.Clone(c.Aliases)
	return &out
}
