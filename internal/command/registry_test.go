package command

import (
	"errors"
	"reflect"
	"testing"
)

func newBuiltins(t *testing.T) *Registry {
	t.Helper()
	r, err := NewBuiltinRegistry()
	if err != nil {
		t.Fatalf("NewBuiltinRegistry: %v", err)
	}
	return r
}

func TestBuiltinTable(t *testing.T) {
	r := newBuiltins(t)

	tests := []struct {
		alias  string
		kind   Kind
		arity  int
		effect Effect
	}{
		{"line", KindLine, 0, Stay},
		{"l", KindLine, 0, Stay},
		{"a", KindArgs, 0, Stay},
		{"pp", KindPretty, 1, Stay},
		{"w", KindWatch, 1, Stay},
		{"d", KindDiff, 1, Stay},
		{"h", KindHistory, 1, Stay},
		{"b", KindBack, 0, Stay},
		{"f", KindForward, 0, Stay},
		{"n", KindNext, 0, Proceed},
		{"s", KindStep, 0, Proceed},
		{"r", KindReturn, 0, Proceed},
		{"c", KindContinue, 0, Proceed},
		{"q", KindQuit, 0, Proceed},
		{"lo", KindLocals, 0, Stay},
		{"?", KindHelp, 0, Stay},
	}

	for _, tt := range tests {
		cmd, ok := r.Lookup(tt.alias)
		if !ok {
			t.Errorf("Lookup(%q) not found", tt.alias)
			continue
		}
		if cmd.Kind != tt.kind || cmd.Arity != tt.arity || cmd.Effect != tt.effect {
			t.Errorf("Lookup(%q) = %s/%d/%s, want %s/%d/%s", tt.alias,
				cmd.Kind, cmd.Arity, cmd.Effect, tt.kind, tt.arity, tt.effect)
		}
	}

	quit, _ := r.Lookup("quit")
	if !quit.Terminal {
		t.Error("quit should be terminal")
	}
	if len(r.Commands()) != len(Builtins()) {
		t.Errorf("Commands() = %d, want %d", len(r.Commands()), len(Builtins()))
	}
}

func TestRegisterDuplicateAlias(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Command{Kind: KindPretty, Aliases: []string{"pretty", "p"}}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	err := r.Register(Command{Kind: KindStep, Aliases: []string{"step", "p"}})
	var dup *DuplicateAliasError
	if !errors.As(err, &dup) {
		t.Fatalf("Register() error = %v, want *DuplicateAliasError", err)
	}
	if dup.Alias != "p" || dup.Existing != KindPretty || dup.Incoming != KindStep {
		t.Errorf("DuplicateAliasError = %+v", dup)
	}
	if !errors.Is(err, ErrDuplicateAlias) {
		t.Error("errors.Is(err, ErrDuplicateAlias) = false")
	}

	// all or nothing
	if _, ok := r.Lookup("step"); ok {
		t.Error("failed registration left alias \"step\" bound")
	}
}

func TestRegisterDisjoint(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Command{Kind: KindNext, Aliases: []string{"next", "n"}}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(Command{Kind: KindStep, Aliases: []string{"step", "s"}}); err != nil {
		t.Fatal(err)
	}

	for alias, kind := range map[string]Kind{"n": KindNext, "next": KindNext, "s": KindStep, "step": KindStep} {
		cmd, _, err := r.Resolve(alias)
		if err != nil || cmd.Kind != kind {
			t.Errorf("Resolve(%q) = %v, %v; want %s", alias, cmd, err, kind)
		}
	}
}

func TestRegisterRepeatedAliasInOneCommand(t *testing.T) {
	r := NewRegistry()
	err := r.Register(Command{Kind: KindLine, Aliases: []string{"l", "l"}})
	if !errors.Is(err, ErrDuplicateAlias) {
		t.Errorf("Register() error = %v, want ErrDuplicateAlias", err)
	}
}

func TestRegisterSameKindRejected(t *testing.T) {
	r := newBuiltins(t)

	err := r.Register(Command{Kind: KindNext, Aliases: []string{"nn"}, Arity: 2, Effect: Stay})
	if !errors.Is(err, ErrKindRegistered) {
		t.Fatalf("Register() error = %v, want ErrKindRegistered", err)
	}
	if _, ok := r.Lookup("nn"); ok {
		t.Error("rejected registration left alias \"nn\" bound")
	}

	// an alias of the same kind is still a duplicate alias
	err = r.Register(Command{Kind: KindLine, Aliases: []string{"l"}})
	if !errors.Is(err, ErrDuplicateAlias) {
		t.Errorf("Register() error = %v, want ErrDuplicateAlias", err)
	}
}

func TestRegistryHandsOutCopies(t *testing.T) {
	r := newBuiltins(t)

	cmd, _ := r.Lookup("pp")
	cmd.Arity = 3
	cmd.Aliases[0] = "changed"

	resolved, _, err := r.Resolve("pp x")
	if err != nil {
		t.Fatal(err)
	}
	resolved.Effect = Proceed

	for _, c := range r.Commands() {
		if c.Kind != KindPretty {
			continue
		}
		if c.Arity != 1 || c.Effect != Stay || c.Name() != "pretty" {
			t.Errorf("registered pretty changed through a returned copy: %+v", c)
		}
		c.Arity = 5
	}
	if again, _ := r.Lookup("pretty"); again.Arity != 1 {
		t.Errorf("Commands() returned the registry's own command, arity = %d", again.Arity)
	}
}

func TestRegisterNoAliases(t *testing.T) {
	if err := NewRegistry().Register(Command{Kind: KindHelp}); !errors.Is(err, ErrNoAliases) {
		t.Errorf("Register() error = %v, want ErrNoAliases", err)
	}
}

func TestResolve(t *testing.T) {
	r := newBuiltins(t)

	tests := []struct {
		input string
		kind  Kind
		args  []string
		err   error
	}{
		{"pp x", KindPretty, []string{"x"}, nil},
		{"pp", KindPretty, []string{}, nil},
		{"  n  ", KindNext, []string{}, nil},
		{`h "total count"`, KindHistory, []string{"total count"}, nil},
		{`pp 'a b' c`, KindPretty, []string{"a b", "c"}, nil},
		{"h x & y", KindHistory, []string{"x", "&", "y"}, nil},
		{"pp a|b", KindPretty, []string{"a|b"}, nil},
		{"pp a;b", KindPretty, []string{"a;b"}, nil},
		{"pp users.#(age>40)", KindPretty, []string{"users.#(age>40)"}, nil},
		{"frobnicate", 0, nil, ErrUnrecognized},
		{"x + 1", 0, nil, ErrUnrecognized},
		{"N", 0, nil, ErrUnrecognized},
		{`name == "bob`, 0, nil, ErrUnrecognized},
		{"", 0, nil, ErrEmptyInput},
		{"   ", 0, nil, ErrEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, args, err := r.Resolve(tt.input)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("Resolve(%q) error = %v, want %v", tt.input, err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.input, err)
			}
			if cmd.Kind != tt.kind {
				t.Errorf("Resolve(%q) kind = %s, want %s", tt.input, cmd.Kind, tt.kind)
			}
			if len(args) != len(tt.args) || (len(args) > 0 && !reflect.DeepEqual(args, tt.args)) {
				t.Errorf("Resolve(%q) args = %q, want %q", tt.input, args, tt.args)
			}
		})
	}
}

func TestResolveSyntaxError(t *testing.T) {
	r := newBuiltins(t)

	_, _, err := r.Resolve(`pp "unterminated`)
	var syn *SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("Resolve() error = %v, want *SyntaxError", err)
	}
	if syn.Unwrap() == nil {
		t.Error("SyntaxError should wrap the tokenizer error")
	}
}

func TestResolveKeepsShellOperators(t *testing.T) {
	r := newBuiltins(t)

	cmd, args, err := r.Resolve("h x & y")
	if err != nil {
		t.Fatal(err)
	}
	var ae *ArityError
	if err := ValidateArity(cmd, args); !errors.As(err, &ae) || ae.Expected != 1 || ae.Actual != 3 {
		t.Errorf("ValidateArity(%q) = %v, want expected 1 actual 3", args, err)
	}
}

func TestValidateArity(t *testing.T) {
	r := newBuiltins(t)

	cmd, args, err := r.Resolve("pp")
	if err != nil {
		t.Fatal(err)
	}

	err = ValidateArity(cmd, args)
	var arity *ArityError
	if !errors.As(err, &arity) {
		t.Fatalf("ValidateArity() error = %v, want *ArityError", err)
	}
	if arity.Expected != 1 || arity.Actual != 0 {
		t.Errorf("ArityError = {expected %d, actual %d}, want {1, 0}", arity.Expected, arity.Actual)
	}
	if arity.Error() != "pretty: expected 1 argument, got 0" {
		t.Errorf("Error() = %q", arity.Error())
	}
	if !errors.Is(err, ErrArity) {
		t.Error("errors.Is(err, ErrArity) = false")
	}

	cmd, args, _ = r.Resolve("pp x")
	if err := ValidateArity(cmd, args); err != nil {
		t.Errorf("ValidateArity(pp x) = %v", err)
	}

	cmd, args, _ = r.Resolve("n extra")
	if err := ValidateArity(cmd, args); err == nil || err.Error() != "next: expected 0 arguments, got 1" {
		t.Errorf("ValidateArity(n extra) = %v", err)
	}
}

func TestStrings(t *testing.T) {
	if Stay.String() != "stay" || Proceed.String() != "proceed" || Effect(9).String() != "unknown" {
		t.Error("Effect.String() mismatch")
	}
	if KindHistory.String() != "history" || Kind(0).String() != "unknown" {
		t.Error("Kind.String() mismatch")
	}
	for _, cmd := range Builtins() {
		if cmd.Name() != cmd.Kind.String() {
			t.Errorf("canonical alias %q does not match kind %s", cmd.Name(), cmd.Kind)
		}
	}
}
