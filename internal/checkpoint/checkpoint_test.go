package checkpoint

import (
	"reflect"
	"testing"
	"time"
)

func TestLocationShort(t *testing.T) {
	loc := Location{File: "/work/app/pkg/run.go", Line: 12, Function: "pkg.Run"}

	tests := []struct {
		base string
		want string
	}{
		{"", "/work/app/pkg/run.go:12"},
		{"/work/app", "pkg/run.go:12"},
		{"/elsewhere", "run.go:12"},
	}

	for _, tt := range tests {
		if got := loc.Short(tt.base); got != tt.want {
			t.Errorf("Short(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}

	if loc.String() != "/work/app/pkg/run.go:12" {
		t.Errorf("String() = %q", loc.String())
	}
	if loc.IsZero() || !(Location{}).IsZero() {
		t.Error("IsZero() mismatch")
	}
}

func TestValue(t *testing.T) {
	v, err := NewValue("map", map[string]any{"b": []int{1, 2}, "a": "x"})
	if err != nil {
		t.Fatalf("NewValue: %v", err)
	}

	want := "{\n  \"a\": \"x\",\n  \"b\": [\n    1,\n    2\n  ]\n}"
	if v.Repr() != want {
		t.Errorf("Repr() = %q, want %q", v.Repr(), want)
	}
	if v.Type() != "map" || !v.Structured() {
		t.Errorf("Type() = %q, Structured() = %v", v.Type(), v.Structured())
	}

	sub, ok := v.Lookup("b.1")
	if !ok || sub.Repr() != "2" {
		t.Errorf("Lookup(b.1) = %q, %v", sub.Repr(), ok)
	}
	if _, ok := v.Lookup("c"); ok {
		t.Error("Lookup(c) should fail")
	}

	data := v.Data()
	data[0] = 'X'
	if v.Data()[0] == 'X' {
		t.Error("Data() exposed internal bytes")
	}
}

func TestTextValue(t *testing.T) {
	v := TextValue("*os.File", "&{fd:3}")
	if v.Structured() || v.Data() != nil {
		t.Error("text value should not be structured")
	}
	if _, ok := v.Lookup("fd"); ok {
		t.Error("Lookup into text value should fail")
	}
	if same, ok := v.Lookup(""); !ok || same.Repr() != "&{fd:3}" {
		t.Errorf("Lookup(\"\") = %q, %v", same.Repr(), ok)
	}
}

func TestCheckpointIsolatedFromSnapshot(t *testing.T) {
	locals := map[string]Value{"x": TextValue("int", "1")}
	args := []string{"x"}
	cp := newCheckpoint(1, Snapshot{Locals: locals, Args: args, CallID: "a"}, time.Time{})

	locals["x"] = TextValue("int", "2")
	locals["y"] = TextValue("int", "3")
	args[0] = "y"

	if v, _ := cp.Local("x"); v.Repr() != "1" {
		t.Errorf("Local(x) = %q, want 1", v.Repr())
	}
	if _, ok := cp.Local("y"); ok {
		t.Error("checkpoint picked up a later local")
	}
	if got := cp.Args(); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("Args() = %v", got)
	}
}

func TestCheckpointNamesSorted(t *testing.T) {
	cp := newCheckpoint(1, Snapshot{Locals: map[string]Value{
		"zeta":  TextValue("", "1"),
		"alpha": TextValue("", "2"),
		"mid":   TextValue("", "3"),
	}}, time.Time{})

	want := []string{"alpha", "mid", "zeta"}
	if got := cp.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestSameCall(t *testing.T) {
	a := newCheckpoint(1, Snapshot{CallID: "a"}, time.Time{})
	b := newCheckpoint(2, Snapshot{CallID: "a"}, time.Time{})
	c := newCheckpoint(3, Snapshot{CallID: "c"}, time.Time{})

	if !a.SameCall(b) {
		t.Error("SameCall() = false for equal call ids")
	}
	if a.SameCall(c) || a.SameCall(nil) {
		t.Error("SameCall() = true for different calls")
	}
	if ID(42).String() != "42" {
		t.Errorf("ID.String() = %q", ID(42).String())
	}
}
