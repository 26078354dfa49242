package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/dshills/backstep/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "backstep dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestCommandsCommand(t *testing.T) {
	out, err := execute(t, "commands", "--color", "never")
	if err != nil {
		t.Fatalf("commands: %v", err)
	}
	for _, want := range []string{"step/s", "pretty/pp <expr>", "quit/q"} {
		if !strings.Contains(out, want) {
			t.Errorf("commands output missing %q:\n%s", want, out)
		}
	}
}

func TestInvalidFlagValue(t *testing.T) {
	_, err := execute(t, "commands", "--color", "rainbow")
	if err == nil || !strings.Contains(err.Error(), "render.color") {
		t.Errorf("err = %v, want render.color validation error", err)
	}
}

func TestExplicitConfigMissing(t *testing.T) {
	_, err := execute(t, "commands", "--config", filepath.Join(t.TempDir(), "none.toml"))
	if err == nil {
		t.Fatal("missing explicit config accepted")
	}
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	trace := filepath.Join(dir, "trace.yaml")
	data := "events:\n  - {file: main.go, line: 1, function: main, locals: {x: 1}}\n"
	if err := os.WriteFile(trace, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	// stdin is not a terminal under go test; an empty stdin quits at once
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	w.Close()
	old := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = old; r.Close() }()

	if _, err := execute(t, "replay", trace, "--color", "never", "--log-level", "error"); err != nil {
		t.Fatalf("replay: %v", err)
	}
}

func TestFlagOverrides(t *testing.T) {
	var flags globalFlags
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	flags.register(cmd)
	cmd.SetArgs([]string{"--ui", "screen", "--metrics-addr", ":9464"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Render.Color = "never"
	flags.overrides(cmd, func(c *config.Config) { c.Reload = true })(cfg)

	if cfg.Render.UI != "screen" || cfg.Metrics.Addr != ":9464" || !cfg.Reload {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Render.Color != "never" {
		t.Error("unset flag overrode the configuration")
	}
}

func TestParseBreakpoint(t *testing.T) {
	wd, _ := os.Getwd()
	tests := []struct {
		text    string
		file    string
		line    int
		cond    string
		wantErr bool
	}{
		{text: "/src/main.go:12", file: "/src/main.go", line: 12},
		{text: "main.go:3", file: filepath.Join(wd, "main.go"), line: 3},
		{text: "/a.go:7:i > 3", file: "/a.go", line: 7, cond: "i > 3"},
		{text: "main.go", wantErr: true},
		{text: ":4", wantErr: true},
		{text: "a.go:zero", wantErr: true},
		{text: "a.go:0", wantErr: true},
	}
	for _, tt := range tests {
		bp, err := parseBreakpoint(tt.text)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBreakpoint(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if bp.File != tt.file || bp.Line != tt.line || bp.Condition != tt.cond {
			t.Errorf("parseBreakpoint(%q) = %+v", tt.text, bp)
		}
	}
}
