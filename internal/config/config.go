package config

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/backstep/internal/adapter/dapadapter"
	"github.com/dshills/backstep/internal/logging"
	"github.com/dshills/backstep/internal/render"
)

// Config is the complete set of settings.
type Config struct {
	Log     LogConfig     `toml:"log" yaml:"log"`
	Render  RenderConfig  `toml:"render" yaml:"render"`
	Session SessionConfig `toml:"session" yaml:"session"`
	Eval    EvalConfig    `toml:"eval" yaml:"eval"`
	Replay  ReplayConfig  `toml:"replay" yaml:"replay"`
	DAP     DAPConfig     `toml:"dap" yaml:"dap"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics"`

	// Reload follows the config file and applies presentation changes
	// while a session runs.
	Reload bool `toml:"reload" yaml:"reload"`

	path string
}

// LogConfig controls the diagnostic log. The log never goes to the
// prompt stream.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
	// File receives the log. Empty means stderr.
	File string `toml:"file" yaml:"file"`
	// Format is text or json.
	Format string `toml:"format" yaml:"format"`
}

// RenderConfig controls how payloads are displayed.
type RenderConfig struct {
	// UI is plain (line-oriented) or screen (full-screen terminal).
	UI           string       `toml:"ui" yaml:"ui"`
	Color        string       `toml:"color" yaml:"color"`
	ContextLines int          `toml:"context_lines" yaml:"context_lines"`
	ShowTypes    bool         `toml:"show_types" yaml:"show_types"`
	Unified      bool         `toml:"unified" yaml:"unified"`
	SourceCache  int          `toml:"source_cache" yaml:"source_cache"`
	Theme        render.Theme `toml:"theme" yaml:"theme"`
}

// Options converts the section into renderer options.
func (r RenderConfig) Options() render.Options {
	return render.Options{
		ContextLines: r.ContextLines,
		Color:        render.ColorMode(r.Color),
		ShowTypes:    r.ShowTypes,
		Unified:      r.Unified,
		Theme:        r.Theme,
	}
}

// SessionConfig seeds the interactive session.
type SessionConfig struct {
	// Watch lists variables watched from the first pause.
	Watch []string `toml:"watch" yaml:"watch"`
	// BaseDir shortens displayed paths. Empty means the working directory.
	BaseDir string `toml:"base_dir" yaml:"base_dir"`
}

// EvalConfig controls expression evaluation.
type EvalConfig struct {
	Timeout Duration `toml:"timeout" yaml:"timeout"`
	// Live sends expressions for the latest checkpoint to the debug adapter
	// when one is attached.
	Live bool `toml:"live" yaml:"live"`
}

// ReplayConfig controls the trace replay adapter.
type ReplayConfig struct {
	// Trace is used when no trace file is given on the command line.
	Trace string `toml:"trace" yaml:"trace"`
}

// DAPConfig describes the debug adapter to drive.
type DAPConfig struct {
	Command     []string                `toml:"command" yaml:"command"`
	Addr        string                  `toml:"addr" yaml:"addr"`
	Request     string                  `toml:"request" yaml:"request"`
	Args        map[string]any          `toml:"args" yaml:"args"`
	Breakpoints []dapadapter.Breakpoint `toml:"breakpoints" yaml:"breakpoints"`
	Depth       int                     `toml:"depth" yaml:"depth"`
	MaxChildren int                     `toml:"max_children" yaml:"max_children"`
	Timeout     Duration                `toml:"timeout" yaml:"timeout"`
	Terminate   bool                    `toml:"terminate" yaml:"terminate"`
}

// Adapter converts the section into adapter settings.
func (d DAPConfig) Adapter() dapadapter.Config {
	args := make(map[string]any, len(d.Args))
	for k, v := range d.Args {
		args[k] = v
	}
	return dapadapter.Config{
		Command:     append([]string(nil), d.Command...),
		Addr:        d.Addr,
		Request:     d.Request,
		Arguments:   args,
		Breakpoints: append([]dapadapter.Breakpoint(nil), d.Breakpoints...),
		Depth:       d.Depth,
		MaxChildren: d.MaxChildren,
		Timeout:     d.Timeout.Std(),
		Terminate:   d.Terminate,
	}
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr serves /metrics when set, e.g. "localhost:9464".
	Addr string `toml:"addr" yaml:"addr"`
	// Runtime adds Go runtime and process collectors.
	Runtime bool `toml:"runtime" yaml:"runtime"`
}

// Default returns the built-in settings.
func Default() *Config {
	ro := render.DefaultOptions()
	dc := dapadapter.DefaultConfig()
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Render: RenderConfig{
			UI:           "plain",
			Color:        string(ro.Color),
			ContextLines: ro.ContextLines,
			SourceCache:  render.DefaultSourceCacheSize,
			Theme:        ro.Theme,
		},
		Eval: EvalConfig{
			Timeout: Duration(2 * time.Second),
			Live:    true,
		},
		DAP: DAPConfig{
			Request:     dc.Request,
			Args:        map[string]any{},
			Depth:       dc.Depth,
			MaxChildren: dc.MaxChildren,
			Timeout:     Duration(dc.Timeout),
			Terminate:   dc.Terminate,
		},
	}
}

// Path returns the file the configuration was read from, if any.
func (c *Config) Path() string {
	return c.path
}

// Validate checks enumerations and ranges. All problems are reported; each
// is a *ValidationError.
func (c *Config) Validate() error {
	var errs []error
	bad := func(field string, value any, msg string) {
		errs = append(errs, &ValidationError{Field: field, Value: value, Message: msg})
	}

	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		bad("log.level", c.Log.Level, "want debug, info, warn or error")
	}
	if !oneOf(c.Log.Format, "text", "json") {
		bad("log.format", c.Log.Format, "want text or json")
	}

	if !oneOf(c.Render.UI, "plain", "screen") {
		bad("render.ui", c.Render.UI, "want plain or screen")
	}
	if !oneOf(c.Render.Color, string(render.ColorAuto), string(render.ColorAlways), string(render.ColorNever)) {
		bad("render.color", c.Render.Color, "want auto, always or never")
	}
	if c.Render.ContextLines < 0 {
		bad("render.context_lines", c.Render.ContextLines, "must not be negative")
	}
	if c.Render.SourceCache <= 0 {
		bad("render.source_cache", c.Render.SourceCache, "must be positive")
	}

	if c.Eval.Timeout <= 0 {
		bad("eval.timeout", c.Eval.Timeout, "must be positive")
	}

	if !oneOf(c.DAP.Request, "launch", "attach") {
		bad("dap.request", c.DAP.Request, "want launch or attach")
	}
	if c.DAP.Depth < 0 {
		bad("dap.depth", c.DAP.Depth, "must not be negative")
	}
	if c.DAP.MaxChildren <= 0 {
		bad("dap.max_children", c.DAP.MaxChildren, "must be positive")
	}
	if c.DAP.Timeout < 0 {
		bad("dap.timeout", c.DAP.Timeout, "must not be negative")
	}
	for i, bp := range c.DAP.Breakpoints {
		if bp.File == "" || bp.Line <= 0 {
			bad(fmt.Sprintf("dap.breakpoints[%d]", i), fmt.Sprintf("%s:%d", bp.File, bp.Line), "need a file and a positive line")
		}
	}

	return errors.Join(errs...)
}

func oneOf(s string, allowed ...string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// Duration is a time.Duration written as a string such as "1.5s".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String formats the duration like time.Duration.
func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}
