package config

import (
	"fmt"
	"strconv"

	"github.com/mattn/go-shellwords"
)

// EnvPrefix starts every environment variable read by Load.
const EnvPrefix = "BACKSTEP_"

type envBinding struct {
	name string
	set  func(c *Config, v string) error
}

// envBindings maps BACKSTEP_<name> to a setting.
var envBindings = []envBinding{
	{"LOG_LEVEL", text(func(c *Config) *string { return &c.Log.Level })},
	{"LOG_FILE", text(func(c *Config) *string { return &c.Log.File })},
	{"LOG_FORMAT", text(func(c *Config) *string { return &c.Log.Format })},
	{"UI", text(func(c *Config) *string { return &c.Render.UI })},
	{"COLOR", text(func(c *Config) *string { return &c.Render.Color })},
	{"CONTEXT_LINES", integer(func(c *Config) *int { return &c.Render.ContextLines })},
	{"SHOW_TYPES", boolean(func(c *Config) *bool { return &c.Render.ShowTypes })},
	{"UNIFIED", boolean(func(c *Config) *bool { return &c.Render.Unified })},
	{"EVAL_TIMEOUT", duration(func(c *Config) *Duration { return &c.Eval.Timeout })},
	{"EVAL_LIVE", boolean(func(c *Config) *bool { return &c.Eval.Live })},
	{"TRACE", text(func(c *Config) *string { return &c.Replay.Trace })},
	{"DAP_COMMAND", words(func(c *Config) *[]string { return &c.DAP.Command })},
	{"DAP_ADDR", text(func(c *Config) *string { return &c.DAP.Addr })},
	{"DAP_REQUEST", text(func(c *Config) *string { return &c.DAP.Request })},
	{"DAP_TIMEOUT", duration(func(c *Config) *Duration { return &c.DAP.Timeout })},
	{"METRICS_ADDR", text(func(c *Config) *string { return &c.Metrics.Addr })},
	{"RELOAD", boolean(func(c *Config) *bool { return &c.Reload })},
}

// applyEnv overrides settings from the environment. Empty values count as
// set.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		name := EnvPrefix + b.name
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := b.set(c, v); err != nil {
			return &ValidationError{Field: name, Value: v, Message: err.Error()}
		}
	}
	return nil
}

func text(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func integer(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("not an integer")
		}
		*field(c) = n
		return nil
	}
}

func boolean(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("not a boolean")
		}
		*field(c) = b
		return nil
	}
}

func duration(field func(*Config) *Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		return field(c).UnmarshalText([]byte(v))
	}
}

// words splits a command line the way a shell would.
func words(field func(*Config) *[]string) func(*Config, string) error {
	return func(c *Config, v string) error {
		args, err := shellwords.Parse(v)
		if err != nil {
			return err
		}
		*field(c) = args
		return nil
	}
}
