package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// defaultNames are tried in order inside the user config directory.
var defaultNames = []string{"config.toml", "config.yaml", "config.yml"}

// DefaultPath returns the first existing config file in the user config
// directory (for example ~/.config/backstep/config.toml), or "" when there
// is none.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range defaultNames {
		p := filepath.Join(dir, "backstep", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load builds the configuration from defaults, the file at path and the
// environment, then validates it. An empty path looks for a default file;
// a missing default file is not an error, a missing explicit one is.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.ReadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile decodes the file at path over the current settings. Settings
// absent from the file keep their values.
func (c *Config) ReadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := decode(path, data, c); err != nil {
		return err
	}
	c.path = path
	return nil
}

func decode(path string, data []byte, c *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			return tomlError(path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return yamlError(path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

func tomlError(path string, err error) error {
	pe := &ParseError{Path: path, Message: err.Error(), Err: err}
	var strict *toml.StrictMissingError
	var derr *toml.DecodeError
	switch {
	case errors.As(err, &strict) && len(strict.Errors) > 0:
		first := &strict.Errors[0]
		pe.Line, pe.Column = first.Position()
		pe.Message = "unknown key " + strings.Join(first.Key(), ".")
	case errors.As(err, &derr):
		pe.Line, pe.Column = derr.Position()
		pe.Message = derr.Error()
	}
	return pe
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func yamlError(path string, err error) error {
	pe := &ParseError{Path: path, Message: err.Error(), Err: err}
	var terr *yaml.TypeError
	if errors.As(err, &terr) && len(terr.Errors) > 0 {
		pe.Message = terr.Errors[0]
	}
	if m := yamlLine.FindStringSubmatch(pe.Message); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	return pe
}
