package render

// ColorMode selects when styled output is produced.
type ColorMode string

const (
	// ColorAuto colors output only when writing to a terminal.
	ColorAuto ColorMode = "auto"
	// ColorAlways always colors output.
	ColorAlways ColorMode = "always"
	// ColorNever never colors output.
	ColorNever ColorMode = "never"
)

// Theme holds the colors of each role, as lipgloss color strings
// ("#ff8800" or an ANSI number such as "9").
type Theme struct {
	Location string `toml:"location" yaml:"location"`
	Current  string `toml:"current" yaml:"current"`
	Added    string `toml:"added" yaml:"added"`
	Removed  string `toml:"removed" yaml:"removed"`
	Error    string `toml:"error" yaml:"error"`
	Muted    string `toml:"muted" yaml:"muted"`
}

// Options configures rendering.
type Options struct {
	// ContextLines is the number of source lines shown on each side of the
	// current line.
	ContextLines int
	Color        ColorMode
	// ShowTypes appends captured type names to values.
	ShowTypes bool
	// Unified renders diffs as unified diff text.
	Unified bool
	// BaseDir shortens file paths in headers.
	BaseDir string
	Theme   Theme
}

// DefaultTheme returns the built-in colors.
func DefaultTheme() Theme {
	return Theme{
		Location: "12",
		Current:  "11",
		Added:    "10",
		Removed:  "9",
		Error:    "9",
		Muted:    "8",
	}
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{
		ContextLines: 3,
		Color:        ColorAuto,
		Theme:        DefaultTheme(),
	}
}
