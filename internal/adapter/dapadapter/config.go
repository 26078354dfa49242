package dapadapter

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/dshills/backstep/internal/dap"
	"github.com/dshills/backstep/internal/logging"
)

// Breakpoint is a line breakpoint set before the program starts.
type Breakpoint struct {
	File      string `toml:"file" yaml:"file"`
	Line      int    `toml:"line" yaml:"line"`
	Condition string `toml:"condition" yaml:"condition"`
}

// Config describes how to reach and drive the debug adapter.
type Config struct {
	// Command starts the adapter and talks to it over stdio, e.g.
	// ["dlv", "dap"].
	Command []string
	// Addr dials an adapter already listening. Used when Command is empty.
	Addr string

	// Request is "launch" or "attach".
	Request string
	// Arguments are passed to launch or attach unchanged.
	Arguments map[string]any

	Breakpoints []Breakpoint

	// Depth bounds how far structured variables are expanded.
	Depth int
	// MaxChildren bounds how many children are fetched per variable.
	MaxChildren int
	// Timeout bounds each request. Zero means no limit.
	Timeout time.Duration
	// Terminate kills the debuggee on detach.
	Terminate bool
}

// DefaultConfig returns a launch configuration with conservative bounds.
func DefaultConfig() Config {
	return Config{
		Request:     "launch",
		Arguments:   map[string]any{},
		Depth:       2,
		MaxChildren: 64,
		Timeout:     10 * time.Second,
		Terminate:   true,
	}
}

// Connect starts or dials the adapter described by cfg. The adapter's
// stderr goes to log at debug level.
func Connect(ctx context.Context, cfg Config, log *logging.Logger) (dap.Transport, error) {
	if len(cfg.Command) > 0 {
		cmd := exec.Command(cfg.Command[0], cfg.Command[1:]...)
		stderr, err := cmd.StderrPipe()
		if err != nil {
			return nil, err
		}
		tr, err := dap.Start(cmd)
		if err != nil {
			return nil, err
		}
		go logLines(stderr, log.WithComponent("dap-stderr"))
		return tr, nil
	}
	if cfg.Addr != "" {
		return dap.Dial(ctx, cfg.Addr)
	}
	return nil, ErrNoTarget
}

func logLines(r io.Reader, log *logging.Logger) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		log.Debug("%s", sc.Text())
	}
}
