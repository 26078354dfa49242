package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/backstep/internal/config"
	"github.com/dshills/backstep/internal/logging"
)

// openLog builds the diagnostic logger. Records never share the operator's
// terminal with the screen UI: without a log file they are discarded there.
func openLog(cfg config.LogConfig, ui string) (*logging.Logger, io.Closer, error) {
	level, ok := logging.ParseLevel(cfg.Level)
	if !ok {
		return nil, nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}

	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = cfg.Format

	var closer io.Closer
	switch {
	case cfg.File != "":
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		lc.Output = f
		closer = f
	case ui == "screen":
		lc.Output = io.Discard
	default:
		lc.Output = os.Stderr
	}
	return logging.New(lc), closer, nil
}
