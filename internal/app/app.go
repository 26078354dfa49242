package app

import (
	"io"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/backstep/internal/command"
	"github.com/dshills/backstep/internal/config"
	"github.com/dshills/backstep/internal/input"
	"github.com/dshills/backstep/internal/logging"
	"github.com/dshills/backstep/internal/metrics"
	"github.com/dshills/backstep/internal/render"
	"github.com/dshills/backstep/internal/session"
)

// Options configures the application.
type Options struct {
	// Config is the loaded configuration, flags already applied. Defaults
	// are used when nil.
	Config *config.Config

	// Overrides is reapplied to every reloaded configuration so that
	// command line flags keep precedence over the file.
	Overrides func(*config.Config)

	// In and Out are the operator's streams. They default to stdin and
	// stdout.
	In  io.Reader
	Out io.Writer

	// Screen is used for the screen UI instead of the real terminal.
	Screen tcell.Screen

	// Logger replaces the logger built from the configuration.
	Logger *logging.Logger
}

// renderer is what the front ends provide besides session.Renderer.
type renderer interface {
	session.Renderer
	Apply(render.Options)
}

// Application holds the components shared by all runs.
type Application struct {
	mu sync.Mutex

	cfg     *config.Config
	opts    Options
	baseDir string

	log      *logging.Logger
	metrics  *metrics.Collector
	registry *command.Registry
	source   *render.SourceCache

	renderer renderer
	input    session.LineReader

	closers []func() error
	closed  bool
}

// New creates an application and starts its front end.
func New(opts Options) (*Application, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	app := &Application{
		cfg:  opts.Config,
		opts: opts,
	}
	if err := app.bootstrap(); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap() error {
	cfg := app.cfg
	if err := cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}

	// 1. Logger
	if app.opts.Logger != nil {
		app.log = app.opts.Logger
	} else {
		log, closer, err := openLog(cfg.Log, cfg.Render.UI)
		if err != nil {
			return &InitError{Component: "logger", Err: err}
		}
		app.log = log
		if closer != nil {
			app.closers = append(app.closers, closer.Close)
		}
	}

	// 2. Metrics
	app.metrics = metrics.New(cfg.Metrics.Runtime)

	// 3. Command registry
	reg, err := command.NewBuiltinRegistry()
	if err != nil {
		return &InitError{Component: "commands", Err: err}
	}
	app.registry = reg

	// 4. Source cache
	app.source, err = render.NewSourceCache(cfg.Render.SourceCache)
	if err != nil {
		return &InitError{Component: "source cache", Err: err}
	}

	// 5. Paths are shown relative to this
	app.baseDir = cfg.Session.BaseDir
	if app.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			app.baseDir = wd
		}
	}

	// 6. Front end
	if err := app.startUI(); err != nil {
		return &InitError{Component: "ui", Err: err}
	}

	app.log.Debug("bootstrap complete (ui=%s)", cfg.Render.UI)
	return nil
}

func (app *Application) startUI() error {
	opts := app.renderOptions(app.cfg)

	switch app.cfg.Render.UI {
	case "plain":
		app.renderer = render.NewText(app.opts.Out, opts, app.source)
		plain := input.NewPlain(app.opts.In, app.opts.Out)
		app.input = plain
		app.closers = append(app.closers, plain.Close)

	case "screen":
		screen := app.opts.Screen
		if screen == nil {
			var err error
			if screen, err = tcell.NewScreen(); err != nil {
				return err
			}
		}
		if err := screen.Init(); err != nil {
			return err
		}
		app.closers = append(app.closers, func() error {
			screen.Fini()
			return nil
		})
		panel := render.NewScreen(screen, opts, app.source)
		app.renderer = panel
		app.input = input.NewScreenReader(screen, panel, input.WithCompletions(app.commandWords()))

	default:
		return ErrUnknownUI
	}
	return nil
}

// commandWords lists every alias the prompt completes.
func (app *Application) commandWords() []string {
	var words []string
	for _, cmd := range app.registry.Commands() {
		words = append(words, cmd.Aliases...)
	}
	return words
}

func (app *Application) renderOptions(cfg *config.Config) render.Options {
	opts := cfg.Render.Options()
	opts.BaseDir = app.baseDir
	return opts
}

// applyConfig takes the presentation settings of a reloaded configuration.
// Anything that shapes the session itself is left alone.
func (app *Application) applyConfig(cfg *config.Config) {
	app.renderer.Apply(app.renderOptions(cfg))
	if level, ok := logging.ParseLevel(cfg.Log.Level); ok {
		app.log.SetLevel(level)
	}

	app.mu.Lock()
	app.cfg.Render = cfg.Render
	app.cfg.Log.Level = cfg.Log.Level
	app.mu.Unlock()
	app.log.Info("presentation settings reloaded")
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Registry returns the command registry.
func (app *Application) Registry() *command.Registry {
	return app.registry
}

// Metrics returns the metrics collector.
func (app *Application) Metrics() *metrics.Collector {
	return app.metrics
}

// Close releases the front end and the log file. Components are closed
// in reverse order of creation.
func (app *Application) Close() error {
	app.mu.Lock()
	if app.closed {
		app.mu.Unlock()
		return nil
	}
	app.closed = true
	closers := app.closers
	app.closers = nil
	app.mu.Unlock()

	var first error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
