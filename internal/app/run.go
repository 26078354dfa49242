package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/backstep/internal/adapter/dapadapter"
	"github.com/dshills/backstep/internal/adapter/replay"
	"github.com/dshills/backstep/internal/config"
	"github.com/dshills/backstep/internal/dap"
	"github.com/dshills/backstep/internal/eval"
	"github.com/dshills/backstep/internal/session"
)

// shutdownTimeout bounds the metrics server shutdown.
const shutdownTimeout = 2 * time.Second

// driver is an instrumentation adapter that feeds pauses to a session.
type driver interface {
	session.Adapter
	Run(ctx context.Context, h session.PauseHandler) error
}

// Replay runs a session over a recorded trace. An empty path falls back to
// replay.trace from the configuration.
func (app *Application) Replay(ctx context.Context, path string) error {
	if path == "" {
		path = app.cfg.Replay.Trace
	}
	if path == "" {
		return ErrNoTrace
	}
	trace, err := replay.Load(path)
	if err != nil {
		return err
	}
	app.log.Info("replaying %s (%d events)", path, len(trace.Events))

	ad := replay.New(trace, replay.WithLogger(app.log))
	return app.run(ctx, ad, app.evaluator())
}

// Debug runs a session against the debug adapter described by the dap
// section of the configuration.
func (app *Application) Debug(ctx context.Context) error {
	dc := app.cfg.DAP.Adapter()
	tr, err := dapadapter.Connect(ctx, dc, app.log)
	if err != nil {
		return err
	}
	ad := dapadapter.New(dap.NewClient(tr), dc, dapadapter.WithLogger(app.log))
	defer ad.Close()

	var ev session.Evaluator = app.evaluator()
	if app.cfg.Eval.Live {
		ev = ad.Evaluator(ev)
	}
	return app.run(ctx, ad, ev)
}

func (app *Application) evaluator() *eval.Lua {
	return eval.NewLua(eval.WithTimeout(app.cfg.Eval.Timeout.Std()))
}

// run drives one session to completion. The metrics server and the config
// watcher live exactly as long as the adapter.
func (app *Application) run(ctx context.Context, ad driver, ev session.Evaluator) error {
	app.mu.Lock()
	closed := app.closed
	app.mu.Unlock()
	if closed {
		return ErrClosed
	}

	sess, err := session.New(session.Config{
		Registry:  app.registry,
		Adapter:   ad,
		Renderer:  app.renderer,
		Input:     app.input,
		Evaluator: ev,
		Logger:    app.log,
		Metrics:   app.metrics,
		BaseDir:   app.baseDir,
		Watch:     app.cfg.Session.Watch,
	})
	if err != nil {
		return err
	}
	app.log.Info("session %s started", sess.ID())

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	if addr := app.cfg.Metrics.Addr; addr != "" {
		if _, err := app.serveMetrics(runCtx, g, addr); err != nil {
			return err
		}
	}

	if app.cfg.Reload && app.cfg.Path() != "" {
		w, err := config.NewWatcher(app.cfg.Path(),
			config.WithWatchLogger(app.log),
			config.WithOverrides(app.opts.Overrides),
		)
		if err != nil {
			app.log.Warn("config reload disabled: %v", err)
		} else {
			defer w.Close()
			_ = w.Subscribe(app.applyConfig)
			g.Go(func() error { return w.Run(runCtx) })
		}
	}

	g.Go(func() error {
		defer stop()
		return ad.Run(runCtx, sess)
	})

	err = g.Wait()
	app.log.Info("session %s ended in state %s after %d checkpoints", sess.ID(), sess.State(), sess.History().Len())
	return err
}

// serveMetrics listens on addr and serves /metrics until ctx is done. It
// returns the bound address.
func (app *Application) serveMetrics(ctx context.Context, g *errgroup.Group, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("app: metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	app.log.Info("serving metrics on http://%s/metrics", ln.Addr())

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return ln.Addr(), nil
}
