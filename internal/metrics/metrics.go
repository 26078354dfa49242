// Package metrics exposes Prometheus collectors for session activity.
//
// Every Collector owns its registry, so tests and multiple sessions never
// collide on the global default registerer. All methods are safe on a nil
// *Collector, which records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backstep"

// Input event kinds recorded by InputEvent.
const (
	InputEmpty        = "empty"
	InputInterrupt    = "interrupt"
	InputEOF          = "eof"
	InputUnrecognized = "unrecognized"
	InputArity        = "arity"
	InputSyntax       = "syntax"
)

// Evaluation results recorded by Evaluation.
const (
	EvalOK    = "ok"
	EvalError = "error"
)

// Collector records session metrics.
type Collector struct {
	registry *prometheus.Registry

	Pauses          prometheus.Counter
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Evaluations     *prometheus.CounterVec
	InputEvents     *prometheus.CounterVec
}

// New creates a collector with its own registry. Go runtime and process
// collectors are included when withRuntime is set.
func New(withRuntime bool) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Pauses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pauses_total",
			Help:      "Pause notifications received from the instrumentation adapter.",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed, by canonical name and effect.",
		}, []string{"command", "effect"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent executing a command.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"command"}),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Expression evaluations, by result.",
		}, []string{"result"}),
		InputEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_events_total",
			Help:      "Prompt input that did not run a command, by kind.",
		}, []string{"kind"}),
	}

	c.registry.MustRegister(c.Pauses, c.Commands, c.CommandDuration, c.Evaluations, c.InputEvents)
	if withRuntime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Pause records a pause notification.
func (c *Collector) Pause() {
	if c == nil {
		return
	}
	c.Pauses.Inc()
}

// Command records one executed command.
func (c *Collector) Command(name, effect string, d time.Duration) {
	if c == nil {
		return
	}
	c.Commands.WithLabelValues(name, effect).Inc()
	c.CommandDuration.WithLabelValues(name).Observe(d.Seconds())
}

// Evaluation records an expression evaluation result.
func (c *Collector) Evaluation(result string) {
	if c == nil {
		return
	}
	c.Evaluations.WithLabelValues(result).Inc()
}

// InputEvent records prompt input that did not execute a command.
func (c *Collector) InputEvent(kind string) {
	if c == nil {
		return
	}
	c.InputEvents.WithLabelValues(kind).Inc()
}
