package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/backstep/internal/adapter/dapadapter"
	"github.com/dshills/backstep/internal/app"
	"github.com/dshills/backstep/internal/config"
)

// globalFlags are shared by every subcommand. A flag only overrides the
// configuration when it was given explicitly.
type globalFlags struct {
	config      string
	logLevel    string
	logFile     string
	ui          string
	color       string
	metricsAddr string
}

func (g *globalFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&g.config, "config", "", "configuration file (default: user config dir)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&g.logFile, "log-file", "", "write the diagnostic log to this file")
	pf.StringVar(&g.ui, "ui", "", "front end: plain or screen")
	pf.StringVar(&g.color, "color", "", "color output: auto, always, never")
	pf.StringVar(&g.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

// overrides returns the explicitly set flags as a configuration edit.
func (g *globalFlags) overrides(cmd *cobra.Command, extra func(*config.Config)) func(*config.Config) {
	changed := cmd.Flags().Changed
	return func(c *config.Config) {
		if changed("log-level") {
			c.Log.Level = g.logLevel
		}
		if changed("log-file") {
			c.Log.File = g.logFile
		}
		if changed("ui") {
			c.Render.UI = g.ui
		}
		if changed("color") {
			c.Render.Color = g.color
		}
		if changed("metrics-addr") {
			c.Metrics.Addr = g.metricsAddr
		}
		if extra != nil {
			extra(c)
		}
	}
}

// load reads the configuration and applies the flags.
func (g *globalFlags) load(cmd *cobra.Command, extra func(*config.Config)) (*config.Config, func(*config.Config), error) {
	cfg, err := config.Load(g.config)
	if err != nil {
		return nil, nil, err
	}
	apply := g.overrides(cmd, extra)
	apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, apply, nil
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	root := &cobra.Command{
		Use:   "backstep",
		Short: "Step through a program and back again",
		Long: `backstep pauses a program, records every pause as a checkpoint and lets
you move back and forth between checkpoints, inspect variables, diff them
against earlier values and evaluate Lua expressions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.register(root)

	root.AddCommand(
		newReplayCmd(&flags),
		newDAPCmd(&flags),
		newCommandsCmd(&flags),
		newVersionCmd(),
	)
	return root
}

func newReplayCmd(flags *globalFlags) *cobra.Command {
	var watch []string
	cmd := &cobra.Command{
		Use:   "replay [trace]",
		Short: "Replay a recorded trace",
		Long: `Replay walks a recorded trace (YAML or JSON) as if the program were
running: every event is a place the program may pause, and step, next,
return and continue choose the following pause.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, apply, err := flags.load(cmd, func(c *config.Config) {
				if len(watch) > 0 {
					c.Session.Watch = watch
				}
			})
			if err != nil {
				return err
			}
			a, err := app.New(app.Options{Config: cfg, Overrides: apply})
			if err != nil {
				return err
			}
			defer a.Close()

			var trace string
			if len(args) > 0 {
				trace = args[0]
			}
			return a.Replay(cmd.Context(), trace)
		},
	}
	cmd.Flags().StringSliceVar(&watch, "watch", nil, "variables to watch from the first pause")
	return cmd
}

func newDAPCmd(flags *globalFlags) *cobra.Command {
	var (
		addr        string
		attach      bool
		program     string
		breakpoints []string
		watch       []string
	)
	cmd := &cobra.Command{
		Use:   "dap [flags] [-- adapter command...]",
		Short: "Debug a program through a Debug Adapter Protocol server",
		Long: `dap starts a debug adapter (for example "backstep dap -- dlv dap") or dials
one already listening (--addr), sets the requested breakpoints and records
every stop as a checkpoint.`,
		Example: `  backstep dap --program ./cmd/server --break main.go:42 -- dlv dap
  backstep dap --addr localhost:4711 --attach`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bps := make([]dapadapter.Breakpoint, 0, len(breakpoints))
			for _, text := range breakpoints {
				bp, err := parseBreakpoint(text)
				if err != nil {
					return err
				}
				bps = append(bps, bp)
			}

			changed := cmd.Flags().Changed
			cfg, apply, err := flags.load(cmd, func(c *config.Config) {
				if len(args) > 0 {
					c.DAP.Command = args
				}
				if changed("addr") {
					c.DAP.Addr = addr
				}
				if changed("attach") && attach {
					c.DAP.Request = "attach"
				}
				if changed("program") {
					if c.DAP.Args == nil {
						c.DAP.Args = map[string]any{}
					}
					c.DAP.Args["program"] = program
				}
				if len(bps) > 0 {
					c.DAP.Breakpoints = bps
				}
				if len(watch) > 0 {
					c.Session.Watch = watch
				}
			})
			if err != nil {
				return err
			}

			a, err := app.New(app.Options{Config: cfg, Overrides: apply})
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Debug(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", "", "dial a debug adapter at host:port instead of starting one")
	f.BoolVar(&attach, "attach", false, "attach to a running process instead of launching")
	f.StringVar(&program, "program", "", "program to launch (passed to the adapter as \"program\")")
	f.StringArrayVarP(&breakpoints, "break", "b", nil, "breakpoint as file:line[:condition] (repeatable)")
	f.StringSliceVar(&watch, "watch", nil, "variables to watch from the first pause")
	return cmd
}

func newCommandsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the commands available at the prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := flags.load(cmd, nil)
			if err != nil {
				return err
			}
			return app.WriteCommands(cmd.OutOrStdout(), cfg)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "backstep %s (commit %s, built %s, %s)\n", version, commit, date, runtime.Version())
		},
	}
}

// parseBreakpoint reads file:line or file:line:condition. Relative files
// are made absolute, as debug adapters expect.
func parseBreakpoint(text string) (dapadapter.Breakpoint, error) {
	file, rest, ok := strings.Cut(text, ":")
	if !ok || file == "" {
		return dapadapter.Breakpoint{}, fmt.Errorf("breakpoint %q: want file:line", text)
	}
	lineText, cond, _ := strings.Cut(rest, ":")
	line, err := strconv.Atoi(lineText)
	if err != nil || line <= 0 {
		return dapadapter.Breakpoint{}, fmt.Errorf("breakpoint %q: bad line %q", text, lineText)
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return dapadapter.Breakpoint{}, err
	}
	return dapadapter.Breakpoint{File: abs, Line: line, Condition: cond}, nil
}
