// Command rgm solves, checks and benchmarks axis-confined robot scenes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/rgm/internal/algo"
	"github.com/elektrokombinacija/rgm/internal/config"
	"github.com/elektrokombinacija/rgm/internal/logging"
	"github.com/elektrokombinacija/rgm/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// app carries state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string
	traces     string

	cfg      *config.Config
	log      *slog.Logger
	shutdown telemetry.ShutdownFunc
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "rgm",
		Short: "Solve scenes of robots confined to straight corridors",
		Long: `rgm moves robots that travel only along their own row or column
to their goals, breaking blocking cycles by rotation.

Examples:
  rgm generate --width 12 --height 12 --robots 8 --seed 3 --out scene.json
  rgm solve scene.json --verify --out moves.json
  rgm render scene.json --moves moves.json
  rgm bench --scenes 200 --workers 8`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.shutdown == nil {
				return nil
			}
			return a.shutdown(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.traces, "traces", "", "Trace exporter override (none, stdout)")

	root.AddCommand(
		a.solveCmd(),
		a.validateCmd(),
		a.renderCmd(),
		a.generateCmd(),
		a.verifyCmd(),
		a.watchCmd(),
		a.stepCmd(),
		a.benchCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.traces != "" {
		cfg.Telemetry.Traces = a.traces
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.shutdown, err = telemetry.Init(cmd.Context(), cfg.Telemetry, cmd.ErrOrStderr())
	return err
}

// solverOptions builds solver options from config.
func (a *app) solverOptions() algo.Options {
	return algo.Options{
		Logger:    a.log,
		MaxPasses: a.cfg.Solver.MaxPasses,
		Strict:    a.cfg.Solver.Strict,
	}
}
