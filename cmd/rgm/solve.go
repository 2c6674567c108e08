package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/rgm/internal/algo"
	"github.com/elektrokombinacija/rgm/internal/bench"
	"github.com/elektrokombinacija/rgm/internal/core"
	"github.com/elektrokombinacija/rgm/internal/observer"
	"github.com/elektrokombinacija/rgm/internal/render"
	"github.com/elektrokombinacija/rgm/internal/scenefile"
	"github.com/elektrokombinacija/rgm/internal/sim"
)

func (a *app) solveCmd() *cobra.Command {
	var (
		out       string
		verify    bool
		strict    bool
		draw      bool
		maxPasses int
		metrics   string
	)
	cmd := &cobra.Command{
		Use:   "solve SCENE",
		Short: "Solve a scene and print or save the moves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := scenefile.LoadScene(args[0])
			if err != nil {
				return err
			}
			opts := a.solverOptions()
			if cmd.Flags().Changed("strict") {
				opts.Strict = strict
			}
			if cmd.Flags().Changed("max-passes") {
				opts.MaxPasses = maxPasses
			}
			if !cmd.Flags().Changed("verify") {
				verify = a.cfg.Solver.Verify
			}

			var extra []algo.Observer
			reg := prometheus.NewRegistry()
			if metrics != "" {
				extra = append(extra, observer.NewMetrics(reg, scene))
			}
			res, err := a.solve(cmd, scene, opts, verify, extra...)
			if err != nil {
				return err
			}
			if metrics != "" {
				if err := writeMetrics(metrics, reg); err != nil {
					return err
				}
			}
			if out != "" {
				if err := scenefile.SaveMoves(out, res.Moves); err != nil {
					return err
				}
				a.log.Info("moves written", slog.String("path", out))
			}
			if draw {
				r := render.New(cmd.OutOrStdout())
				if err := r.Moves(res.Moves); err != nil {
					return err
				}
				return r.Grid(scene, res.Moves.FinalPositions(scene))
			}
			if out == "" {
				return scenefile.WriteMoves(cmd.OutOrStdout(), res.Moves)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write moves JSON to file")
	cmd.Flags().BoolVar(&verify, "verify", false, "Replay the moves before reporting success")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject goals lying on another corridor")
	cmd.Flags().BoolVar(&draw, "render", false, "Print the move list and final grid")
	cmd.Flags().IntVar(&maxPasses, "max-passes", 1, "Cycle resolution passes")
	cmd.Flags().StringVar(&metrics, "metrics", "", "Write Prometheus solve metrics to file")
	return cmd
}

// solve runs the solver with event logging plus any extra observers and
// reports the outcome on stderr.
func (a *app) solve(cmd *cobra.Command, scene *core.Scene, opts algo.Options, verify bool, extra ...algo.Observer) (*sim.RunResult, error) {
	obs := append(observer.Multi{observer.NewLog(a.log, slog.LevelDebug)}, extra...)
	res, err := sim.Run(cmd.Context(), sim.RunConfig{
		Scene:    scene,
		Solver:   algo.NewRGM(opts),
		Observer: obs,
		Verify:   verify,
	})
	if err != nil {
		a.log.Error("solve failed",
			slog.String("reason", res.Reason),
			slog.Float64("duration_ms", res.DurationMs),
			slog.String("error", err.Error()))
		return nil, err
	}
	a.log.Info("solve succeeded",
		slog.Int("robots", len(scene.Robots)),
		slog.Int("moves", res.Metrics.Moves),
		slog.Int("cycles", res.Cycles),
		slog.Bool("verified", verify),
		slog.Float64("duration_ms", res.DurationMs))
	return res, nil
}

func printResult(w io.Writer, res *sim.RunResult) {
	fmt.Fprintf(w, "%s: %d moves, %d cycles, distance %d, %.3f ms\n",
		res.Solver, res.Metrics.Moves, res.Cycles, res.Metrics.TotalDistance, res.DurationMs)
}

func writeMetrics(path string, g prometheus.Gatherer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bench.WriteMetrics(f, g); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
