package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/rgm/internal/bench"
	"github.com/elektrokombinacija/rgm/internal/gen"
)

func (a *app) benchCmd() *cobra.Command {
	var (
		p           gen.Params
		scenes      int
		workers     int
		dir         string
		out         string
		format      string
		metricsPath string
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Solve a batch of scenes and summarise the results",
		Long: `Solve generated scenes (consecutive seeds) or every *.json scene in
--dir, with up to --workers solves running at once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			def := a.cfg.Generator.Params()
			if !flags.Changed("width") {
				p.Width = def.Width
			}
			if !flags.Changed("height") {
				p.Height = def.Height
			}
			if !flags.Changed("robots") {
				p.Robots = def.Robots
			}
			if !flags.Changed("seed") {
				p.Seed = def.Seed
			}
			if !flags.Changed("scenes") {
				scenes = a.cfg.Bench.Scenes
			}
			if !flags.Changed("workers") {
				workers = a.cfg.Bench.Workers
			}
			if !flags.Changed("out") {
				out = a.cfg.Bench.Output
			}
			if !flags.Changed("format") {
				format = a.cfg.Bench.Format
			}

			var jobs []bench.Job
			var err error
			if dir != "" {
				jobs, err = bench.LoadJobs(dir)
			} else {
				jobs, err = bench.GenerateJobs(p, scenes)
			}
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			runner := bench.NewRunner(workers, a.solverOptions(), reg)
			runner.Verify = a.cfg.Solver.Verify
			runner.Logger = a.log

			a.log.Info("bench started", slog.Int("scenes", len(jobs)), slog.Int("workers", workers))
			results, err := runner.Run(cmd.Context(), jobs)
			if err != nil {
				return err
			}
			bench.Summarize(results).Print(cmd.OutOrStdout())

			if out != "" {
				if err := bench.Save(out, format, results); err != nil {
					return err
				}
				a.log.Info("results written", slog.String("path", out))
			}
			if metricsPath != "" {
				return writeMetrics(metricsPath, reg)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&scenes, "scenes", 100, "Number of generated scenes")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent solves")
	cmd.Flags().IntVar(&p.Width, "width", 16, "Grid width")
	cmd.Flags().IntVar(&p.Height, "height", 16, "Grid height")
	cmd.Flags().IntVar(&p.Robots, "robots", 10, "Robots per scene")
	cmd.Flags().Int64Var(&p.Seed, "seed", 1, "First seed")
	cmd.Flags().StringVar(&dir, "dir", "", "Load scenes from this directory instead of generating")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write results to file")
	cmd.Flags().StringVar(&format, "format", "csv", "Results format (csv, json)")
	cmd.Flags().StringVar(&metricsPath, "metrics", "", "Write Prometheus metrics to file")
	return cmd
}
