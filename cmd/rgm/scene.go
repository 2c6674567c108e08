package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/rgm/internal/algo"
	"github.com/elektrokombinacija/rgm/internal/gen"
	"github.com/elektrokombinacija/rgm/internal/render"
	"github.com/elektrokombinacija/rgm/internal/scenefile"
	"github.com/elektrokombinacija/rgm/internal/sim"
)

func (a *app) validateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate SCENE",
		Short: "Check a scene for geometry errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := scenefile.LoadScene(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("strict") {
				strict = a.cfg.Solver.Strict
			}
			check := scene.Validate
			if strict {
				check = scene.ValidateStrict
			}
			if err := check(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d robots on %dx%d\n", len(scene.Robots), scene.Width, scene.Height)
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Also reject goals lying on another corridor")
	return cmd
}

func (a *app) renderCmd() *cobra.Command {
	var (
		successors bool
		movesPath  string
		color      bool
	)
	cmd := &cobra.Command{
		Use:   "render SCENE",
		Short: "Draw a scene as a text grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := scenefile.LoadScene(args[0])
			if err != nil {
				return err
			}
			r := render.New(cmd.OutOrStdout())
			if cmd.Flags().Changed("color") {
				r = render.NewWithColor(cmd.OutOrStdout(), color)
			}

			positions := scene.Starts()
			if movesPath != "" {
				moves, err := scenefile.LoadMoves(movesPath)
				if err != nil {
					return err
				}
				if _, err := sim.Replay(scene, moves, sim.ReplayConfig{}); err != nil {
					return err
				}
				p := sim.NewPlayer(scene, moves)
				p.Seek(p.Len())
				positions = p.Positions()
			}
			if err := r.Grid(scene, positions); err != nil {
				return err
			}
			if successors {
				return r.Successors(scene, algo.SuccessorTable(scene))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&successors, "successors", false, "Also print the initial successor table")
	cmd.Flags().StringVar(&movesPath, "moves", "", "Apply a moves JSON file before drawing")
	cmd.Flags().BoolVar(&color, "color", false, "Force colour on or off")
	return cmd
}

func (a *app) generateCmd() *cobra.Command {
	var (
		p   gen.Params
		out string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def := a.cfg.Generator.Params()
			flags := cmd.Flags()
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

			scene, err := gen.Generate(p)
			if err != nil {
				return err
			}
			if out == "" {
				return scenefile.WriteScene(cmd.OutOrStdout(), scene)
			}
			if err := scenefile.SaveScene(out, scene); err != nil {
				return err
			}
			a.log.Info("scene written", slog.String("path", out), slog.String("name", p.Name()))
			return nil
		},
	}
	cmd.Flags().IntVar(&p.Width, "width", 16, "Grid width")
	cmd.Flags().IntVar(&p.Height, "height", 16, "Grid height")
	cmd.Flags().IntVar(&p.Robots, "robots", 10, "Number of robots")
	cmd.Flags().Int64Var(&p.Seed, "seed", 1, "Random seed")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write scene JSON to file")
	return cmd
}
