package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/rgm/internal/algo"
	"github.com/elektrokombinacija/rgm/internal/brute"
	"github.com/elektrokombinacija/rgm/internal/scenefile"
	"github.com/elektrokombinacija/rgm/internal/sim"
)

// errDisagree means the solver claimed a solution the oracle rules out.
var errDisagree = errors.New("solver and oracle disagree")

func (a *app) verifyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "verify SCENE",
		Short: "Cross-check the solver against an exhaustive search",
		Long: `Solve the scene, replay the moves, and compare the outcome with a
breadth-first search over all joint positions. Only practical for small
scenes; the search stops after --limit states.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := scenefile.LoadScene(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			res, solveErr := sim.Run(cmd.Context(), sim.RunConfig{
				Scene:  scene,
				Solver: algo.NewRGM(a.solverOptions()),
				Verify: true,
			})
			if solveErr == nil {
				fmt.Fprintf(w, "solver: ok (%d moves, %d cycles)\n", res.Metrics.Moves, res.Cycles)
			} else {
				fmt.Fprintf(w, "solver: failed (%s)\n", res.Reason)
			}

			ok, err := brute.Solvable(scene, limit)
			switch {
			case errors.Is(err, brute.ErrStateLimit):
				fmt.Fprintf(w, "oracle: unknown (more than %d states)\n", limit)
			case err != nil:
				return err
			case ok:
				fmt.Fprintln(w, "oracle: solvable")
			default:
				fmt.Fprintln(w, "oracle: unsolvable")
			}

			if solveErr == nil && err == nil && !ok {
				return errDisagree
			}
			return solveErr
		},
	}
	cmd.Flags().IntVar(&limit, "limit", brute.DefaultLimit, "Maximum states explored by the oracle")
	return cmd
}
