package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/rgm/internal/algo"
	"github.com/elektrokombinacija/rgm/internal/core"
	"github.com/elektrokombinacija/rgm/internal/observer"
	"github.com/elektrokombinacija/rgm/internal/render"
	"github.com/elektrokombinacija/rgm/internal/scenefile"
	"github.com/elektrokombinacija/rgm/internal/sim"
)

func (a *app) stepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "step SCENE",
		Short: "Walk through a solve one event at a time",
		Long: `Solve the scene, pausing before every move and cycle.

Commands read from stdin, one per line:
  (empty), s   release the next event
  c            continue without pausing
  q            stop the solve`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := scenefile.LoadScene(args[0])
			if err != nil {
				return err
			}
			return a.step(cmd, scene)
		},
	}
}

func (a *app) step(cmd *cobra.Command, scene *core.Scene) error {
	w := cmd.OutOrStdout()
	var mu sync.Mutex
	n := 0
	echo := observer.Funcs{
		OnMove: func(id core.RobotID, from, to core.Position) {
			mu.Lock()
			defer mu.Unlock()
			n++
			fmt.Fprintf(w, "%4d  R%02d %v -> %v\n", n, id, from, to)
		},
		OnCycle: func(cycle []core.RobotID) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(w, "      cycle %v\n", cycle)
		},
	}
	rec := observer.NewRecorder()
	stepper := observer.NewStepper(observer.Multi{echo, rec})
	stepper.Pause()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	type outcome struct {
		res *sim.RunResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := sim.Run(ctx, sim.RunConfig{
			Scene:    scene,
			Solver:   algo.NewRGM(a.solverOptions()),
			Observer: stepper,
			Verify:   true,
		})
		done <- outcome{res, err}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(cmd.InOrStdin())
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				stepper.Resume()
				continue
			}
			switch line {
			case "", "s":
				stepper.Step()
			case "c":
				stepper.Resume()
			case "q":
				cancel()
				stepper.Stop()
			default:
				fmt.Fprintf(cmd.ErrOrStderr(), "unknown command %q\n", line)
			}

		case o := <-done:
			stepper.Stop()
			if errors.Is(o.err, context.Canceled) {
				fmt.Fprintf(w, "stopped after %d moves\n", len(rec.Moves()))
				return nil
			}
			if o.err != nil {
				return o.err
			}
			printResult(w, o.res)
			return render.New(w).Grid(scene, o.res.Moves.FinalPositions(scene))
		}
	}
}
