package sim

import (
	"context"
	"errors"
	"time"

	"github.com/elektrokombinacija/rgm/internal/algo"
	"github.com/elektrokombinacija/rgm/internal/core"
)

// RunConfig configures a solve-and-verify run.
type RunConfig struct {
	Scene    *core.Scene
	Solver   algo.Solver
	Observer algo.Observer

	// Verify replays the solver's moves before reporting success.
	Verify bool
}

// RunResult is the outcome of a run.
type RunResult struct {
	Solver     string        `json:"solver"`
	Success    bool          `json:"success"`
	Reason     string        `json:"reason,omitempty"`
	Error      string        `json:"error,omitempty"`
	Cycles     int           `json:"cycles"`
	Metrics    Metrics       `json:"metrics"`
	DurationMs float64       `json:"duration_ms"`
	Moves      core.MoveList `json:"-"`
}

// Run solves the scene and, if asked, replays the result. A failed solve
// is reported in the result and returned as the error.
func Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	res := &RunResult{
		Solver:  cfg.Solver.Name(),
		Metrics: Metrics{Robots: len(cfg.Scene.Robots)},
	}

	start := time.Now()
	sol, err := cfg.Solver.Solve(ctx, cfg.Scene, cfg.Observer)
	res.DurationMs = float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		res.Error = err.Error()
		res.Reason = FailureReason(err)
		return res, err
	}
	res.Moves = sol.Moves
	res.Cycles = sol.Cycles

	if cfg.Verify {
		m, err := Replay(cfg.Scene, sol.Moves, DefaultReplayConfig())
		if err != nil {
			res.Error = err.Error()
			res.Reason = "replay"
			return res, err
		}
		res.Metrics = *m
	} else {
		res.Metrics.Moves = len(sol.Moves)
		res.Metrics.TotalDistance = sol.Moves.TotalDistance()
		res.Metrics.AtGoal = len(cfg.Scene.Robots)
	}
	res.Success = true
	return res, nil
}

// FailureReason maps a solve error to a short tag.
func FailureReason(err error) string {
	var cycleErr *algo.UnsolvableCycleError
	var sceneErr *core.InvalidSceneError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cycleErr):
		return string(cycleErr.Reason)
	case errors.As(err, &sceneErr):
		return "invalid-scene"
	case errors.Is(err, algo.ErrResidualUnsolved):
		return "residual"
	case errors.Is(err, algo.ErrInvariant):
		return "invariant"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
