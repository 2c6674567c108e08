// Package algo implements the RGM solver for axis-confined robots.
package algo

import (
	"context"
	"log/slog"

	"github.com/elektrokombinacija/rgm/internal/core"
)

// Solver is the interface for RGM algorithms.
type Solver interface {
	// Solve computes a move sequence taking every robot to its goal.
	// On failure the error is one of *core.InvalidSceneError,
	// *UnsolvableCycleError, *ResidualUnsolvedError or *InvariantError.
	Solve(ctx context.Context, scene *core.Scene, obs Observer) (*core.Solution, error)

	// Name returns the algorithm name.
	Name() string
}

// Observer receives solve events synchronously, in solve order.
// Implementations must not retain or modify the cycle slice.
type Observer interface {
	RobotMoved(id core.RobotID, from, to core.Position)
	CycleIdentified(cycle []core.RobotID)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) RobotMoved(core.RobotID, core.Position, core.Position) {}
func (NopObserver) CycleIdentified([]core.RobotID)                        {}

// Options tunes a solver.
type Options struct {
	// Logger receives debug records for solve phases. Nil discards.
	Logger *slog.Logger

	// MaxPasses bounds detect/resolve/advance rounds. One pass matches
	// the classic algorithm; more passes retry cycles left after a
	// partial slow-path rotation.
	MaxPasses int

	// Strict rejects scenes whose goals lie on another corridor.
	Strict bool
}

// DefaultOptions returns a single-pass, non-strict configuration.
func DefaultOptions() Options {
	return Options{MaxPasses: 1}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}
