package algo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/elektrokombinacija/rgm/internal/core"
)

var solveTracer = otel.Tracer("rgm.algo")

// RGM moves robots straight to their goals whenever their corridor is
// clear and breaks the remaining blocking cycles by rotating them, either
// through a free cell on some member's segment or through the contracted
// intersection graph of the cycle.
type RGM struct {
	opts Options
}

// NewRGM creates the solver.
func NewRGM(opts Options) *RGM {
	if opts.MaxPasses < 1 {
		opts.MaxPasses = 1
	}
	return &RGM{opts: opts}
}

// Name returns the algorithm name.
func (r *RGM) Name() string {
	return "RGM"
}

// Solve runs the solver. Moves are reported to obs as they are committed;
// on failure no Solution is returned even if some moves were reported.
func (r *RGM) Solve(ctx context.Context, scene *core.Scene, obs Observer) (*core.Solution, error) {
	ctx, span := solveTracer.Start(ctx, "algo.RGM.Solve",
		trace.WithAttributes(
			attribute.Int("robots", len(scene.Robots)),
			attribute.Int("width", scene.Width),
			attribute.Int("height", scene.Height),
		),
	)
	defer span.End()

	sol, err := r.solve(ctx, scene, obs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("moves", len(sol.Moves)),
		attribute.Int("cycles", sol.Cycles),
	)
	return sol, nil
}

func (r *RGM) solve(ctx context.Context, scene *core.Scene, obs Observer) (*core.Solution, error) {
	log := r.opts.logger()
	if obs == nil {
		obs = NopObserver{}
	}

	// Step 1: Validate and index
	validate := scene.Validate
	if r.opts.Strict {
		validate = scene.ValidateStrict
	}
	if err := validate(); err != nil {
		return nil, err
	}
	s := newState(scene, obs)
	s.rebuildSuccessors()

	// Step 2: Advance everything with a clear corridor
	if err := s.advancePhase(ctx, "advance", log); err != nil {
		return nil, err
	}

	// Step 3: Resolve cycles, then mop up
	pass := 0
	for pass < r.opts.MaxPasses && len(s.unfinished()) > 0 {
		pass++
		before := len(s.sol.Moves)

		cycles, err := s.detectPhase(ctx, log)
		if err != nil {
			return nil, err
		}
		for _, cycle := range cycles {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("algo: %w", err)
			}
			s.obs.CycleIdentified(s.ids(cycle))
			if err := s.resolveCycle(ctx, cycle, log); err != nil {
				return nil, err
			}
			s.sol.Cycles++
		}

		s.rebuildSuccessors()
		if err := s.advancePhase(ctx, "final_advance", log); err != nil {
			return nil, err
		}
		if len(s.sol.Moves) == before {
			break
		}
	}
	s.sol.Passes = pass

	if left := s.unfinished(); len(left) > 0 {
		return nil, &ResidualUnsolvedError{Robots: left}
	}
	log.Info("scene solved",
		slog.Int("robots", len(s.robots)),
		slog.Int("moves", len(s.sol.Moves)),
		slog.Int("cycles", s.sol.Cycles),
		slog.Int("passes", pass))
	return s.sol, nil
}

func (s *state) advancePhase(ctx context.Context, name string, log *slog.Logger) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("algo: %w", err)
	}
	_, span := solveTracer.Start(ctx, "algo."+name)
	defer span.End()

	moved, err := s.advanceAll()
	span.SetAttributes(attribute.Int("advanced", moved))
	if err != nil {
		span.RecordError(err)
		return err
	}
	log.Debug("advance", slog.String("phase", name), slog.Int("advanced", moved))
	return nil
}

func (s *state) detectPhase(ctx context.Context, log *slog.Logger) ([][]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("algo: %w", err)
	}
	_, span := solveTracer.Start(ctx, "algo.detect_cycles")
	defer span.End()

	cycles, err := s.extractCycles()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("cycles", len(cycles)))
	log.Debug("cycles detected", slog.Int("count", len(cycles)))
	return cycles, nil
}

// resolveCycle tries the empty-slot rotation first and falls back to
// intersection graph contraction.
func (s *state) resolveCycle(ctx context.Context, cycle []int, log *slog.Logger) error {
	_, span := solveTracer.Start(ctx, "algo.resolve_cycle",
		trace.WithAttributes(attribute.Int("cycle_size", len(cycle))),
	)
	defer span.End()

	ids := s.ids(cycle)
	c := newCycleView(s, cycle)
	c.computeIntersections()

	if k, slot, ok := c.findEmptySlot(); ok {
		span.AddEvent("fast_path", trace.WithAttributes(
			attribute.Int("robot", int(c.robot(k).ID)),
			attribute.String("slot", slot.String()),
		))
		log.Debug("fast path", slog.Any("cycle", ids), slog.Int("robot", int(c.robot(k).ID)), slog.String("slot", slot.String()))
		return c.rotateThroughSlot(k, slot)
	}

	g, init, ok := c.buildGraph()
	if !ok {
		return s.cycleFailure(span, ids, ReasonNoGap)
	}
	e, err := g.contract(init)
	log.Debug("contracted", slog.Any("cycle", ids), slog.Int("edges", g.built),
		slog.Int("merged", len(g.edges)-g.built), slog.Bool("converged", err == nil))
	switch {
	case errors.Is(err, errFullyContracted):
		return s.cycleFailure(span, ids, ReasonFullyContracted)
	case errors.Is(err, errContractionBudget):
		return s.cycleFailure(span, ids, ReasonContractionBudget)
	case err != nil:
		span.RecordError(err)
		return err
	}

	span.AddEvent("slow_path", trace.WithAttributes(
		attribute.Int("edges", g.built),
		attribute.Int("merged", len(g.edges)-g.built),
	))
	log.Debug("slow path", slog.Any("cycle", ids), slog.Int("start_edge", e))
	return c.rotate(g, e)
}

func (s *state) cycleFailure(span trace.Span, ids []core.RobotID, reason CycleReason) error {
	err := &UnsolvableCycleError{Robots: ids, Reason: reason}
	span.RecordError(err)
	span.SetStatus(codes.Error, string(reason))
	return err
}
