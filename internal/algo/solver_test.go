package algo_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/rgm/internal/algo"
	"github.com/elektrokombinacija/rgm/internal/brute"
	"github.com/elektrokombinacija/rgm/internal/core"
	"github.com/elektrokombinacija/rgm/internal/gen"
	"github.com/elektrokombinacija/rgm/internal/sim"
)

// recorder keeps every observer event.
type recorder struct {
	moves  core.MoveList
	cycles [][]core.RobotID
}

func (r *recorder) RobotMoved(id core.RobotID, from, to core.Position) {
	r.moves = append(r.moves, core.Move{Robot: id, From: from, To: to})
}

func (r *recorder) CycleIdentified(cycle []core.RobotID) {
	r.cycles = append(r.cycles, append([]core.RobotID(nil), cycle...))
}

func solve(t *testing.T, scene *core.Scene, opts algo.Options) (*core.Solution, *recorder, error) {
	t.Helper()
	rec := &recorder{}
	sol, err := algo.NewRGM(opts).Solve(context.Background(), scene, rec)
	return sol, rec, err
}

func squareScene() *core.Scene {
	return core.NewScene(5, 5, []core.Path{
		{Start: core.Pos(1, 1), Goal: core.Pos(1, 4)},
		{Start: core.Pos(3, 1), Goal: core.Pos(0, 1)},
		{Start: core.Pos(3, 3), Goal: core.Pos(3, 0)},
		{Start: core.Pos(1, 3), Goal: core.Pos(4, 3)},
	})
}

func pinwheelScene() *core.Scene {
	return core.NewScene(5, 5, []core.Path{
		{Start: core.Pos(1, 1), Goal: core.Pos(1, 4)},
		{Start: core.Pos(2, 1), Goal: core.Pos(0, 1)},
		{Start: core.Pos(2, 2), Goal: core.Pos(2, 0)},
		{Start: core.Pos(1, 2), Goal: core.Pos(4, 2)},
	})
}

func TestRGM_SingleRobot(t *testing.T) {
	scene := core.NewScene(10, 10, []core.Path{{Start: core.Pos(0, 0), Goal: core.Pos(0, 5)}})
	sol, rec, err := solve(t, scene, algo.DefaultOptions())
	require.NoError(t, err)
	want := core.MoveList{{Robot: 0, From: core.Pos(0, 0), To: core.Pos(0, 5)}}
	assert.Equal(t, want, sol.Moves)
	assert.Equal(t, want, rec.moves)
	assert.Zero(t, sol.Cycles)
}

func TestRGM_IndependentRobots(t *testing.T) {
	scene := core.NewScene(10, 10, []core.Path{
		{Start: core.Pos(0, 0), Goal: core.Pos(0, 5)},
		{Start: core.Pos(5, 5), Goal: core.Pos(9, 5)},
	})
	sol, rec, err := solve(t, scene, algo.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, sol.Moves, 2)
	assert.Equal(t, core.RobotID(0), sol.Moves[0].Robot)
	assert.Equal(t, core.RobotID(1), sol.Moves[1].Robot)
	assert.Empty(t, rec.cycles)
}

func TestRGM_UnblocksChain(t *testing.T) {
	// Robot 0 waits for robot 1 to leave its column.
	scene := core.NewScene(6, 6, []core.Path{
		{Start: core.Pos(2, 0), Goal: core.Pos(2, 5)},
		{Start: core.Pos(2, 3), Goal: core.Pos(5, 3)},
	})
	sol, rec, err := solve(t, scene, algo.DefaultOptions())
	require.NoError(t, err)
	want := core.MoveList{
		{Robot: 1, From: core.Pos(2, 3), To: core.Pos(5, 3)},
		{Robot: 0, From: core.Pos(2, 0), To: core.Pos(2, 5)},
	}
	assert.Equal(t, want, sol.Moves)
	assert.Empty(t, rec.cycles)
}

func TestRGM_FacingNeighbours(t *testing.T) {
	// Each robot is the other's successor, but neither reaches the other
	// before its goal.
	scene := core.NewScene(1, 5, []core.Path{
		{Start: core.Pos(0, 0), Goal: core.Pos(0, 2)},
		{Start: core.Pos(0, 4), Goal: core.Pos(0, 3)},
	})
	table := algo.SuccessorTable(scene)
	assert.Equal(t, 1, table[0][core.PosY])
	assert.Equal(t, 0, table[1][core.NegY])

	sol, rec, err := solve(t, scene, algo.DefaultOptions())
	require.NoError(t, err)
	want := core.MoveList{
		{Robot: 0, From: core.Pos(0, 0), To: core.Pos(0, 2)},
		{Robot: 1, From: core.Pos(0, 4), To: core.Pos(0, 3)},
	}
	assert.Equal(t, want, sol.Moves)
	assert.Empty(t, rec.cycles)
}

func TestRGM_SquareCycle(t *testing.T) {
	scene := squareScene()
	sol, rec, err := solve(t, scene, algo.DefaultOptions())
	require.NoError(t, err)

	want := core.MoveList{
		{Robot: 0, From: core.Pos(1, 1), To: core.Pos(1, 2)},
		{Robot: 1, From: core.Pos(3, 1), To: core.Pos(1, 1)},
		{Robot: 2, From: core.Pos(3, 3), To: core.Pos(3, 1)},
		{Robot: 3, From: core.Pos(1, 3), To: core.Pos(3, 3)},
		{Robot: 0, From: core.Pos(1, 2), To: core.Pos(1, 3)},
		{Robot: 1, From: core.Pos(1, 1), To: core.Pos(0, 1)},
		{Robot: 0, From: core.Pos(1, 3), To: core.Pos(1, 4)},
		{Robot: 3, From: core.Pos(3, 3), To: core.Pos(4, 3)},
		{Robot: 2, From: core.Pos(3, 1), To: core.Pos(3, 0)},
	}
	assert.Equal(t, want, sol.Moves)
	assert.Equal(t, want, rec.moves)
	assert.Equal(t, [][]core.RobotID{{0, 3, 2, 1}}, rec.cycles)
	assert.Equal(t, 1, sol.Cycles)
	assert.Equal(t, 1, sol.Passes)

	_, err = sim.Replay(scene, sol.Moves, sim.DefaultReplayConfig())
	assert.NoError(t, err)
}

func TestRGM_Deterministic(t *testing.T) {
	a, _, err := solve(t, squareScene(), algo.DefaultOptions())
	require.NoError(t, err)
	b, _, err := solve(t, squareScene(), algo.Options{MaxPasses: 3})
	require.NoError(t, err)
	assert.Equal(t, a.Moves, b.Moves)
}

func TestRGM_NoGap(t *testing.T) {
	sol, rec, err := solve(t, pinwheelScene(), algo.DefaultOptions())
	assert.Nil(t, sol)
	require.Error(t, err)
	assert.True(t, errors.Is(err, algo.ErrUnsolvableCycle))

	var ue *algo.UnsolvableCycleError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, algo.ReasonNoGap, ue.Reason)
	assert.Equal(t, []core.RobotID{0, 3, 2, 1}, ue.Robots)
	assert.Empty(t, rec.moves)
	assert.Equal(t, [][]core.RobotID{{0, 3, 2, 1}}, rec.cycles)
}

// figureEightScene has six robots whose cycle crosses itself once,
// tracing a figure eight that contracts to a single loop.
func figureEightScene() *core.Scene {
	return core.NewScene(6, 6, []core.Path{
		{Start: core.Pos(2, 1), Goal: core.Pos(2, 5)},
		{Start: core.Pos(2, 3), Goal: core.Pos(0, 3)},
		{Start: core.Pos(1, 3), Goal: core.Pos(1, 0)},
		{Start: core.Pos(1, 2), Goal: core.Pos(5, 2)},
		{Start: core.Pos(3, 2), Goal: core.Pos(3, 0)},
		{Start: core.Pos(3, 1), Goal: core.Pos(0, 1)},
	})
}

func TestRGM_FullyContracted(t *testing.T) {
	_, rec, err := solve(t, figureEightScene(), algo.DefaultOptions())

	var ue *algo.UnsolvableCycleError
	require.True(t, errors.As(err, &ue), "got %v", err)
	assert.Equal(t, algo.ReasonFullyContracted, ue.Reason)
	assert.Equal(t, []core.RobotID{3, 4, 5, 0, 1, 2}, ue.Robots)
	assert.Equal(t, [][]core.RobotID{{3, 4, 5, 0, 1, 2}}, rec.cycles)
	assert.Empty(t, rec.moves)
}

func TestRGM_ParkedOnCorridor(t *testing.T) {
	// Robot 0 parks on robot 1's row before robot 1 gets to cross it.
	scene := core.NewScene(5, 3, []core.Path{
		{Start: core.Pos(2, 0), Goal: core.Pos(2, 1)},
		{Start: core.Pos(4, 1), Goal: core.Pos(0, 1)},
	})
	sol, rec, err := solve(t, scene, algo.DefaultOptions())
	assert.Nil(t, sol)

	var re *algo.ResidualUnsolvedError
	require.True(t, errors.As(err, &re), "got %v", err)
	assert.Equal(t, []core.RobotID{1}, re.Robots)
	want := core.MoveList{{Robot: 0, From: core.Pos(2, 0), To: core.Pos(2, 1)}}
	assert.Equal(t, want, rec.moves)
	assert.Empty(t, rec.cycles)
}

// denseScene packs ten robots into a 4x4 grid. The first pass resolves
// one cycle and frees a second one for the next pass.
func denseScene() *core.Scene {
	return core.NewScene(4, 4, []core.Path{
		{Start: core.Pos(2, 1), Goal: core.Pos(2, 2)},
		{Start: core.Pos(0, 1), Goal: core.Pos(2, 1)},
		{Start: core.Pos(2, 2), Goal: core.Pos(0, 2)},
		{Start: core.Pos(0, 2), Goal: core.Pos(0, 0)},
		{Start: core.Pos(1, 1), Goal: core.Pos(1, 3)},
		{Start: core.Pos(1, 0), Goal: core.Pos(1, 1)},
		{Start: core.Pos(1, 3), Goal: core.Pos(0, 3)},
		{Start: core.Pos(0, 3), Goal: core.Pos(0, 1)},
		{Start: core.Pos(3, 0), Goal: core.Pos(3, 1)},
		{Start: core.Pos(0, 0), Goal: core.Pos(2, 0)},
	})
}

func TestRGM_SecondPass(t *testing.T) {
	_, _, err := solve(t, denseScene(), algo.Options{MaxPasses: 1})
	var re *algo.ResidualUnsolvedError
	require.True(t, errors.As(err, &re), "got %v", err)
	assert.Equal(t, []core.RobotID{0, 1, 2, 3, 5, 7, 9}, re.Robots)

	sol, rec, err := solve(t, denseScene(), algo.Options{MaxPasses: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, sol.Passes)
	assert.Equal(t, 2, sol.Cycles)
	assert.Equal(t, [][]core.RobotID{{4, 6, 7, 3, 1}, {9, 5, 1, 0, 2, 7, 3}}, rec.cycles)

	want := core.MoveList{
		{Robot: 8, From: core.Pos(3, 0), To: core.Pos(3, 1)},
		{Robot: 4, From: core.Pos(1, 1), To: core.Pos(1, 2)},
		{Robot: 1, From: core.Pos(0, 1), To: core.Pos(1, 1)},
		{Robot: 3, From: core.Pos(0, 2), To: core.Pos(0, 1)},
		{Robot: 7, From: core.Pos(0, 3), To: core.Pos(0, 2)},
		{Robot: 6, From: core.Pos(1, 3), To: core.Pos(0, 3)},
		{Robot: 4, From: core.Pos(1, 2), To: core.Pos(1, 3)},
		{Robot: 2, From: core.Pos(2, 2), To: core.Pos(1, 2)},
		{Robot: 0, From: core.Pos(2, 1), To: core.Pos(2, 2)},
		{Robot: 1, From: core.Pos(1, 1), To: core.Pos(2, 1)},
		{Robot: 5, From: core.Pos(1, 0), To: core.Pos(1, 1)},
		{Robot: 9, From: core.Pos(0, 0), To: core.Pos(1, 0)},
		{Robot: 3, From: core.Pos(0, 1), To: core.Pos(0, 0)},
		{Robot: 7, From: core.Pos(0, 2), To: core.Pos(0, 1)},
		{Robot: 2, From: core.Pos(1, 2), To: core.Pos(0, 2)},
		{Robot: 9, From: core.Pos(1, 0), To: core.Pos(2, 0)},
	}
	assert.Equal(t, want, sol.Moves)

	_, err = sim.Replay(denseScene(), sol.Moves, sim.DefaultReplayConfig())
	assert.NoError(t, err)
}

func TestRGM_LogsContraction(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, _, err := solve(t, figureEightScene(), algo.Options{MaxPasses: 1, Logger: logger})
	require.ErrorIs(t, err, algo.ErrUnsolvableCycle)

	out := buf.String()
	assert.Contains(t, out, "msg=contracted")
	assert.Contains(t, out, "edges=2 merged=0 converged=false")
	assert.NotContains(t, out, "fast path")
	assert.NotContains(t, out, "slow path")
}

func TestRGM_InvalidScene(t *testing.T) {
	scene := core.NewScene(5, 5, []core.Path{
		{Start: core.Pos(0, 0), Goal: core.Pos(0, 3)},
		{Start: core.Pos(0, 0), Goal: core.Pos(3, 0)},
	})
	_, rec, err := solve(t, scene, algo.DefaultOptions())
	assert.ErrorIs(t, err, core.ErrInvalidScene)

	var ie *core.InvalidSceneError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, core.ReasonDuplicateStart, ie.Reason)
	assert.Empty(t, rec.moves)
	assert.Empty(t, rec.cycles)
}

func TestRGM_Strict(t *testing.T) {
	// Robot 1 parks on robot 0's corridor.
	scene := core.NewScene(5, 5, []core.Path{
		{Start: core.Pos(0, 0), Goal: core.Pos(0, 4)},
		{Start: core.Pos(2, 2), Goal: core.Pos(0, 2)},
	})

	sol, _, err := solve(t, scene, algo.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, sol.Moves, 2)

	_, _, err = solve(t, scene, algo.Options{Strict: true})
	var ie *core.InvalidSceneError
	require.True(t, errors.As(err, &ie), "got %v", err)
	assert.Equal(t, core.ReasonGoalOnCorridor, ie.Reason)
}

func TestRGM_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	_, err := algo.NewRGM(algo.DefaultOptions()).Solve(ctx, squareScene(), rec)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.moves)
}

func TestRGM_AgreesWithBruteForce(t *testing.T) {
	var solved, unsolvable, failed int
	for seed := int64(0); seed < 60; seed++ {
		p := gen.Params{Width: 6, Height: 6, Robots: 5, Seed: seed}
		scene, err := gen.Generate(p)
		if errors.Is(err, gen.ErrRetriesExhausted) {
			continue
		}
		require.NoError(t, err, p.Name())

		if checkAgainstBruteForce(t, p.Name(), scene) {
			solved++
			continue
		}
		failed++
		if ok, err := brute.Solvable(scene, 100000); err == nil && !ok {
			unsolvable++
		}
	}
	t.Logf("solved %d, failed %d (%d proven unsolvable)", solved, failed, unsolvable)
	assert.Positive(t, solved)
}

// randomScene places up to n robots with axis-aligned paths on a w x h
// grid. Goals may land on other corridors.
func randomScene(rng *rand.Rand, w, h, n int) *core.Scene {
	var paths []core.Path
	starts := make(map[core.Position]bool)
	goals := make(map[core.Position]bool)
	for range n {
		for range 50 {
			start := core.Pos(rng.Intn(w), rng.Intn(h))
			goal := core.Pos(start.X, rng.Intn(h))
			if rng.Intn(2) == 0 {
				goal = core.Pos(rng.Intn(w), start.Y)
			}
			if start == goal || starts[start] || goals[goal] {
				continue
			}
			starts[start], goals[goal] = true, true
			paths = append(paths, core.Path{Start: start, Goal: goal})
			break
		}
	}
	return core.NewScene(w, h, paths)
}

func TestRGM_RandomScenes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var solved, failed int
	for i := range 2000 {
		scene := randomScene(rng, 2+rng.Intn(4), 2+rng.Intn(4), 2+rng.Intn(3))
		if scene.Validate() != nil {
			continue
		}
		if checkAgainstBruteForce(t, fmt.Sprintf("scene %d", i), scene) {
			solved++
		} else {
			failed++
		}
	}
	t.Logf("solved %d, failed %d", solved, failed)
	assert.Positive(t, solved)
	assert.Positive(t, failed)
}

// checkAgainstBruteForce solves the scene and reports whether it
// succeeded. Solutions must replay cleanly, failures must be typed, and
// an invariant violation is only allowed on a scene with no solution.
func checkAgainstBruteForce(t *testing.T, name string, scene *core.Scene) bool {
	t.Helper()
	sol, _, err := solve(t, scene, algo.DefaultOptions())
	if err == nil {
		_, rerr := sim.Replay(scene, sol.Moves, sim.DefaultReplayConfig())
		require.NoError(t, rerr, name)
		return true
	}
	require.True(t,
		errors.Is(err, algo.ErrUnsolvableCycle) ||
			errors.Is(err, algo.ErrResidualUnsolved) ||
			errors.Is(err, algo.ErrInvariant),
		"%s: untyped error %v", name, err)

	if errors.Is(err, algo.ErrInvariant) {
		ok, berr := brute.Solvable(scene, 100000)
		if berr == nil {
			assert.False(t, ok, "%s: %v on a solvable scene %v", name, err, scene.Robots)
		}
	}
	return false
}

func TestRGM_UnsolvableNeverSucceeds(t *testing.T) {
	scene := core.NewScene(3, 1, []core.Path{
		{Start: core.Pos(0, 0), Goal: core.Pos(2, 0)},
		{Start: core.Pos(2, 0), Goal: core.Pos(0, 0)},
	})
	ok, err := brute.Solvable(scene, 0)
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = solve(t, scene, algo.DefaultOptions())
	assert.Error(t, err)
}
