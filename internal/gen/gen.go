// Package gen generates random RGM scenes.
// Generated scenes are deterministic for a fixed seed.
package gen

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/elektrokombinacija/rgm/internal/core"
)

var (
	// ErrTooManyRobots is returned when robots >= (width+height)*0.8.
	ErrTooManyRobots = errors.New("gen: too many robots for the grid")

	// ErrRetriesExhausted is returned when no further valid path is found.
	ErrRetriesExhausted = errors.New("gen: failed to place another robot")

	// ErrBadParams is returned for non-positive dimensions or robot counts.
	ErrBadParams = errors.New("gen: invalid parameters")
)

const (
	pickRetries  = 1000 // attempts per start or goal pick
	robotRetries = 100  // attempts per robot overall
)

// Params defines parameters for scene generation.
type Params struct {
	Width  int   `json:"width" yaml:"width"`
	Height int   `json:"height" yaml:"height"`
	Robots int   `json:"robots" yaml:"robots"`
	Seed   int64 `json:"seed" yaml:"seed"`
}

// Name returns a stable scene name for the parameters.
func (p Params) Name() string {
	return fmt.Sprintf("rgm_%dx%d_r%d_s%d", p.Width, p.Height, p.Robots, p.Seed)
}

// Generate builds a scene in which every column hosts at most one column
// robot and every row at most one row robot, and no goal lies on another
// robot's corridor. Such scenes pass core.Scene.ValidateStrict.
func Generate(p Params) (*core.Scene, error) {
	if p.Width < 2 || p.Height < 2 || p.Robots < 1 {
		return nil, ErrBadParams
	}
	if float64(p.Robots) >= float64(p.Width+p.Height)*0.8 {
		return nil, fmt.Errorf("%w: %d robots on %dx%d", ErrTooManyRobots, p.Robots, p.Width, p.Height)
	}

	g := &generator{
		p:       p,
		rng:     rand.New(rand.NewSource(p.Seed)),
		starts:  make(map[core.Position]bool),
		columns: make(map[int]bool),
		rows:    make(map[int]bool),
	}

	for attempt := 0; attempt < p.Robots*robotRetries && len(g.paths) < p.Robots; attempt++ {
		start, ok := g.pickStart()
		if !ok {
			break
		}
		goal, ok := g.pickGoal(start)
		if !ok {
			continue
		}
		g.paths = append(g.paths, core.Path{Start: start, Goal: goal})
		g.starts[start] = true
		g.columns[start.X] = true
		g.rows[start.Y] = true
	}

	if len(g.paths) < p.Robots {
		return nil, fmt.Errorf("%w: placed %d of %d", ErrRetriesExhausted, len(g.paths), p.Robots)
	}
	return core.NewScene(p.Width, p.Height, g.paths), nil
}

type generator struct {
	p       Params
	rng     *rand.Rand
	paths   []core.Path
	starts  map[core.Position]bool
	columns map[int]bool
	rows    map[int]bool
}

// pickStart finds a free cell not sitting on both a used column and a
// used row.
func (g *generator) pickStart() (core.Position, bool) {
	for i := 0; i < pickRetries; i++ {
		p := core.Pos(g.rng.Intn(g.p.Width), g.rng.Intn(g.p.Height))
		if g.starts[p] || (g.columns[p.X] && g.rows[p.Y]) {
			continue
		}
		return p, true
	}
	return core.Position{}, false
}

// pickGoal chooses an axis still free at start and a goal on it.
func (g *generator) pickGoal(start core.Position) (core.Position, bool) {
	var vertical []bool
	if !g.columns[start.X] {
		vertical = append(vertical, true)
	}
	if !g.rows[start.Y] {
		vertical = append(vertical, false)
	}

	for i := 0; i < pickRetries; i++ {
		var goal core.Position
		if vertical[g.rng.Intn(len(vertical))] {
			goal = core.Pos(start.X, g.rng.Intn(g.p.Height))
		} else {
			goal = core.Pos(g.rng.Intn(g.p.Width), start.Y)
		}
		if goal == start || g.collides(start, goal) {
			continue
		}
		return goal, true
	}
	return core.Position{}, false
}

// collides reports whether the new goal lies on an existing corridor or
// the new corridor covers an existing goal.
func (g *generator) collides(start, goal core.Position) bool {
	r := core.Robot{Start: start, Goal: goal}
	for _, path := range g.paths {
		other := core.Robot{Start: path.Start, Goal: path.Goal}
		if other.OnCorridor(goal) || r.OnCorridor(path.Goal) {
			return true
		}
	}
	return false
}
