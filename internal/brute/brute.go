// Package brute searches the joint state space of small RGM scenes
// breadth-first. It is an oracle for cross-checking the solver, not a
// planner: the state space grows as the product of corridor lengths.
package brute

import (
	"encoding/binary"
	"errors"
	"slices"

	"github.com/elektrokombinacija/rgm/internal/core"
)

var (
	// ErrNoSolution means every reachable state was explored.
	ErrNoSolution = errors.New("brute: no solution")

	// ErrStateLimit means the search gave up after the state limit.
	ErrStateLimit = errors.New("brute: state limit exceeded")
)

// DefaultLimit bounds the number of explored states.
const DefaultLimit = 200000

// state is a joint placement, one position per robot in id order.
type state []core.Position

// key packs the varying coordinate of every robot.
func (s state) key(scene *core.Scene) string {
	buf := make([]byte, 0, 4*len(s))
	for i, p := range s {
		v := p.X
		if scene.Robots[i].IsColumn() {
			v = p.Y
		}
		buf = binary.AppendVarint(buf, int64(v))
	}
	return string(buf)
}

// step links a state to the move that produced it.
type step struct {
	state  state
	move   core.Move
	parent *step
}

func (s *step) path() core.MoveList {
	var moves core.MoveList
	for ; s.parent != nil; s = s.parent {
		moves = append(moves, s.move)
	}
	slices.Reverse(moves)
	return moves
}

// Solve returns a shortest move list, counting one move per slide. Each
// move slides one robot any distance along its axis through free cells.
func Solve(scene *core.Scene, limit int) (core.MoveList, error) {
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	start := state(scene.Starts())
	goal := make(state, len(scene.Robots))
	for i, r := range scene.Robots {
		goal[i] = r.Goal
	}
	goalKey := goal.key(scene)

	root := &step{state: start}
	if start.key(scene) == goalKey {
		return nil, nil
	}
	seen := map[string]bool{start.key(scene): true}
	queue := []*step{root}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, m := range moves(scene, cur.state) {
			next := slices.Clone(cur.state)
			next[m.Robot] = m.To
			k := next.key(scene)
			if seen[k] {
				continue
			}
			child := &step{state: next, move: m, parent: cur}
			if k == goalKey {
				return child.path(), nil
			}
			if len(seen) >= limit {
				return nil, ErrStateLimit
			}
			seen[k] = true
			queue = append(queue, child)
		}
	}
	return nil, ErrNoSolution
}

// Solvable reports whether any move sequence reaches the goals.
func Solvable(scene *core.Scene, limit int) (bool, error) {
	_, err := Solve(scene, limit)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNoSolution):
		return false, nil
	default:
		return false, err
	}
}

// moves lists every single-robot slide from s in id then direction order.
func moves(scene *core.Scene, s state) []core.Move {
	occupied := make(map[core.Position]bool, len(s))
	for _, p := range s {
		occupied[p] = true
	}

	var out []core.Move
	for i, r := range scene.Robots {
		dirs := [2]core.Direction{core.PosX, core.NegX}
		if r.IsColumn() {
			dirs = [2]core.Direction{core.PosY, core.NegY}
		}
		for _, d := range dirs {
			for p := s[i].Add(d); scene.InBounds(p) && !occupied[p]; p = p.Add(d) {
				out = append(out, core.Move{Robot: r.ID, From: s[i], To: p})
			}
		}
	}
	return out
}
