package algo

import (
	"sort"

	"github.com/google/btree"

	"github.com/elektrokombinacija/rgm/internal/core"
)

// none marks an empty successor slot.
const none = -1

// robotState is the mutable per-solve view of a robot. Successor slots
// index into state.robots.
type robotState struct {
	core.Robot
	pos  core.Position
	succ [4]int
}

func (r *robotState) atGoal() bool {
	return r.pos == r.Goal
}

func (r *robotState) goalDir() core.Direction {
	return r.GoalDirection(r.pos)
}

func (r *robotState) clearSuccessors() {
	r.succ = [4]int{none, none, none, none}
}

// state owns every robot and the move log for one solve call.
type state struct {
	scene    *core.Scene
	robots   []robotState
	order    []int // robot indices sorted by position at last rebuild
	occupied map[core.Position]int
	sol      *core.Solution
	obs      Observer
}

func newState(scene *core.Scene, obs Observer) *state {
	s := &state{
		scene:    scene,
		robots:   make([]robotState, len(scene.Robots)),
		occupied: make(map[core.Position]int, len(scene.Robots)),
		sol:      core.NewSolution(),
		obs:      obs,
	}
	for i, r := range scene.Robots {
		s.robots[i] = robotState{Robot: r, pos: r.Start}
		s.robots[i].clearSuccessors()
		s.occupied[r.Start] = i
	}
	return s
}

// rowEntry is a robot waiting for its X+ successor, keyed by row.
type rowEntry struct {
	y     int
	robot int
}

func rowLess(a, b rowEntry) bool {
	return a.y < b.y
}

// rebuildSuccessors recomputes all four successor slots of every robot
// with one sweep in x-major order. Column neighbours are adjacent in the
// sort; row neighbours are matched through an ordered set keyed by y that
// holds, per row, the last robot seen so far.
func (s *state) rebuildSuccessors() {
	s.order = s.order[:0]
	for i := range s.robots {
		s.robots[i].clearSuccessors()
		s.order = append(s.order, i)
	}
	sort.SliceStable(s.order, func(a, b int) bool {
		return s.robots[s.order[a]].pos.Less(s.robots[s.order[b]].pos)
	})

	open := btree.NewG[rowEntry](8, rowLess)
	prevCol := none
	for _, i := range s.order {
		p := s.robots[i].pos

		if prevCol != none && s.robots[prevCol].pos.X == p.X {
			s.link(prevCol, core.PosY, i)
		}
		prevCol = i

		var match rowEntry
		found := false
		open.AscendGreaterOrEqual(rowEntry{y: p.Y}, func(e rowEntry) bool {
			match, found = e, true
			return false
		})
		if found && match.y == p.Y {
			s.link(match.robot, core.PosX, i)
			open.Delete(match)
		}
		open.ReplaceOrInsert(rowEntry{y: p.Y, robot: i})
	}
}

// link makes b the d-successor of a and a the opposite successor of b.
func (s *state) link(a int, d core.Direction, b int) {
	s.robots[a].succ[d] = b
	s.robots[b].succ[d.Opposite()] = a
}

// blocker returns the nearest robot between i and its goal, or none. The
// successor in the goal direction bounds the search; the cells before it
// are still scanned, since robots that parked since the last rebuild are
// not linked into the line they arrived in.
func (s *state) blocker(i int) int {
	r := &s.robots[i]
	d := r.goalDir()
	if d == core.NoDirection {
		return none
	}
	reach := core.Distance(r.pos, r.Goal)
	found := none
	if next := r.succ[d]; next != none {
		if dist := core.Distance(r.pos, s.robots[next].pos); dist <= reach {
			reach, found = dist-1, next
		}
	}
	p := r.pos
	for range reach {
		p = p.Add(d)
		if j, ok := s.occupied[p]; ok {
			return j
		}
	}
	return found
}

func (s *state) hasClearPath(i int) bool {
	return s.blocker(i) == none
}

// spliceOut relinks the neighbours a departing robot leaves behind. A
// column robot leaves its row, a row robot leaves its column; links along
// its own line stay valid because it keeps its place in that line.
// Returns the robots whose links changed, in slot order.
func (s *state) spliceOut(i int) []int {
	r := &s.robots[i]
	pos, neg := core.PosY, core.NegY
	if r.IsColumn() {
		pos, neg = core.PosX, core.NegX
	}

	var changed []int
	a, b := r.succ[pos], r.succ[neg]
	if a != none {
		s.robots[a].succ[neg] = b
		changed = append(changed, a)
	}
	if b != none {
		s.robots[b].succ[pos] = a
		changed = append(changed, b)
	}
	return changed
}

// SuccessorTable returns the initial successor slots of every robot,
// indexed by robot id then direction; -1 marks an empty slot.
func SuccessorTable(scene *core.Scene) [][4]int {
	s := newState(scene, NopObserver{})
	s.rebuildSuccessors()
	table := make([][4]int, len(s.robots))
	for i := range s.robots {
		table[i] = s.robots[i].succ
	}
	return table
}
