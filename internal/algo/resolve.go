package algo

import (
	"sort"

	"github.com/elektrokombinacija/rgm/internal/core"
)

// intersection is a cell where a column robot's next travel segment
// crosses a row robot's one inside the same cycle.
type intersection struct {
	col, row int
	pos      core.Position
	vertex   int // lazily assigned graph vertex, or none
}

// cycleView holds the per-cycle data shared by the fast and slow paths.
type cycleView struct {
	s      *state
	robots []int // robot indices in blocked-by order
	inters []intersection
	lists  [][]int // per cycle position, indices into inters
}

func (c *cycleView) next(k int) int { return (k + 1) % len(c.robots) }
func (c *cycleView) prev(k int) int { return (k - 1 + len(c.robots)) % len(c.robots) }

func (c *cycleView) robot(k int) *robotState {
	return &c.s.robots[c.robots[k]]
}

// segment returns the travel segment of cycle member k: from its position
// to that of the robot blocking it.
func (c *cycleView) segment(k int) (core.Position, core.Position) {
	return c.robot(k).pos, c.robot(c.next(k)).pos
}

func newCycleView(s *state, cycle []int) *cycleView {
	return &cycleView{s: s, robots: cycle, lists: make([][]int, len(cycle))}
}

// computeIntersections pairs every column member with every non-adjacent
// row member whose segments cross.
func (c *cycleView) computeIntersections() {
	for k := range c.robots {
		if !c.robot(k).IsColumn() {
			continue
		}
		a1, a2 := c.segment(k)
		for j := range c.robots {
			if j == c.prev(k) || j == k || j == c.next(k) || c.robot(j).IsColumn() {
				continue
			}
			b1, b2 := c.segment(j)
			if !boxesOverlap(a1, a2, b1, b2) {
				continue
			}
			c.inters = append(c.inters, intersection{
				col:    k,
				row:    j,
				pos:    core.Pos(a1.X, b1.Y),
				vertex: none,
			})
			idx := len(c.inters) - 1
			c.lists[k] = append(c.lists[k], idx)
			c.lists[j] = append(c.lists[j], idx)
		}
	}
}

// boxesOverlap tests the closed bounding boxes of two segments.
func boxesOverlap(a1, a2, b1, b2 core.Position) bool {
	ax1, ax2 := order(a1.X, a2.X)
	ay1, ay2 := order(a1.Y, a2.Y)
	bx1, bx2 := order(b1.X, b2.X)
	by1, by2 := order(b1.Y, b2.Y)
	return ax1 <= bx2 && ax2 >= bx1 && ay1 <= by2 && ay2 >= by1
}

func order(a, b int) (int, int) {
	if a <= b {
		return a, b
	}
	return b, a
}

// sortIntersections orders member k's intersections along its goal
// direction.
func (c *cycleView) sortIntersections(k int) {
	r := c.robot(k)
	positive := r.goalDir().IsPositive()
	key := func(i int) int {
		if r.IsColumn() {
			return c.inters[i].pos.Y
		}
		return c.inters[i].pos.X
	}
	list := c.lists[k]
	sort.SliceStable(list, func(a, b int) bool {
		if positive {
			return key(list[a]) < key(list[b])
		}
		return key(list[a]) > key(list[b])
	})
}

// findEmptySlot scans members in cycle order for the first cell past the
// member's leading intersections that is not its successor's cell.
// Returns the member and the slot.
func (c *cycleView) findEmptySlot() (int, core.Position, bool) {
	for k := range c.robots {
		r := c.robot(k)
		d := r.goalDir()
		c.sortIntersections(k)

		cand := r.pos.Add(d)
		for _, i := range c.lists[k] {
			if c.inters[i].pos != cand {
				break
			}
			cand = cand.Add(d)
		}
		if cand != c.robot(c.next(k)).pos {
			return k, cand, true
		}
	}
	return 0, core.Position{}, false
}

// rotateThroughSlot parks member k in slot, then walks the cycle
// backwards moving each member into the cell its successor just left,
// ending with k itself.
func (c *cycleView) rotateThroughSlot(k int, slot core.Position) error {
	vacated := c.robot(k).pos
	if err := c.s.moveRobot(c.robots[k], slot); err != nil {
		return err
	}
	for j := c.prev(k); ; j = c.prev(j) {
		r := c.robot(j)
		from := r.pos
		if err := c.s.moveRobot(c.robots[j], vacated); err != nil {
			return err
		}
		vacated = from
		if j == k {
			return nil
		}
	}
}
