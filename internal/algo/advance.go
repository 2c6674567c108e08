package algo

import "github.com/elektrokombinacija/rgm/internal/core"

// moveRobot commits a move after checking that it keeps the robot on its
// axis, inside the grid, and that every cell it sweeps through is free.
func (s *state) moveRobot(i int, to core.Position) error {
	r := &s.robots[i]
	from := r.pos
	if to == from {
		return nil
	}
	if !r.OnAxis(to) {
		return invariantf("move", "robot %d: %v->%v leaves its axis", r.ID, from, to)
	}
	if !s.scene.InBounds(to) {
		return invariantf("move", "robot %d: %v out of bounds", r.ID, to)
	}

	d := directionTo(from, to)
	for p := from.Add(d); ; p = p.Add(d) {
		if other, ok := s.occupied[p]; ok {
			return invariantf("move", "robot %d: %v->%v collides with robot %d at %v", r.ID, from, to, other, p)
		}
		if p == to {
			break
		}
	}

	delete(s.occupied, from)
	s.occupied[to] = i
	r.pos = to
	m := core.Move{Robot: r.ID, From: from, To: to}
	s.sol.Append(m)
	s.obs.RobotMoved(m.Robot, m.From, m.To)
	return nil
}

// directionTo returns the direction from a to an axis-aligned b.
func directionTo(a, b core.Position) core.Direction {
	switch {
	case b.X > a.X:
		return core.PosX
	case b.X < a.X:
		return core.NegX
	case b.Y > a.Y:
		return core.PosY
	default:
		return core.NegY
	}
}

// advanceAll moves every robot with a clear path straight to its goal and
// keeps going until no departure frees anyone else. Each seed robot gets
// its own LIFO work list of robots whose links changed.
func (s *state) advanceAll() (int, error) {
	moved := 0
	for _, seed := range s.order {
		queue := []int{seed}
		for len(queue) > 0 {
			i := queue[len(queue)-1]
			queue = queue[:len(queue)-1]

			r := &s.robots[i]
			if r.atGoal() || !s.hasClearPath(i) {
				continue
			}

			queue = append(queue, s.spliceOut(i)...)
			if err := s.moveRobot(i, r.Goal); err != nil {
				return moved, err
			}
			r.clearSuccessors()
			moved++
		}
	}
	return moved, nil
}

// unfinished returns ids of robots off their goal, in id order.
func (s *state) unfinished() []core.RobotID {
	var ids []core.RobotID
	for i := range s.robots {
		if !s.robots[i].atGoal() {
			ids = append(ids, s.robots[i].ID)
		}
	}
	return ids
}
