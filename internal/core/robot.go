package core

// RobotID is a unique robot identifier (its index in the scene).
type RobotID int

// Robot is a robot confined to the straight corridor between Start and Goal.
type Robot struct {
	ID    RobotID
	Start Position
	Goal  Position
}

// Axis returns Column if the robot keeps its x, Row otherwise.
func (r Robot) Axis() Axis {
	if r.Start.X == r.Goal.X {
		return Column
	}
	return Row
}

// IsColumn reports whether the robot moves along y.
func (r Robot) IsColumn() bool {
	return r.Axis() == Column
}

// GoalDirection returns the direction from pos toward the goal,
// or NoDirection if pos is the goal.
func (r Robot) GoalDirection(pos Position) Direction {
	if pos == r.Goal {
		return NoDirection
	}
	if r.IsColumn() {
		if pos.Y < r.Goal.Y {
			return PosY
		}
		return NegY
	}
	if pos.X < r.Goal.X {
		return PosX
	}
	return NegX
}

// OnAxis reports whether p keeps the robot's fixed coordinate.
func (r Robot) OnAxis(p Position) bool {
	if r.IsColumn() {
		return p.X == r.Start.X
	}
	return p.Y == r.Start.Y
}

// OnCorridor reports whether p lies on the closed segment Start..Goal.
func (r Robot) OnCorridor(p Position) bool {
	if !r.OnAxis(p) {
		return false
	}
	if r.IsColumn() {
		return between(p.Y, r.Start.Y, r.Goal.Y)
	}
	return between(p.X, r.Start.X, r.Goal.X)
}

func between(v, a, b int) bool {
	if a > b {
		a, b = b, a
	}
	return a <= v && v <= b
}
