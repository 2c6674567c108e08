// Package core defines domain models for RGM scenes.
package core

import "fmt"

// Position is a grid cell.
type Position struct {
	X, Y int
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns the neighbouring cell in direction d.
func (p Position) Add(d Direction) Position {
	off := dirOffsets[d]
	return Position{X: p.X + off.X, Y: p.Y + off.Y}
}

// Less orders positions x-major, y-minor.
func (p Position) Less(q Position) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	return p.Y < q.Y
}

// Distance returns the Manhattan distance between two cells.
func Distance(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction is one of the four cardinal grid directions.
type Direction int

const (
	PosX Direction = iota // X+
	NegX                  // X-
	PosY                  // Y+
	NegY                  // Y-

	// NoDirection is returned for robots already at goal.
	NoDirection Direction = -1
)

// Directions lists all directions in slot order.
var Directions = [4]Direction{PosX, NegX, PosY, NegY}

var (
	dirNames    = [...]string{"X+", "X-", "Y+", "Y-"}
	dirOpposite = [...]Direction{NegX, PosX, NegY, PosY}
	dirPositive = [...]bool{true, false, true, false}
	dirAxis     = [...]Axis{Row, Row, Column, Column}
	dirOffsets  = [...]Position{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

func (d Direction) String() string {
	if d < PosX || d > NegY {
		return "none"
	}
	return dirNames[d]
}

// Opposite maps positive to negative on the same axis and back.
func (d Direction) Opposite() Direction {
	return dirOpposite[d]
}

// IsPositive reports whether d is X+ or Y+.
func (d Direction) IsPositive() bool {
	return dirPositive[d]
}

// Axis returns the robot axis a move in direction d belongs to.
func (d Direction) Axis() Axis {
	return dirAxis[d]
}

// Axis is the single coordinate a robot may change.
type Axis int

const (
	Column Axis = iota // fixed x, moves along y
	Row                // fixed y, moves along x
)

func (a Axis) String() string {
	return [...]string{"column", "row"}[a]
}
