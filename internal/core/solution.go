package core

import "fmt"

// Move relocates one robot along its axis.
type Move struct {
	Robot RobotID
	From  Position
	To    Position
}

func (m Move) String() string {
	return fmt.Sprintf("%d:%v->%v", m.Robot, m.From, m.To)
}

// Length returns the number of cells traversed.
func (m Move) Length() int {
	return Distance(m.From, m.To)
}

// MoveList is the append-only log produced by a solve.
type MoveList []Move

// TotalDistance sums move lengths.
func (ml MoveList) TotalDistance() int {
	total := 0
	for _, m := range ml {
		total += m.Length()
	}
	return total
}

// PerRobot counts moves per robot.
func (ml MoveList) PerRobot() map[RobotID]int {
	counts := make(map[RobotID]int)
	for _, m := range ml {
		counts[m.Robot]++
	}
	return counts
}

// FinalPositions applies the moves to the scene's starts.
func (ml MoveList) FinalPositions(s *Scene) []Position {
	pos := s.Starts()
	for _, m := range ml {
		if int(m.Robot) >= 0 && int(m.Robot) < len(pos) {
			pos[m.Robot] = m.To
		}
	}
	return pos
}

// Solution is the outcome of a successful solve.
type Solution struct {
	Moves  MoveList
	Cycles int // Number of blocking cycles resolved
	Passes int // Advance/resolve passes used
}

// NewSolution creates an empty solution.
func NewSolution() *Solution {
	return &Solution{Moves: make(MoveList, 0)}
}

// Append records a move.
func (s *Solution) Append(m Move) {
	s.Moves = append(s.Moves, m)
}
