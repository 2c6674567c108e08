package core

import (
	"errors"
	"fmt"
)

// ErrInvalidScene is matched by every scene validation failure.
var ErrInvalidScene = errors.New("core: invalid scene")

// InvalidReason tags why a scene failed validation.
type InvalidReason string

const (
	ReasonBadDimensions  InvalidReason = "bad-dimensions"
	ReasonStartIsGoal    InvalidReason = "start-equals-goal"
	ReasonNotAxisAligned InvalidReason = "not-axis-aligned"
	ReasonOutOfBounds    InvalidReason = "out-of-bounds"
	ReasonDuplicateStart InvalidReason = "duplicate-start"
	ReasonDuplicateGoal  InvalidReason = "duplicate-goal"
	ReasonGoalOnCorridor InvalidReason = "goal-on-corridor"
)

// InvalidSceneError reports the first offending robot. Robot is -1 for
// scene-wide problems.
type InvalidSceneError struct {
	Robot  RobotID
	Other  RobotID
	Reason InvalidReason
}

func (e *InvalidSceneError) Error() string {
	switch e.Reason {
	case ReasonBadDimensions:
		return fmt.Sprintf("core: invalid scene: %s", e.Reason)
	case ReasonDuplicateStart, ReasonDuplicateGoal, ReasonGoalOnCorridor:
		return fmt.Sprintf("core: invalid scene: robot %d: %s (robot %d)", e.Robot, e.Reason, e.Other)
	default:
		return fmt.Sprintf("core: invalid scene: robot %d: %s", e.Robot, e.Reason)
	}
}

// Is lets errors.Is match ErrInvalidScene.
func (e *InvalidSceneError) Is(target error) bool {
	return target == ErrInvalidScene
}

// Path is a start/goal pair as read from a scene description.
type Path struct {
	Start Position
	Goal  Position
}

// Scene is an immutable set of robots on a bounded grid.
type Scene struct {
	Width  int
	Height int
	Robots []Robot
}

// NewScene creates a scene; robot ids follow path order.
func NewScene(width, height int, paths []Path) *Scene {
	robots := make([]Robot, len(paths))
	for i, p := range paths {
		robots[i] = Robot{ID: RobotID(i), Start: p.Start, Goal: p.Goal}
	}
	return &Scene{Width: width, Height: height, Robots: robots}
}

// Paths returns the scene's start/goal pairs in id order.
func (s *Scene) Paths() []Path {
	paths := make([]Path, len(s.Robots))
	for i, r := range s.Robots {
		paths[i] = Path{Start: r.Start, Goal: r.Goal}
	}
	return paths
}

// InBounds checks 0 <= x < Width and 0 <= y < Height.
func (s *Scene) InBounds(p Position) bool {
	return p.X >= 0 && p.X < s.Width && p.Y >= 0 && p.Y < s.Height
}

// Starts returns every robot's start position in id order.
func (s *Scene) Starts() []Position {
	out := make([]Position, len(s.Robots))
	for i, r := range s.Robots {
		out[i] = r.Start
	}
	return out
}

// Validate checks scene consistency: bounds, single shared axis per robot,
// distinct starts and goals.
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return &InvalidSceneError{Robot: -1, Reason: ReasonBadDimensions}
	}

	starts := make(map[Position]RobotID, len(s.Robots))
	goals := make(map[Position]RobotID, len(s.Robots))
	for _, r := range s.Robots {
		switch {
		case r.Start == r.Goal:
			return &InvalidSceneError{Robot: r.ID, Reason: ReasonStartIsGoal}
		case (r.Start.X == r.Goal.X) == (r.Start.Y == r.Goal.Y):
			return &InvalidSceneError{Robot: r.ID, Reason: ReasonNotAxisAligned}
		case !s.InBounds(r.Start) || !s.InBounds(r.Goal):
			return &InvalidSceneError{Robot: r.ID, Reason: ReasonOutOfBounds}
		}
		if other, ok := starts[r.Start]; ok {
			return &InvalidSceneError{Robot: r.ID, Other: other, Reason: ReasonDuplicateStart}
		}
		starts[r.Start] = r.ID
		if other, ok := goals[r.Goal]; ok {
			return &InvalidSceneError{Robot: r.ID, Other: other, Reason: ReasonDuplicateGoal}
		}
		goals[r.Goal] = r.ID
	}
	return nil
}

// ValidateStrict runs Validate and also rejects goals lying on another
// robot's corridor. A robot parked on such a goal can block the other
// robot forever.
func (s *Scene) ValidateStrict() error {
	if err := s.Validate(); err != nil {
		return err
	}
	for _, r := range s.Robots {
		for _, o := range s.Robots {
			if o.ID != r.ID && o.OnCorridor(r.Goal) {
				return &InvalidSceneError{Robot: r.ID, Other: o.ID, Reason: ReasonGoalOnCorridor}
			}
		}
	}
	return nil
}
