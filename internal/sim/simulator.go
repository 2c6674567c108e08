// Package sim replays RGM move lists and checks them against the grid rules.
//
// A replay enforces:
// - every move keeps its robot on the robot's axis and inside the grid
// - no robot passes through or lands on an occupied cell
// - optionally, every robot ends on its goal
package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/elektrokombinacija/rgm/internal/core"
)

// Replay failures, wrapped in *ReplayError.
var (
	ErrUnknownRobot    = errors.New("sim: unknown robot")
	ErrStalePosition   = errors.New("sim: move does not start at robot position")
	ErrOffAxis         = errors.New("sim: move leaves robot axis")
	ErrOutOfBounds     = errors.New("sim: move leaves the grid")
	ErrCollision       = errors.New("sim: collision")
	ErrGoalsNotReached = errors.New("sim: robots not at goal")
)

// ReplayError pins a failure to a move index. Index is len(moves) for
// end-of-replay failures.
type ReplayError struct {
	Index int
	Move  core.Move
	Err   error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("move %d (%v): %v", e.Index, e.Move, e.Err)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}

// Metrics summarises a replayed move list.
type Metrics struct {
	Robots           int `json:"robots"`
	Moves            int `json:"moves"`
	TotalDistance    int `json:"total_distance"`
	MaxMovesPerRobot int `json:"max_moves_per_robot"`
	RobotsMoved      int `json:"robots_moved"`
	AtGoal           int `json:"at_goal"`
}

// Simulator tracks robot positions while moves are applied.
type Simulator struct {
	mu sync.Mutex

	scene    *core.Scene
	pos      []core.Position
	occupied map[core.Position]core.RobotID
	perRobot []int
	applied  int
	metrics  Metrics
}

// NewSimulator places every robot on its start.
func NewSimulator(scene *core.Scene) *Simulator {
	s := &Simulator{
		scene:    scene,
		pos:      scene.Starts(),
		occupied: make(map[core.Position]core.RobotID, len(scene.Robots)),
		perRobot: make([]int, len(scene.Robots)),
		metrics:  Metrics{Robots: len(scene.Robots)},
	}
	for i, p := range s.pos {
		s.occupied[p] = core.RobotID(i)
	}
	return s
}

// Apply checks and performs one move.
func (s *Simulator) Apply(m core.Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fail := func(err error) error {
		return &ReplayError{Index: s.applied, Move: m, Err: err}
	}

	id := int(m.Robot)
	if id < 0 || id >= len(s.pos) {
		return fail(ErrUnknownRobot)
	}
	if s.pos[id] != m.From {
		return fail(fmt.Errorf("%w: at %v", ErrStalePosition, s.pos[id]))
	}
	robot := s.scene.Robots[id]
	if !robot.OnAxis(m.To) {
		return fail(ErrOffAxis)
	}
	if !s.scene.InBounds(m.To) {
		return fail(ErrOutOfBounds)
	}
	if m.To != m.From {
		d := step(m.From, m.To)
		for p := m.From.Add(d); ; p = p.Add(d) {
			if other, ok := s.occupied[p]; ok {
				return fail(fmt.Errorf("%w: robot %d at %v", ErrCollision, other, p))
			}
			if p == m.To {
				break
			}
		}
	}

	delete(s.occupied, m.From)
	s.occupied[m.To] = m.Robot
	s.pos[id] = m.To
	s.applied++

	if s.perRobot[id] == 0 {
		s.metrics.RobotsMoved++
	}
	s.perRobot[id]++
	s.metrics.Moves++
	s.metrics.TotalDistance += m.Length()
	if s.perRobot[id] > s.metrics.MaxMovesPerRobot {
		s.metrics.MaxMovesPerRobot = s.perRobot[id]
	}
	return nil
}

func step(from, to core.Position) core.Direction {
	switch {
	case to.X > from.X:
		return core.PosX
	case to.X < from.X:
		return core.NegX
	case to.Y > from.Y:
		return core.PosY
	default:
		return core.NegY
	}
}

// Positions returns a copy of the current positions in id order.
func (s *Simulator) Positions() []core.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Position(nil), s.pos...)
}

// OffGoal lists robots not on their goal.
func (s *Simulator) OffGoal() []core.RobotID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []core.RobotID
	for i, r := range s.scene.Robots {
		if s.pos[i] != r.Goal {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Metrics returns current replay metrics.
func (s *Simulator) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.metrics
	m.AtGoal = 0
	for i, r := range s.scene.Robots {
		if s.pos[i] == r.Goal {
			m.AtGoal++
		}
	}
	return m
}

// ExportMetrics writes metrics to a JSON file.
func (s *Simulator) ExportMetrics(path string) error {
	data, err := json.MarshalIndent(s.Metrics(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReplayConfig configures Replay.
type ReplayConfig struct {
	// RequireGoals fails the replay unless every robot ends on its goal.
	RequireGoals bool
}

// DefaultReplayConfig requires goals.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{RequireGoals: true}
}

// Replay applies moves in order from the scene's starts.
func Replay(scene *core.Scene, moves core.MoveList, cfg ReplayConfig) (*Metrics, error) {
	s := NewSimulator(scene)
	for _, m := range moves {
		if err := s.Apply(m); err != nil {
			return nil, err
		}
	}
	if cfg.RequireGoals {
		if left := s.OffGoal(); len(left) > 0 {
			return nil, &ReplayError{
				Index: len(moves),
				Err:   fmt.Errorf("%w: %v", ErrGoalsNotReached, left),
			}
		}
	}
	m := s.Metrics()
	return &m, nil
}
