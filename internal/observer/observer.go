// Package observer provides adapters for watching a solve as it runs.
package observer

import (
	"sync"

	"github.com/elektrokombinacija/rgm/internal/algo"
	"github.com/elektrokombinacija/rgm/internal/core"
)

// Funcs adapts plain functions to algo.Observer. Nil fields are skipped.
type Funcs struct {
	OnMove  func(id core.RobotID, from, to core.Position)
	OnCycle func(cycle []core.RobotID)
}

// RobotMoved is called after a move is committed.
func (f Funcs) RobotMoved(id core.RobotID, from, to core.Position) {
	if f.OnMove != nil {
		f.OnMove(id, from, to)
	}
}

// CycleIdentified is called before a cycle is resolved.
func (f Funcs) CycleIdentified(cycle []core.RobotID) {
	if f.OnCycle != nil {
		f.OnCycle(cycle)
	}
}

// Multi fans every event out to each observer in order.
type Multi []algo.Observer

func (m Multi) RobotMoved(id core.RobotID, from, to core.Position) {
	for _, o := range m {
		o.RobotMoved(id, from, to)
	}
}

func (m Multi) CycleIdentified(cycle []core.RobotID) {
	for _, o := range m {
		o.CycleIdentified(cycle)
	}
}

// EventKind tags a recorded event.
type EventKind int

const (
	EventMove EventKind = iota
	EventCycle
)

// Event is one recorded observer call. Move is set for EventMove, Cycle
// for EventCycle.
type Event struct {
	Kind  EventKind
	Move  core.Move
	Cycle []core.RobotID
}

// Recorder keeps every event in arrival order. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RobotMoved(id core.RobotID, from, to core.Position) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: EventMove, Move: core.Move{Robot: id, From: from, To: to}})
}

func (r *Recorder) CycleIdentified(cycle []core.RobotID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: EventCycle, Cycle: append([]core.RobotID(nil), cycle...)})
}

// Events returns a copy of all recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Moves returns the recorded moves.
func (r *Recorder) Moves() core.MoveList {
	r.mu.Lock()
	defer r.mu.Unlock()
	var moves core.MoveList
	for _, e := range r.events {
		if e.Kind == EventMove {
			moves = append(moves, e.Move)
		}
	}
	return moves
}

// Cycles returns the recorded cycles.
func (r *Recorder) Cycles() [][]core.RobotID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cycles [][]core.RobotID
	for _, e := range r.events {
		if e.Kind == EventCycle {
			cycles = append(cycles, e.Cycle)
		}
	}
	return cycles
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

var (
	_ algo.Observer = Funcs{}
	_ algo.Observer = Multi(nil)
	_ algo.Observer = (*Recorder)(nil)
)
