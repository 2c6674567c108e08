package observer

import (
	"sync"

	"github.com/elektrokombinacija/rgm/internal/algo"
	"github.com/elektrokombinacija/rgm/internal/core"
)

// Stepper gates a solve event by event. While paused, each event blocks
// until Step or Resume is called, then is forwarded to the wrapped
// observer. Run the solve on its own goroutine when stepping.
type Stepper struct {
	mu     sync.Mutex
	next   algo.Observer
	paused bool
	events int

	stepChan chan struct{}
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewStepper wraps next; it starts running, not paused.
func NewStepper(next algo.Observer) *Stepper {
	if next == nil {
		next = algo.NopObserver{}
	}
	return &Stepper{
		next:     next,
		stepChan: make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

// Pause makes the next event wait for Step.
func (s *Stepper) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume lets events flow freely again.
func (s *Stepper) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	s.signal()
}

// Step pauses and releases exactly one waiting event.
func (s *Stepper) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.signal()
}

// Stop releases every current and future wait for good.
func (s *Stepper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// Paused reports whether events currently wait for Step.
func (s *Stepper) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Events returns the number of events forwarded so far.
func (s *Stepper) Events() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events
}

func (s *Stepper) signal() {
	select {
	case s.stepChan <- struct{}{}:
	default:
	}
}

// wait blocks until a step is allowed.
func (s *Stepper) wait() {
	s.mu.Lock()
	paused := s.paused
	s.mu.Unlock()
	if !paused {
		return
	}
	select {
	case <-s.stepChan:
	case <-s.stopChan:
	}
}

func (s *Stepper) forwarded() {
	s.mu.Lock()
	s.events++
	s.mu.Unlock()
}

func (s *Stepper) RobotMoved(id core.RobotID, from, to core.Position) {
	s.wait()
	s.next.RobotMoved(id, from, to)
	s.forwarded()
}

func (s *Stepper) CycleIdentified(cycle []core.RobotID) {
	s.wait()
	s.next.CycleIdentified(cycle)
	s.forwarded()
}
