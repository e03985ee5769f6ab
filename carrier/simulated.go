package carrier

import (
	"sync"
	"sync/atomic"

	"github.com/ftl/wwvb/wwvb"
)

// Transition is one amplitude change, recorded with the number of the tick that caused it.
type Transition struct {
	Tick      int
	Amplitude wwvb.Amplitude
}

// Simulated is a tick source that only ticks when it is stepped, and a carrier that records
// every amplitude change. It allows to run a transmitter without any timing constraints.
type Simulated struct {
	mu          sync.Mutex
	tick        func()
	ticks       int
	transitions []Transition
}

// NewSimulated returns a new simulated carrier.
func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) SetAmplitude(a wwvb.Amplitude) {
	s.transitions = append(s.transitions, Transition{Tick: s.ticks, Amplitude: a})
}

func (s *Simulated) Start(tick func()) {
	s.tick = tick
}

func (s *Simulated) Stop() {
	s.tick = nil
}

func (s *Simulated) Suppress() {
	s.mu.Lock()
}

func (s *Simulated) Release() {
	s.mu.Unlock()
}

// Step delivers n ticks and returns the number of ticks that were actually delivered.
// Stepping ends early when the tick source is stopped.
func (s *Simulated) Step(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		if s.tick == nil {
			return i
		}
		s.ticks++
		s.tick()
	}
	return n
}

// Ticks returns the number of ticks that were delivered so far.
func (s *Simulated) Ticks() int {
	return s.ticks
}

// Transitions returns the recorded amplitude changes.
func (s *Simulated) Transitions() []Transition {
	result := make([]Transition, len(s.transitions))
	copy(result, s.transitions)
	return result
}

// Reset clears the recorded amplitude changes.
func (s *Simulated) Reset() {
	s.transitions = nil
}

// LowDurations returns the number of ticks that the amplitude was low before it went high again,
// for each complete low period in the recorded transitions.
func (s *Simulated) LowDurations() []int {
	var result []int
	lowSince := -1
	for _, t := range s.transitions {
		switch {
		case t.Amplitude == wwvb.Low && lowSince < 0:
			lowSince = t.Tick
		case t.Amplitude == wwvb.High && lowSince >= 0:
			result = append(result, t.Tick-lowSince)
			lowSince = -1
		}
	}
	return result
}

// Null is a carrier that discards the amplitude changes and only counts them.
type Null struct {
	changes atomic.Int64
}

func (n *Null) SetAmplitude(wwvb.Amplitude) {
	n.changes.Add(1)
}

// Changes returns the number of amplitude changes so far.
func (n *Null) Changes() int64 {
	return n.changes.Load()
}
