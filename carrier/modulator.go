package carrier

import (
	"errors"
	"math"

	"github.com/ftl/wwvb/wwvb"
)

// ErrWriteAborted indicates that the PCM output was closed while it was still generating samples.
var ErrWriteAborted = errors.New("carrier: write aborted")

// Modulator shapes the amplitude envelope of a keyed tone. Key selects the level, Modulate moves
// the amplitude to this level along a linear ramp of the given window.
type Modulator struct {
	closed chan struct{}

	pitchFrequency float64
	window         float64
	lowLevel       float64

	keyDown   bool
	keyedDown bool
	edge      float64
	from      float64
	current   float64
}

// NewModulator returns a modulator for a tone with the given frequency that starts with the reduced amplitude.
// If window is not positive, the ramp takes 7.5 periods of the tone.
func NewModulator(frequency, lowLevel, window float64) *Modulator {
	if window <= 0 {
		window = 7.5 / frequency
	}
	return &Modulator{
		closed:         make(chan struct{}),
		pitchFrequency: frequency,
		window:         window,
		lowLevel:       lowLevel,
		from:           lowLevel,
		current:        lowLevel,
	}
}

// Close silences the modulator for good.
func (m *Modulator) Close() error {
	select {
	case <-m.closed:
	default:
		close(m.closed)
	}
	return nil
}

// AbortWhenDone closes the modulator when the given channel is closed.
func (m *Modulator) AbortWhenDone(done <-chan struct{}) {
	go func() {
		select {
		case <-done:
			m.Close()
		case <-m.closed:
		}
	}()
}

// Closed reports whether the modulator was closed.
func (m *Modulator) Closed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

// Key selects the level that the envelope moves to.
func (m *Modulator) Key(a wwvb.Amplitude) {
	m.keyDown = a == wwvb.High
}

// Modulate returns amplitude, frequency and phase of the tone at the time t in seconds.
// The given amplitude and frequency are ignored, the phase is passed through.
func (m *Modulator) Modulate(t, a, f, p float64) (amplitude, frequency, phase float64) {
	if m.Closed() {
		return 0, m.pitchFrequency, p
	}
	if m.keyDown != m.keyedDown {
		m.keyedDown = m.keyDown
		m.edge = t
		m.from = m.current
	}

	target := m.lowLevel
	if m.keyedDown {
		target = 1
	}
	progress := math.Min(1, (t-m.edge)/m.window)
	amplitude = m.from + (target-m.from)*progress
	m.current = amplitude

	return amplitude, m.pitchFrequency, p
}
