package carrier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ftl/wwvb/wwvb"
)

func TestModulator_Ramp(t *testing.T) {
	m := NewModulator(1000, 0.2, 0.01)

	testCases := []struct {
		desc      string
		key       wwvb.Amplitude
		t         float64
		amplitude float64
	}{
		{"starts low", wwvb.Low, 0, 0.2},
		{"key down", wwvb.High, 1.0, 0.2},
		{"half way up", wwvb.High, 1.005, 0.6},
		{"full", wwvb.High, 1.02, 1.0},
		{"key up", wwvb.Low, 2.0, 1.0},
		{"half way down", wwvb.Low, 2.005, 0.6},
		{"reduced", wwvb.Low, 2.5, 0.2},
	}
	for _, tC := range testCases {
		m.Key(tC.key)
		amplitude, frequency, phase := m.Modulate(tC.t, 0, 0, 1.5)
		assert.InDelta(t, tC.amplitude, amplitude, 1e-9, tC.desc)
		assert.Equal(t, 1000.0, frequency, tC.desc)
		assert.Equal(t, 1.5, phase, tC.desc)
	}
}

func TestModulator_ChangeWithinRamp(t *testing.T) {
	m := NewModulator(1000, 0.2, 0.01)

	m.Key(wwvb.High)
	m.Modulate(0, 0, 0, 0)
	amplitude, _, _ := m.Modulate(0.005, 0, 0, 0)
	assert.InDelta(t, 0.6, amplitude, 1e-9)

	m.Key(wwvb.Low)
	amplitude, _, _ = m.Modulate(0.005, 0, 0, 0)
	assert.InDelta(t, 0.6, amplitude, 1e-9, "continues from the current level")
	amplitude, _, _ = m.Modulate(0.01, 0, 0, 0)
	assert.InDelta(t, 0.4, amplitude, 1e-9)
	amplitude, _, _ = m.Modulate(0.02, 0, 0, 0)
	assert.InDelta(t, 0.2, amplitude, 1e-9)
}

func TestModulator_DefaultWindow(t *testing.T) {
	m := NewModulator(1000, LowLevel, 0)

	assert.InDelta(t, 0.0075, m.window, 1e-12)
}

func TestModulator_Close(t *testing.T) {
	m := NewModulator(1000, LowLevel, 0)
	m.Key(wwvb.High)
	m.Modulate(0, 0, 0, 0)

	assert.False(t, m.Closed())
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close(), "closing twice")

	amplitude, frequency, phase := m.Modulate(1, 0, 0, 0.25)
	assert.Equal(t, 0.0, amplitude)
	assert.Equal(t, 1000.0, frequency)
	assert.Equal(t, 0.25, phase)
}

func TestModulator_AbortWhenDone(t *testing.T) {
	m := NewModulator(1000, LowLevel, 0)
	done := make(chan struct{})

	m.AbortWhenDone(done)
	assert.False(t, m.Closed())
	close(done)

	assert.Eventually(t, m.Closed, time.Second, time.Millisecond)
}
