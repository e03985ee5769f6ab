package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ftl/wwvb/carrier"
	"github.com/ftl/wwvb/wwvb"
)

func TestHold(t *testing.T) {
	sim := carrier.NewSimulated()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	hold(ctx, sim, sim, wwvb.High, discard)

	assert.Equal(t, []carrier.Transition{{Tick: 0, Amplitude: wwvb.High}}, sim.Transitions())
	assert.Equal(t, 0, sim.Step(10), "ticks stopped")
}

func TestParseHold(t *testing.T) {
	testCases := []struct {
		value    string
		expected wwvb.Amplitude
	}{
		{"low", wwvb.Low},
		{"high", wwvb.High},
		{"HIGH", wwvb.High},
	}
	for _, tC := range testCases {
		t.Run(tC.value, func(t *testing.T) {
			actual, err := parseHold(tC.value)
			assert.NoError(t, err)
			assert.Equal(t, tC.expected, actual)
		})
	}

	_, err := parseHold("medium")
	assert.Error(t, err)
}
