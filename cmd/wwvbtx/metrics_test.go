package main

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ftl/wwvb/wwvb"
)

func TestMetrics_ObserveBit(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	clock := wwvb.NewClock(13, 47, 0, 29, 2, 20, wwvb.DSTNone)

	metrics.ObserveBit(0, wwvb.Marker, clock)
	metrics.ObserveBit(1, wwvb.One, clock)
	metrics.ObserveBit(2, wwvb.Zero, clock)
	metrics.ObserveBit(3, wwvb.Zero, clock)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.frames))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.frameIndex))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.bits.WithLabelValues("zero")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.bits.WithLabelValues("marker")))
	assert.Equal(t, 60.0, testutil.ToFloat64(metrics.dayOfYear))
	assert.Equal(t, float64(time.Date(2020, 2, 29, 13, 47, 0, 0, time.UTC).Unix()), testutil.ToFloat64(metrics.frameTime))
}
