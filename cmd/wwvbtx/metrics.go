package main

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ftl/wwvb/wwvb"
)

// Metrics holds the Prometheus collectors of the transmitter. They are updated from the tick context and must not block.
type Metrics struct {
	bits       *prometheus.CounterVec // transmitted bits per symbol
	frames     prometheus.Counter     // started frames
	frameIndex prometheus.Gauge       // index of the current bit
	frameTime  prometheus.Gauge       // unix time of the transmitted minute
	dayOfYear  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		bits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wwvb_bits_total",
				Help: "Number of transmitted bits by symbol",
			},
			[]string{"symbol"},
		),
		frames: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wwvb_frames_total",
				Help: "Number of started frames",
			},
		),
		frameIndex: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wwvb_frame_index",
				Help: "Index of the bit that is currently transmitted (0-59)",
			},
		),
		frameTime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wwvb_frame_timestamp_seconds",
				Help: "Unix time of the minute that is currently transmitted, including the UTC offset",
			},
		),
		dayOfYear: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wwvb_day_of_year",
				Help: "Day of the year that is currently transmitted",
			},
		),
	}
}

// ObserveBit records the start of a bit with the given clock.
func (m *Metrics) ObserveBit(index int, symbol wwvb.Symbol, clock wwvb.Clock) {
	m.bits.WithLabelValues(symbolLabel(symbol)).Inc()
	m.frameIndex.Set(float64(index))
	if index != 0 {
		return
	}
	m.frames.Inc()
	minute := time.Date(clock.FourDigitYear(), time.Month(clock.Month), clock.Day, clock.Hour, clock.Minute, 0, 0, time.UTC)
	m.frameTime.Set(float64(minute.Unix()))
	m.dayOfYear.Set(float64(clock.DayOfYear))
}

func symbolLabel(s wwvb.Symbol) string {
	switch s {
	case wwvb.Zero:
		return "zero"
	case wwvb.One:
		return "one"
	default:
		return "marker"
	}
}

// serveMetrics serves the metrics of the given gatherer on /metrics until the context is done.
func serveMetrics(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", "error", err)
	}
}
