/*
Package carrier contains the implementations of the carrier and tick source interfaces of package wwvb.

	Clocked    software tick source driven by the monotonic system clock
	GPIO       carrier that switches a GPIO line of a Linux character device
	PCM        carrier and tick source that synthesizes the modulated signal as audio samples
	Simulated  manually stepped tick source that records all amplitude changes
	Null       carrier that only counts the amplitude changes
*/
package carrier

import (
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// ErrClosed indicates the use of a carrier after Close.
var ErrClosed = errors.New("carrier: closed")

type options struct {
	logger     *log.Logger
	resolution time.Duration
	ramp       time.Duration
	lowLevel   float64
	invert     bool
	consumer   string
}

func defaultOptions() options {
	return options{
		logger:     log.New(io.Discard),
		resolution: time.Millisecond,
		lowLevel:   LowLevel,
		consumer:   "wwvb",
	}
}

// Option configures a carrier or tick source. Options that do not apply to a type are ignored.
type Option func(*options)

// WithLogger sets the logger that is used to report problems.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithResolution sets the interval in which Clocked delivers the ticks that became due.
func WithResolution(resolution time.Duration) Option {
	return func(o *options) {
		o.resolution = resolution
	}
}

// WithRamp sets the time that PCM needs to move from one amplitude level to the other.
func WithRamp(ramp time.Duration) Option {
	return func(o *options) {
		o.ramp = ramp
	}
}

// WithLowLevel sets the reduced amplitude of PCM relative to the full amplitude.
func WithLowLevel(level float64) Option {
	return func(o *options) {
		o.lowLevel = level
	}
}

// Inverted drives the GPIO line low for the high amplitude.
func Inverted(invert bool) Option {
	return func(o *options) {
		o.invert = invert
	}
}

// WithConsumer sets the consumer label of a requested GPIO line.
func WithConsumer(consumer string) Option {
	return func(o *options) {
		o.consumer = consumer
	}
}

func applyOptions(opts []Option) options {
	result := defaultOptions()
	for _, o := range opts {
		o(&result)
	}
	return result
}
