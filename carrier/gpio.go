package carrier

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"

	"github.com/ftl/wwvb/wwvb"
)

// outputLine is the part of a requested GPIO line that is used by GPIO.
type outputLine interface {
	SetValue(int) error
	Close() error
}

// GPIO switches the amplitude of an external transmitter with one output line of a GPIO chip.
// The line is active for the high amplitude, unless the carrier is inverted.
type GPIO struct {
	logger *log.Logger
	active int

	mu     sync.Mutex
	line   outputLine
	err    error
	closed bool
}

// NewGPIO requests the given line of the given chip (e.g. "gpiochip0") as output.
// The line starts with the low amplitude.
func NewGPIO(chip string, offset int, opts ...Option) (*GPIO, error) {
	o := applyOptions(opts)
	active := activeValue(o.invert)
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(1-active),
		gpiocdev.WithConsumer(o.consumer),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot request GPIO line %s:%d", chip, offset)
	}
	o.logger.Debug("GPIO line requested", "chip", chip, "offset", offset, "inverted", o.invert)
	return newGPIO(line, o), nil
}

func newGPIO(line outputLine, o options) *GPIO {
	return &GPIO{
		logger: o.logger,
		active: activeValue(o.invert),
		line:   line,
	}
}

func activeValue(invert bool) int {
	if invert {
		return 0
	}
	return 1
}

// SetAmplitude drives the line. The first error is logged and kept, see Err.
func (g *GPIO) SetAmplitude(a wwvb.Amplitude) {
	value := 1 - g.active
	if a == wwvb.High {
		value = g.active
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	err := g.line.SetValue(value)
	if err != nil && g.err == nil {
		g.err = errors.Wrap(err, "cannot set GPIO line")
		g.logger.Error("GPIO failure", "error", err)
	}
}

// Err returns the first error that occurred when the line was driven.
func (g *GPIO) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Close releases the line.
func (g *GPIO) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	g.closed = true
	return g.line.Close()
}
