package carrier

import (
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/ftl/wwvb/wwvb"
)

// LowLevel is the level of the reduced amplitude relative to the full amplitude (-17dB).
const LowLevel = 0.141

const (
	pcmBlockSize = 480
	pcmFullScale = math.MaxInt16
)

// PCM synthesizes the amplitude modulated tone as 16 bit little endian mono samples and writes them to
// an io.Writer, e.g. the stdin of aplay. It is carrier and tick source at the same time: every sample
// is one tick. The writer paces the generation, so an audio device provides the clock for the
// envelope. A Modulator shapes the level changes with a linear ramp to keep the signal free of clicks.
//
// PCM implements wwvb.Suppressor, the generation is paused while suppressed.
type PCM struct {
	out        io.Writer
	sampleRate float64
	modulator  *Modulator
	logger     *log.Logger

	mu      sync.Mutex // held while a block of samples is generated
	samples int
	phase   float64
	block   []byte
	err     error

	stop chan struct{}
	done chan struct{}
}

// NewPCM returns a PCM carrier that writes a tone with the given frequency with the given sample rate.
// The default ramp is 7.5 periods of the tone, the default low level is LowLevel.
func NewPCM(out io.Writer, sampleRate, tone float64, opts ...Option) *PCM {
	o := applyOptions(opts)
	return &PCM{
		out:        out,
		sampleRate: sampleRate,
		modulator:  NewModulator(tone, o.lowLevel, o.ramp.Seconds()),
		logger:     o.logger,
		block:      make([]byte, 0, 2*pcmBlockSize),
	}
}

// Rate returns the number of ticks per second, which is the sample rate.
func (p *PCM) Rate() float64 {
	return p.sampleRate
}

// SetAmplitude sets the level that the envelope moves to.
func (p *PCM) SetAmplitude(a wwvb.Amplitude) {
	p.modulator.Key(a)
}

// Close ends the generation for good, Err reports ErrWriteAborted afterwards.
func (p *PCM) Close() error {
	return p.modulator.Close()
}

// AbortWhenDone closes the PCM output when the given channel is closed.
func (p *PCM) AbortWhenDone(done <-chan struct{}) {
	p.modulator.AbortWhenDone(done)
}

// Start begins to generate samples. A running generation is stopped first.
func (p *PCM) Start(tick func()) {
	p.Stop()
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(tick, p.stop, p.done)
}

// Stop halts the generation and waits until the last block was written.
func (p *PCM) Stop() {
	if p.stop == nil {
		return
	}
	close(p.stop)
	<-p.done
	p.stop = nil
	p.done = nil
}

// Suppress pauses the generation until Release is called.
func (p *PCM) Suppress() {
	p.mu.Lock()
}

// Release continues the generation.
func (p *PCM) Release() {
	p.mu.Unlock()
}

// Err returns the error that ended the generation, if any.
func (p *PCM) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *PCM) run(tick func(), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}

		p.mu.Lock()
		block := p.generate(tick, pcmBlockSize)
		p.mu.Unlock()

		if _, err := p.out.Write(block); err != nil {
			p.fail(errors.Wrap(err, "cannot write PCM samples"))
			p.logger.Error("PCM output failed", "error", err)
			return
		}
		if p.modulator.Closed() {
			p.fail(ErrWriteAborted)
			return
		}
	}
}

func (p *PCM) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// generate ticks n times and returns the corresponding samples. The returned slice is valid until the next call.
func (p *PCM) generate(tick func(), n int) []byte {
	p.block = p.block[:0]
	for i := 0; i < n; i++ {
		tick()
		t := float64(p.samples) / p.sampleRate
		amplitude, frequency, phase := p.modulator.Modulate(t, 0, 0, p.phase)
		sample := int16(math.Round(amplitude * math.Sin(phase) * pcmFullScale))
		p.block = binary.LittleEndian.AppendUint16(p.block, uint16(sample))
		p.phase = math.Mod(phase+2*math.Pi*frequency/p.sampleRate, 2*math.Pi)
		p.samples++
	}
	return p.block
}
