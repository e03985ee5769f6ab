/*
Package wwvb implements a transmitter for the WWVB time code.

A WWVB frame takes one minute to send and starts at the start of a minute. It contains six subframes
of ten symbols each, one symbol per second. Each symbol reduces the carrier amplitude for a part of
its second: 0.2s for a zero, 0.5s for a one, and 0.8s for a marker. The carrier is at full amplitude
for the remainder of the second.

The Scheduler turns a frame into this envelope. It is driven by the ticks of an injected TickSource
at the carrier frequency and switches an injected Carrier between the two amplitude levels.

See https://www.nist.gov/pml/time-and-frequency-division/time-distribution/radio-station-wwvb
for the description of the time code format.
*/
package wwvb

import "fmt"

// Symbol in the WWVB time code.
type Symbol uint8

// The three WWVB symbols.
const (
	Zero Symbol = iota
	One
	Marker
)

var lowFractions = [...]float64{
	Zero:   0.2,
	One:    0.5,
	Marker: 0.8,
}

// LowFraction returns the fraction of the one second bit period that is sent with reduced amplitude.
func (s Symbol) LowFraction() float64 {
	return lowFractions[s]
}

func (s Symbol) String() string {
	switch s {
	case Zero:
		return "0"
	case One:
		return "1"
	case Marker:
		return "M"
	default:
		return fmt.Sprintf("Symbol(%d)", uint8(s))
	}
}

func symbolOf(b bool) Symbol {
	if b {
		return One
	}
	return Zero
}

// Amplitude level of the carrier.
type Amplitude uint8

// The two carrier amplitude levels. Low is about 5% duty cycle (-17dB), High about 50%.
const (
	Low Amplitude = iota
	High
)

func (a Amplitude) String() string {
	if a == High {
		return "high"
	}
	return "low"
}
