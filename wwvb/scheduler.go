package wwvb

import "math"

// Timing contains the number of carrier ticks that each symbol is sent with reduced amplitude,
// and the number of ticks of one bit period.
type Timing struct {
	Zero     int
	One      int
	Marker   int
	EndOfBit int
}

// TimingForRate returns the timing for a tick source with the given rate in Hz.
func TimingForRate(rate float64) Timing {
	ticks := func(s Symbol) int {
		return int(math.Round(s.LowFraction() * rate))
	}
	return Timing{
		Zero:     ticks(Zero),
		One:      ticks(One),
		Marker:   ticks(Marker),
		EndOfBit: int(math.Round(rate)),
	}
}

func (t Timing) lowTicks(s Symbol) int {
	switch s {
	case Zero:
		return t.Zero
	case One:
		return t.One
	default:
		return t.Marker
	}
}

// Calibration contains the tick corrections that are added to the end of a bit. Even is applied
// to the bits with an even index within the minute, Odd to the bits with an odd index.
type Calibration struct {
	Even int
	Odd  int
}

// Scheduler generates the WWVB envelope from the ticks of a TickSource. At each bit boundary it
// advances its clock by one second and updates the frame accordingly.
//
// While the scheduler is active, its clock, frame and counters are owned by the tick context.
// Any other access must be wrapped with Critical, except Stop and Resume.
type Scheduler struct {
	carrier Carrier
	ticks   TickSource
	timing  Timing

	calibration     [2]int
	timezoneHours   int
	timezoneMinutes int
	onBit           func(index int, symbol Symbol)

	clock   Clock
	encoder *Encoder

	active     bool
	high       bool
	elapsed    int
	lowTicks   int
	frameIndex int
	odd        bool
}

// NewScheduler returns an idle scheduler that drives the given carrier with the ticks of the given source.
func NewScheduler(carrier Carrier, ticks TickSource, timing Timing) *Scheduler {
	result := &Scheduler{
		carrier: carrier,
		ticks:   ticks,
		timing:  timing,
		encoder: NewEncoder(),
	}
	result.clock = NewClock(0, 0, 0, 1, 1, 0, DSTNone)
	result.encoder.Update(&result.clock)
	result.lowTicks = timing.lowTicks(result.encoder.Symbol(0))
	return result
}

// Calibrate sets the tick corrections for the end of the even and the odd bits.
func (s *Scheduler) Calibrate(even, odd int) {
	s.calibration[0] = even
	s.calibration[1] = odd
}

// Calibration returns the current tick corrections.
func (s *Scheduler) Calibration() Calibration {
	return Calibration{Even: s.calibration[0], Odd: s.calibration[1]}
}

// SetTimezone sets the static offset to UTC that is applied by SetTime.
func (s *Scheduler) SetTimezone(hours, minutes int) {
	s.timezoneHours = hours
	s.timezoneMinutes = minutes
}

// Timezone returns the static offset to UTC.
func (s *Scheduler) Timezone() (hours, minutes int) {
	return s.timezoneHours, s.timezoneMinutes
}

// OnBit registers a function that is called from the tick context at the start of each bit.
// The function must not block.
func (s *Scheduler) OnBit(f func(index int, symbol Symbol)) {
	s.onBit = f
}

// SetTime sets the clock to the start of the given minute and applies the timezone offset.
// The year is given with two digits. No range checking is performed.
func (s *Scheduler) SetTime(hour, minute, day, month, year int, dst DST) {
	s.clock = NewClock(hour, minute, 0, day, month, year, dst)
	s.clock.Add(s.timezoneHours, s.timezoneMinutes, 0)
	s.encoder.Update(&s.clock)
}

// SetClock sets the clock to the given value as it is.
func (s *Scheduler) SetClock(c Clock) {
	c.derive()
	s.clock = c
	s.encoder.Update(&s.clock)
}

// AddTime adds the given offset to the clock.
func (s *Scheduler) AddTime(hours, minutes, seconds int) {
	s.clock.Add(hours, minutes, seconds)
	s.encoder.Update(&s.clock)
}

// Clock returns the current clock.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Frame returns the current frame.
func (s *Scheduler) Frame() Frame {
	return s.encoder.Frame()
}

// FrameIndex returns the index of the bit that is currently sent.
func (s *Scheduler) FrameIndex() int {
	return s.frameIndex
}

// Second returns the second of the transmitted time.
func (s *Scheduler) Second() int { return s.clock.Second }

// Minute returns the minute of the transmitted time.
func (s *Scheduler) Minute() int { return s.clock.Minute }

// Hour returns the hour of the transmitted time.
func (s *Scheduler) Hour() int { return s.clock.Hour }

// Day returns the day of the month of the transmitted time.
func (s *Scheduler) Day() int { return s.clock.Day }

// Month returns the month of the transmitted time.
func (s *Scheduler) Month() int { return s.clock.Month }

// Year returns the two digit year of the transmitted time.
func (s *Scheduler) Year() int { return s.clock.Year }

// Active reports whether the scheduler is driving the carrier.
func (s *Scheduler) Active() bool {
	return s.active
}

// Start begins the transmission of a frame with the first bit. The caller is responsible
// to call Start at the start of a minute.
func (s *Scheduler) Start() {
	if s.active {
		s.Stop()
	}
	s.frameIndex = 0
	s.odd = false
	s.elapsed = 0
	s.high = false
	symbol := s.encoder.Symbol(s.frameIndex)
	s.lowTicks = s.timing.lowTicks(symbol)
	s.carrier.SetAmplitude(Low)
	if s.onBit != nil {
		s.onBit(s.frameIndex, symbol)
	}
	s.Resume()
}

// Resume continues the transmission at the bit where it was stopped.
func (s *Scheduler) Resume() {
	if s.active {
		return
	}
	s.active = true
	s.ticks.Start(s.Tick)
}

// Stop halts the tick source and the transmission.
func (s *Scheduler) Stop() {
	if !s.active {
		return
	}
	s.ticks.Stop()
	s.active = false
}

// Tick advances the envelope by one carrier period. It is called by the TickSource.
func (s *Scheduler) Tick() {
	if !s.active {
		return
	}
	s.elapsed++

	if s.elapsed >= s.timing.EndOfBit+s.calibration[s.parity()] {
		s.carrier.SetAmplitude(Low)
		s.high = false
		s.elapsed = 0
		s.odd = !s.odd
		s.frameIndex = (s.frameIndex + 1) % FrameLength

		s.clock.AdvanceOneSecond()
		s.encoder.Update(&s.clock)

		symbol := s.encoder.Symbol(s.frameIndex)
		s.lowTicks = s.timing.lowTicks(symbol)
		if s.onBit != nil {
			s.onBit(s.frameIndex, symbol)
		}
		return
	}

	if !s.high && s.elapsed >= s.lowTicks {
		s.carrier.SetAmplitude(High)
		s.high = true
	}
}

func (s *Scheduler) parity() int {
	if s.odd {
		return 1
	}
	return 0
}
