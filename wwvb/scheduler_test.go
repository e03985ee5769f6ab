package wwvb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transition struct {
	tick      int
	amplitude Amplitude
}

// manualCarrier is a test double for the carrier and the tick source. It delivers ticks only
// when asked to and records all amplitude changes with the number of the tick that caused them.
type manualCarrier struct {
	tick        func()
	ticks       int
	started     int
	stopped     int
	suppressed  int
	transitions []transition
}

func (m *manualCarrier) SetAmplitude(a Amplitude) {
	m.transitions = append(m.transitions, transition{m.ticks, a})
}

func (m *manualCarrier) Start(tick func()) {
	m.tick = tick
	m.started++
}

func (m *manualCarrier) Stop() {
	m.tick = nil
	m.stopped++
}

func (m *manualCarrier) Suppress() { m.suppressed++ }
func (m *manualCarrier) Release()  { m.suppressed-- }

func (m *manualCarrier) run(n int) {
	for i := 0; i < n && m.tick != nil; i++ {
		m.ticks++
		m.tick()
	}
}

func (m *manualCarrier) reset() {
	m.transitions = nil
}

var testTiming = Timing{Zero: 20, One: 50, Marker: 80, EndOfBit: 100}

func setupScheduler(t *testing.T) (*Scheduler, *manualCarrier) {
	t.Helper()
	carrier := new(manualCarrier)
	scheduler := NewScheduler(carrier, carrier, testTiming)
	scheduler.SetTime(13, 47, 29, 2, 20, DSTNone) // the first data bit is a one
	return scheduler, carrier
}

func TestTimingForRate(t *testing.T) {
	assert.Equal(t, Timing{Zero: 12030, One: 30075, Marker: 48120, EndOfBit: 60150}, TimingForRate(60150))
	assert.Equal(t, Timing{Zero: 200, One: 500, Marker: 800, EndOfBit: 1000}, TimingForRate(1000))
}

func TestScheduler_Envelope(t *testing.T) {
	scheduler, carrier := setupScheduler(t)
	require.Equal(t, Marker, scheduler.Frame().Symbol(0))
	require.Equal(t, One, scheduler.Frame().Symbol(1))

	scheduler.Start()
	assert.True(t, scheduler.Active())
	assert.Equal(t, []transition{{0, Low}}, carrier.transitions)

	carrier.run(testTiming.EndOfBit)
	assert.Equal(t, []transition{{0, Low}, {80, High}, {100, Low}}, carrier.transitions, "marker")
	assert.Equal(t, 1, scheduler.FrameIndex())

	carrier.reset()
	carrier.run(testTiming.One - 1)
	assert.Empty(t, carrier.transitions, "still low")

	carrier.run(1)
	assert.Equal(t, []transition{{150, High}}, carrier.transitions, "high after the low time of a one")

	carrier.run(testTiming.EndOfBit - testTiming.One - 1)
	assert.Equal(t, []transition{{150, High}}, carrier.transitions, "high until the end of the bit")

	carrier.run(1)
	assert.Equal(t, []transition{{150, High}, {200, Low}}, carrier.transitions, "low at the start of the next bit")
	assert.Equal(t, 2, scheduler.FrameIndex())
}

func TestScheduler_FullMinute(t *testing.T) {
	scheduler, carrier := setupScheduler(t)
	expected := scheduler.Frame()
	symbols := make([]Symbol, 0, FrameLength)
	scheduler.OnBit(func(index int, symbol Symbol) {
		assert.Equal(t, len(symbols)%FrameLength, index)
		symbols = append(symbols, symbol)
	})

	scheduler.Start()
	carrier.run(FrameLength*testTiming.EndOfBit - 1)

	require.Len(t, symbols, FrameLength)
	for i, s := range symbols {
		assert.Equal(t, expected.Symbol(i), s, "bit %d", i)
	}
	assert.Equal(t, 59, scheduler.Second())
	assert.Equal(t, 47, scheduler.Minute())

	carrier.run(1)
	assert.Len(t, symbols, FrameLength+1)
	assert.Equal(t, 0, scheduler.FrameIndex())
	assert.Equal(t, 0, scheduler.Second())
	assert.Equal(t, 48, scheduler.Minute())
	assert.Equal(t, 13, scheduler.Hour())
	assert.Equal(t, 48, scheduler.Frame().Minutes())
}

func TestScheduler_LowTimePerSymbol(t *testing.T) {
	scheduler, carrier := setupScheduler(t)
	scheduler.Start()

	for i := 0; i < FrameLength; i++ {
		symbol := scheduler.Frame().Symbol(scheduler.FrameIndex())
		start := carrier.ticks
		carrier.reset()

		carrier.run(testTiming.EndOfBit)

		require.Len(t, carrier.transitions, 2, "bit %d", i)
		assert.Equal(t, transition{start + testTiming.lowTicks(symbol), High}, carrier.transitions[0], "bit %d", i)
		assert.Equal(t, transition{start + testTiming.EndOfBit, Low}, carrier.transitions[1], "bit %d", i)
	}
}

func TestScheduler_Calibration(t *testing.T) {
	scheduler, carrier := setupScheduler(t)
	scheduler.Calibrate(5, -3)
	assert.Equal(t, Calibration{Even: 5, Odd: -3}, scheduler.Calibration())

	var boundaries []int
	scheduler.OnBit(func(index int, _ Symbol) {
		boundaries = append(boundaries, carrier.ticks)
	})
	scheduler.Start()
	carrier.run(404)

	assert.Equal(t, []int{0, 105, 202, 307, 404}, boundaries)
}

func TestScheduler_ResumeKeepsCalibrationParity(t *testing.T) {
	scheduler, carrier := setupScheduler(t)
	scheduler.Calibrate(5, -3)

	var boundaries []int
	scheduler.OnBit(func(index int, _ Symbol) {
		boundaries = append(boundaries, carrier.ticks)
	})
	scheduler.Start()
	carrier.run(150)
	scheduler.Stop()
	scheduler.Resume()
	carrier.run(254)

	assert.Equal(t, []int{0, 105, 202, 307, 404}, boundaries)
	assert.Equal(t, 4, scheduler.FrameIndex())
}

func TestScheduler_StopAndResume(t *testing.T) {
	scheduler, carrier := setupScheduler(t)
	scheduler.Start()
	carrier.run(testTiming.EndOfBit + 30)

	scheduler.Stop()
	assert.False(t, scheduler.Active())
	assert.Equal(t, 1, carrier.stopped)
	carrier.run(1000)
	assert.Equal(t, testTiming.EndOfBit+30, carrier.ticks, "no ticks while stopped")
	scheduler.Tick()
	assert.Equal(t, 1, scheduler.FrameIndex(), "ticks are ignored while idle")

	carrier.reset()
	scheduler.Resume()
	assert.True(t, scheduler.Active())
	assert.Equal(t, 2, carrier.started)
	carrier.run(20)
	assert.Equal(t, []transition{{150, High}}, carrier.transitions, "continues within the bit")
	assert.Equal(t, 1, scheduler.FrameIndex())

	scheduler.Stop()
	scheduler.Start()
	assert.Equal(t, 0, scheduler.FrameIndex(), "start resets the position")
}

func TestScheduler_Timezone(t *testing.T) {
	scheduler, _ := setupScheduler(t)
	scheduler.SetTimezone(-5, -30)
	hours, minutes := scheduler.Timezone()
	assert.Equal(t, -5, hours)
	assert.Equal(t, -30, minutes)

	scheduler.SetTime(2, 30, 1, 3, 20, DSTInEffect)

	assert.Equal(t, "2020-02-29 21:00:00", scheduler.Clock().String())
	assert.Equal(t, 21, scheduler.Frame().Hours())
	assert.Equal(t, 60, scheduler.Frame().DayOfYear())
	assert.Equal(t, DSTInEffect, scheduler.Frame().DST())
}

func TestScheduler_AddTimeInCriticalSection(t *testing.T) {
	scheduler, carrier := setupScheduler(t)
	scheduler.SetTime(13, 47, 29, 2, 20, DSTBegins)
	scheduler.Start()

	Critical(carrier, func() {
		assert.Equal(t, 1, carrier.suppressed)
		scheduler.AddTime(1, 0, 0)
	})

	assert.Equal(t, 0, carrier.suppressed)
	assert.Equal(t, 14, scheduler.Hour())
	assert.Equal(t, 14, scheduler.Frame().Hours())
	assert.Equal(t, DSTBegins, scheduler.Clock().DST, "dst is kept")
}

func TestScheduler_SetClock(t *testing.T) {
	scheduler, _ := setupScheduler(t)

	scheduler.SetClock(Clock{Second: 30, Minute: 5, Hour: 6, Day: 1, Month: 3, Year: 24})

	assert.Equal(t, 30, scheduler.Second())
	assert.Equal(t, 1, scheduler.Day())
	assert.Equal(t, 3, scheduler.Month())
	assert.Equal(t, 24, scheduler.Year())
	assert.Equal(t, 61, scheduler.Clock().DayOfYear)
	assert.Equal(t, 61, scheduler.Frame().DayOfYear())
}

type nullLogger struct{}

func (nullLogger) Info(interface{}, ...interface{}) {}

func TestWaitForMinute(t *testing.T) {
	now := func() time.Time {
		return time.Now().Truncate(time.Minute).Add(time.Minute - 10*time.Millisecond)
	}

	start, ok := WaitForMinute(context.Background(), now)

	assert.True(t, ok)
	assert.Equal(t, 0, start.Second())
	assert.Equal(t, 0, start.Nanosecond())
}

func TestWaitForMinute_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := WaitForMinute(ctx, time.Now)

	assert.False(t, ok)
}

func TestSend(t *testing.T) {
	carrier := new(manualCarrier)
	scheduler := NewScheduler(carrier, carrier, testTiming)
	minute := time.Date(2020, 2, 29, 13, 47, 0, 0, time.UTC)
	now := func() time.Time {
		return minute.Add(-10 * time.Millisecond)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sent := Send(ctx, scheduler, now, DSTInEffect, nullLogger{})

	assert.True(t, sent)
	assert.False(t, scheduler.Active())
	assert.Equal(t, 1, carrier.started)
	assert.Equal(t, 1, carrier.stopped)
	assert.Equal(t, "2020-02-29 13:47:00", scheduler.Clock().String())
	assert.Equal(t, DSTInEffect, scheduler.Frame().DST())
}
