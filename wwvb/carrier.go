package wwvb

// Carrier switches the amplitude of the physical carrier signal.
// SetAmplitude is called from the tick context and must not block.
type Carrier interface {
	SetAmplitude(Amplitude)
}

// TickSource delivers a periodic tick at the carrier frequency.
// Start begins to call tick once per period, Stop halts the ticks. When Stop returns,
// no tick is running anymore and no further tick is delivered until the next Start.
type TickSource interface {
	Start(tick func())
	Stop()
}

// Suppressor is implemented by tick sources that can hold back their ticks for a while.
// Ticks that become due while suppressed are delivered after Release.
type Suppressor interface {
	Suppress()
	Release()
}

// Critical runs f while the ticks of the given source are suppressed. Use it for every access to
// an active Scheduler from outside of the tick context, except Stop and Resume.
// If the source is no Suppressor, f is just called.
func Critical(source TickSource, f func()) {
	s, ok := source.(Suppressor)
	if !ok {
		f()
		return
	}
	s.Suppress()
	defer s.Release()
	f()
}
