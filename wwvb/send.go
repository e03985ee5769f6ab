package wwvb

import (
	"context"
	"time"
)

// Logger is used to report the progress of a transmission.
type Logger interface {
	Info(msg interface{}, keyvals ...interface{})
}

// Send waits for the start of the next minute of the given time source, sets the scheduler to this minute
// and transmits until the given context is done. The time source is expected to return UTC.
// Send returns false if the context is done before the transmission started.
func Send(ctx context.Context, scheduler *Scheduler, now func() time.Time, dst DST, logger Logger) bool {
	defer scheduler.Stop()

	logger.Info("waiting for the next minute")
	start, ok := WaitForMinute(ctx, now)
	if !ok {
		return false
	}

	scheduler.SetTime(start.Hour(), start.Minute(), start.Day(), int(start.Month()), start.Year()%100, dst)
	clock := scheduler.Clock()
	scheduler.Start()
	logger.Info("transmission start", "time", start.Format(time.RFC3339), "clock", clock)

	<-ctx.Done()

	scheduler.Stop()
	logger.Info("transmission end", "clock", scheduler.Clock())
	return true
}

// WaitForMinute blocks until the start of the next minute of the given time source and returns this minute.
// It returns false if the context is done before.
func WaitForMinute(ctx context.Context, now func() time.Time) (time.Time, bool) {
	current := now()
	next := current.Truncate(time.Minute).Add(time.Minute)
	select {
	case <-ctx.Done():
		return time.Time{}, false
	case <-time.After(next.Sub(current)):
		return next, true
	}
}
