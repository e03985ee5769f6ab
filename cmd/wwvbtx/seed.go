package main

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/pkg/term"

	"github.com/ftl/wwvb/nmea"
	"github.com/ftl/wwvb/timestring"
	"github.com/ftl/wwvb/wwvb"
)

// timeSource returns the current UTC time of the transmitter.
type timeSource func() time.Time

func systemTime() time.Time {
	return time.Now().UTC()
}

// seedTime returns the time source that is configured in the given configuration.
func seedTime(ctx context.Context, config SourceConfig, logger *log.Logger) (timeSource, error) {
	switch config.Type {
	case "system":
		logger.Info("using the system time")
		return systemTime, nil
	case "fixed":
		return fixedTime(config.Date, config.Time, time.Now()), nil
	case "gps":
		return gpsTime(ctx, config, logger)
	default:
		return nil, errors.Errorf("unknown time source %q", config.Type)
	}
}

// fixedTime returns a time source that starts with the given date and time at the given moment.
func fixedTime(date, clock string, base time.Time) timeSource {
	day, month, year := timestring.ParseDate(date)
	hour, minute, second := timestring.ParseTime(clock)
	start := time.Date(wwvb.Century+year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	return func() time.Time {
		return start.Add(time.Since(base))
	}
}

func gpsTime(ctx context.Context, config SourceConfig, logger *log.Logger) (timeSource, error) {
	port, err := term.Open(config.GPSDevice, term.Speed(config.GPSBaud), term.RawMode)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open GPS receiver %s", config.GPSDevice)
	}
	defer port.Close()
	logger.Info("waiting for a GPS fix", "device", config.GPSDevice, "baud", config.GPSBaud)

	waitCtx, cancel := context.WithTimeout(ctx, config.GPSTimeout)
	defer cancel()
	parser := &nmea.Parser{LeapSeconds: config.GPSLeapSeconds}
	fix, received, err := waitForFix(waitCtx, port, parser, logger)
	if err != nil {
		return nil, err
	}

	offset := gpsOffset(fix, received, config.GPSDelay)
	logger.Info("GPS fix", "time", fix.Time.Format(time.RFC3339Nano), "offset", offset)
	if fix.HasPosition {
		position := fix.Position()
		utm, err := fix.UTM()
		if err != nil {
			utm = err.Error()
		}
		logger.Info("GPS position", "lat", position.Lat.Degrees(), "lon", position.Lng.Degrees(), "utm", utm)
	}

	return func() time.Time {
		return time.Now().Add(offset).UTC()
	}, nil
}

// gpsOffset returns the offset of the local clock to the time of the fix. The sentence arrives the
// given delay after the start of the second that it describes.
func gpsOffset(fix nmea.Fix, received time.Time, delay time.Duration) time.Duration {
	return fix.Time.Add(delay).Sub(received)
}

// ahead returns a time source that is ahead of the given one by the latency of the output. A
// transmission that starts at the minute of this source leaves the output at the real minute.
func ahead(now timeSource, latency time.Duration) timeSource {
	return func() time.Time {
		return now().Add(latency)
	}
}

// waitForFix reads NMEA sentences from the given reader until it receives a valid fix with time and date.
// It returns the fix and the local time when it was received.
func waitForFix(ctx context.Context, r io.Reader, parser *nmea.Parser, logger *log.Logger) (nmea.Fix, time.Time, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type chunk struct {
		data     []byte
		received time.Time
		err      error
	}
	chunks := make(chan chunk)
	go func() {
		for {
			buffer := make([]byte, 128)
			n, err := r.Read(buffer)
			select {
			case chunks <- chunk{buffer[:n], time.Now(), err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nmea.Fix{}, time.Time{}, errors.Wrap(ctx.Err(), "no GPS fix")
		case c := <-chunks:
			for _, b := range c.data {
				if err := parser.Parse(b); err != nil {
					logger.Debug("invalid NMEA sentence", "error", err)
					continue
				}
				if !parser.NewFix() {
					continue
				}
				fix := parser.Fix()
				logger.Debug("NMEA", "fix", fix)
				if fix.Valid && !fix.Time.IsZero() {
					return fix, c.received, nil
				}
			}
			if c.err != nil {
				return nmea.Fix{}, time.Time{}, errors.Wrap(c.err, "cannot read from the GPS receiver")
			}
		}
	}
}
