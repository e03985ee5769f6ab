package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/pkg/errors"

	"github.com/ftl/wwvb/carrier"
	"github.com/ftl/wwvb/wwvb"
)

// dumpRate is the tick rate of the simulated minute, one tick per millisecond.
const dumpRate = 1000

// dump prints the frame of the minute that follows the given time, decodes it and simulates its envelope.
func dump(w io.Writer, now time.Time, utcHours, utcMinutes int, dst wwvb.DST, timestampFormat string) error {
	format, err := strftime.New(timestampFormat)
	if err != nil {
		return errors.Wrapf(err, "invalid timestamp format %q", timestampFormat)
	}

	sim := carrier.NewSimulated()
	timing := wwvb.TimingForRate(dumpRate)
	scheduler := wwvb.NewScheduler(sim, sim, timing)
	scheduler.SetTimezone(utcHours, utcMinutes)
	start := now.Truncate(time.Minute).Add(time.Minute)
	scheduler.SetTime(start.Hour(), start.Minute(), start.Day(), int(start.Month()), start.Year()%100, dst)

	frame := scheduler.Frame()
	fmt.Fprintf(w, "%s UTC, transmitted as %s\n\n", format.FormatString(start), scheduler.Clock())
	fmt.Fprint(w, frame.String())
	decoded, err := wwvb.Decode(frame)
	if err != nil {
		return errors.Wrap(err, "invalid frame")
	}
	fmt.Fprintf(w, "\n%s\n\n", decoded)

	scheduler.Start()
	sim.Step(wwvb.FrameLength * timing.EndOfBit)
	scheduler.Stop()

	fmt.Fprintln(w, "low time in ms:")
	durations := sim.LowDurations()
	for id := wwvb.SubframeID(0); id < wwvb.SubframeCount; id++ {
		values := make([]string, 0, wwvb.SubframeLength)
		for i := 0; i < wwvb.SubframeLength; i++ {
			index := int(id)*wwvb.SubframeLength + i
			if index < len(durations) {
				values = append(values, fmt.Sprintf("%3d", durations[index]))
			}
		}
		fmt.Fprintf(w, "%s: [%s]\n", id, strings.Join(values, " "))
	}
	fmt.Fprintf(w, "\nafter one minute: %s\n", scheduler.Clock())
	return nil
}
