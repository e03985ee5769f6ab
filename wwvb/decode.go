package wwvb

import (
	"errors"
	"fmt"
	"strings"
)

// Errors reported by Decode.
var (
	ErrMissingMarker    = errors.New("wwvb: missing marker")
	ErrUnexpectedMarker = errors.New("wwvb: marker at data position")
	ErrDUT1Sign         = errors.New("wwvb: inconsistent DUT1 sign")
)

// Minutes returns the minute (0-59) that is encoded in the frame.
func (f Frame) Minutes() int {
	return minutesWeights.decode(&f)
}

// Hours returns the hour (0-23) that is encoded in the frame.
func (f Frame) Hours() int {
	return hoursWeights.decode(&f)
}

// DayOfYear returns the day of the year (1-366) that is encoded in the frame.
func (f Frame) DayOfYear() int {
	return dayOfYearWeights.decode(&f)
}

// Year returns the two-digit year that is encoded in the frame.
func (f Frame) Year() int {
	return yearWeights.decode(&f)
}

// LeapYear returns the leap year indicator.
func (f Frame) LeapYear() bool {
	return *leapYearFlag.of(&f) == One
}

// LeapSecond returns the leap second warning.
func (f Frame) LeapSecond() bool {
	return *leapSecondFlag.of(&f) == One
}

// DST returns the daylight savings code.
func (f Frame) DST() DST {
	var result DST
	if *dstHighBit.of(&f) == One {
		result |= 0b10
	}
	if *dstLowBit.of(&f) == One {
		result |= 0b01
	}
	return result
}

// DUT1 returns the UT1-UTC correction in seconds. The result is only valid if ok is true,
// i.e. the sign bits are either "+ - +" = (1, 0, 1) or (0, 1, 0).
func (f Frame) DUT1() (seconds float64, ok bool) {
	seconds = float64(dut1Weights.decode(&f)) / 10
	positive := *dut1PositiveSigns[0].of(&f) == One && *dut1PositiveSigns[1].of(&f) == One
	negative := *dut1NegativeSign.of(&f) == One
	switch {
	case positive && !negative:
		return seconds, true
	case negative && !positive:
		return -seconds, true
	default:
		return 0, false
	}
}

// Decoded contains the values that are encoded in a frame.
type Decoded struct {
	Minute, Hour     int
	Day, Month, Year int
	DayOfYear        int
	LeapYear         bool
	LeapSecond       bool
	DST              DST
	DUT1             float64
}

// Decode returns the values that are encoded in the given frame.
func Decode(f Frame) (Decoded, error) {
	for i := 0; i < FrameLength; i++ {
		isMarker := f.Symbol(i) == Marker
		switch {
		case IsMarkerPosition(i) && !isMarker:
			return Decoded{}, fmt.Errorf("%w at %d", ErrMissingMarker, i)
		case !IsMarkerPosition(i) && isMarker:
			return Decoded{}, fmt.Errorf("%w %d", ErrUnexpectedMarker, i)
		}
	}
	dut1, ok := f.DUT1()
	if !ok {
		return Decoded{}, ErrDUT1Sign
	}

	result := Decoded{
		Minute:     f.Minutes(),
		Hour:       f.Hours(),
		Year:       f.Year(),
		DayOfYear:  f.DayOfYear(),
		LeapYear:   f.LeapYear(),
		LeapSecond: f.LeapSecond(),
		DST:        f.DST(),
		DUT1:       dut1,
	}
	result.Day, result.Month = FromDayOfYear(result.DayOfYear, result.LeapYear)
	return result, nil
}

func (d Decoded) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d doty=%d dut1=%+.1f leap year=%t leap second=%t daylight savings time %s",
		Century+d.Year, d.Month, d.Day, d.Hour, d.Minute, d.DayOfYear, d.DUT1, d.LeapYear, d.LeapSecond, d.DST)
}

// String renders the raw symbols of the frame, one subframe per line.
func (f Frame) String() string {
	var b strings.Builder
	b.WriteString("INDX: [0 1 2 3 4 5 6 7 8 9]\n")
	for id, subframe := range f {
		fmt.Fprintf(&b, "%s: [", SubframeID(id))
		for i, s := range subframe {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(s.String())
		}
		b.WriteString("]\n")
	}
	return b.String()
}
