package wwvb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	M = Marker
	O = One
	Z = Zero
)

func TestEncode(t *testing.T) {
	expected := Frame{
		{M, O, Z, Z, Z, Z, O, O, O, M}, // 47 minutes
		{Z, Z, Z, O, Z, Z, Z, O, O, M}, // 13 hours
		{Z, Z, Z, Z, Z, Z, O, O, Z, M}, // day 60 (tens)
		{Z, Z, Z, Z, Z, Z, O, Z, O, M}, // day 60 (units), DUT1 sign +
		{Z, Z, Z, Z, Z, Z, Z, O, Z, M}, // DUT1 0.0, year 20 (tens)
		{Z, Z, Z, Z, Z, O, Z, O, O, M}, // year 20 (units), leap year, DST in effect
	}

	frame := Encode(NewClock(13, 47, 0, 29, 2, 20, DSTInEffect))

	assert.Equal(t, expected, frame)
}

func TestEncode_Markers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		frame := Encode(clockOf(drawTime(t)))

		markers := make([]int, 0, 7)
		for i := 0; i < FrameLength; i++ {
			if frame.Symbol(i) == Marker {
				markers = append(markers, i)
			}
		}
		assert.Equal(t, []int{0, 9, 19, 29, 39, 49, 59}, markers)
	})
}

func TestFieldRoundTrip(t *testing.T) {
	testCases := []struct {
		desc     string
		table    weightTable
		min, max int
	}{
		{"minutes", minutesWeights, 0, 59},
		{"hours", hoursWeights, 0, 23},
		{"day of year", dayOfYearWeights, 1, 366},
		{"year", yearWeights, 0, 99},
		{"dut1", dut1Weights, 0, 9},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			frame := blankFrame()
			for value := tC.min; value <= tC.max; value++ {
				tC.table.encode(&frame, value)
				assert.Equal(t, value, tC.table.decode(&frame))
			}
		})
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		clock := clockOf(drawTime(t))
		clock.DST = DST(rapid.IntRange(0, 3).Draw(t, "dst"))

		decoded, err := Decode(Encode(clock))
		require.NoError(t, err)

		assert.Equal(t, clock.Minute, decoded.Minute)
		assert.Equal(t, clock.Hour, decoded.Hour)
		assert.Equal(t, clock.Day, decoded.Day)
		assert.Equal(t, clock.Month, decoded.Month)
		assert.Equal(t, clock.Year, decoded.Year)
		assert.Equal(t, clock.DayOfYear, decoded.DayOfYear)
		assert.Equal(t, clock.LeapYear, decoded.LeapYear)
		assert.Equal(t, clock.DST, decoded.DST)
		assert.False(t, decoded.LeapSecond)
		assert.Equal(t, 0.0, decoded.DUT1)
	})
}

func TestDecode_Invalid(t *testing.T) {
	valid := Encode(NewClock(13, 47, 0, 29, 2, 20, DSTNone))

	missingMarker := valid
	missingMarker[Hours][9] = Zero
	_, err := Decode(missingMarker)
	assert.ErrorIs(t, err, ErrMissingMarker)

	unexpectedMarker := valid
	unexpectedMarker[Year][4] = Marker
	_, err = Decode(unexpectedMarker)
	assert.ErrorIs(t, err, ErrUnexpectedMarker)

	wrongSign := valid
	wrongSign[DUT1][6] = Zero
	_, err = Decode(wrongSign)
	assert.ErrorIs(t, err, ErrDUT1Sign)
}

func TestFrame_DUT1(t *testing.T) {
	frame := Encode(NewClock(0, 0, 0, 1, 1, 21, DSTNone))
	dut1, ok := frame.DUT1()
	assert.True(t, ok)
	assert.Equal(t, 0.0, dut1)

	frame[DUT1][6] = Zero
	frame[DUT1][7] = One
	frame[DUT1][8] = Zero
	dut1Weights.encode(&frame, 3)
	dut1, ok = frame.DUT1()
	assert.True(t, ok)
	assert.InDelta(t, -0.3, dut1, 1e-9)
}

func TestEncoder_UpdatesOnlyChangedFields(t *testing.T) {
	encoder := NewEncoder()
	clock := NewClock(23, 59, 58, 31, 12, 19, DSTNone)

	assert.Equal(t, AllFields, encoder.Update(&clock), "first update")
	assert.Equal(t, NoFields, encoder.Update(&clock), "same clock")

	clock.AdvanceOneSecond()
	assert.Equal(t, NoFields, encoder.Update(&clock), "only seconds changed")

	clock.AdvanceOneSecond()
	assert.Equal(t, FieldMinute|FieldHour|FieldDayOfYear|FieldYear|FieldLeapYear, encoder.Update(&clock), "new year")
	assert.Equal(t, Encode(clock), encoder.Frame())

	clock.Add(0, 1, 0)
	assert.Equal(t, FieldMinute, encoder.Update(&clock), "next minute")

	clock.DST = DSTBegins
	assert.Equal(t, FieldDST, encoder.Update(&clock), "dst")
	assert.Equal(t, Encode(clock), encoder.Frame())
}

func TestEncoder_SkipsUnchangedSubframes(t *testing.T) {
	encoder := NewEncoder()
	clock := NewClock(13, 47, 0, 29, 2, 20, DSTNone)
	encoder.Update(&clock)

	encoder.frame[Hours][2] = One // would not survive a re-derivation of the hours
	clock.Add(0, 1, 0)
	encoder.Update(&clock)

	assert.Equal(t, One, encoder.frame[Hours][2])
	assert.Equal(t, 48, encoder.frame.Minutes())
}

func TestFrame_String(t *testing.T) {
	frame := Encode(NewClock(13, 47, 0, 29, 2, 20, DSTInEffect))

	actual := frame.String()

	assert.Contains(t, actual, "INDX: [0 1 2 3 4 5 6 7 8 9]\n")
	assert.Contains(t, actual, "MINS: [M 1 0 0 0 0 1 1 1 M]\n")
	assert.Contains(t, actual, "MISC: [0 0 0 0 0 1 0 1 1 M]\n")
}
