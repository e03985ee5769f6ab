package wwvb

// SubframeID identifies one of the six subframes of a frame.
type SubframeID int

// The six subframes in transmission order.
const (
	Minutes SubframeID = iota
	Hours
	DayOfYear
	DUT1
	Year
	Misc
)

// SubframeCount is the number of subframes in a frame.
const SubframeCount = 6

// SubframeLength is the number of symbols in a subframe.
const SubframeLength = 10

// FrameLength is the number of symbols in a frame, one per second of a minute.
const FrameLength = SubframeCount * SubframeLength

var subframeNames = [SubframeCount]string{"MINS", "HOUR", "DOTY", "DUT1", "YEAR", "MISC"}

func (id SubframeID) String() string {
	return subframeNames[id]
}

// Subframe contains the ten symbols of one subframe.
type Subframe [SubframeLength]Symbol

// Frame contains the six subframes of one minute.
type Frame [SubframeCount]Subframe

// Symbol returns the symbol that is sent in the given second (0-59) of the minute.
func (f Frame) Symbol(index int) Symbol {
	return f[index/SubframeLength][index%SubframeLength]
}

// IsMarkerPosition reports whether the given second of the minute always carries a marker.
func IsMarkerPosition(index int) bool {
	return index == 0 || index%SubframeLength == SubframeLength-1
}

// position of a symbol within the frame
type position struct {
	subframe SubframeID
	index    int
}

func (p position) of(f *Frame) *Symbol {
	return &f[p.subframe][p.index]
}

type weight struct {
	position
	value int
}

// weightTable lists the weighted positions of a field in descending order of their weight.
type weightTable []weight

//          0   1   2   3   4   5   6   7   8   9
// MINS     M  40  20  10   0   8   4   2   1   M
// HOUR     -   -  20  10   0   8   4   2   1   M
// DOTY     -   - 200 100   0  80  40  20  10   M
// DUT1     8   4   2   1   -   -   +   -   +   M
// YEAR   0.8 0.4 0.2 0.1   -  80  40  20  10   M
// MISC     8   4   2   1   - LYI LSW   2   1   M
var (
	minutesWeights = weightTable{
		{position{Minutes, 1}, 40},
		{position{Minutes, 2}, 20},
		{position{Minutes, 3}, 10},
		{position{Minutes, 5}, 8},
		{position{Minutes, 6}, 4},
		{position{Minutes, 7}, 2},
		{position{Minutes, 8}, 1},
	}
	hoursWeights = weightTable{
		{position{Hours, 2}, 20},
		{position{Hours, 3}, 10},
		{position{Hours, 5}, 8},
		{position{Hours, 6}, 4},
		{position{Hours, 7}, 2},
		{position{Hours, 8}, 1},
	}
	dayOfYearWeights = weightTable{
		{position{DayOfYear, 2}, 200},
		{position{DayOfYear, 3}, 100},
		{position{DayOfYear, 5}, 80},
		{position{DayOfYear, 6}, 40},
		{position{DayOfYear, 7}, 20},
		{position{DayOfYear, 8}, 10},
		{position{DUT1, 0}, 8},
		{position{DUT1, 1}, 4},
		{position{DUT1, 2}, 2},
		{position{DUT1, 3}, 1},
	}
	yearWeights = weightTable{
		{position{Year, 5}, 80},
		{position{Year, 6}, 40},
		{position{Year, 7}, 20},
		{position{Year, 8}, 10},
		{position{Misc, 0}, 8},
		{position{Misc, 1}, 4},
		{position{Misc, 2}, 2},
		{position{Misc, 3}, 1},
	}
	// the DUT1 magnitude in tenths of a second
	dut1Weights = weightTable{
		{position{Year, 0}, 8},
		{position{Year, 1}, 4},
		{position{Year, 2}, 2},
		{position{Year, 3}, 1},
	}
)

var (
	dut1PositiveSigns = []position{{DUT1, 6}, {DUT1, 8}}
	dut1NegativeSign  = position{DUT1, 7}
	leapYearFlag      = position{Misc, 5}
	leapSecondFlag    = position{Misc, 6}
	dstHighBit        = position{Misc, 7}
	dstLowBit         = position{Misc, 8}
)

// encode writes the greedy weighted decomposition of value into the table's positions.
func (t weightTable) encode(f *Frame, value int) {
	for _, w := range t {
		if value >= w.value {
			value -= w.value
			*w.of(f) = One
		} else {
			*w.of(f) = Zero
		}
	}
}

// decode returns the weighted sum of all positions of the table that carry a one.
func (t weightTable) decode(f *Frame) int {
	result := 0
	for _, w := range t {
		if *w.of(f) == One {
			result += w.value
		}
	}
	return result
}

// Fields is a set of clock derived fields that are encoded into a frame.
type Fields uint8

// The fields that are tracked by the Encoder.
const (
	FieldMinute Fields = 1 << iota
	FieldHour
	FieldDayOfYear
	FieldYear
	FieldLeapYear
	FieldDST

	NoFields  Fields = 0
	AllFields Fields = FieldMinute | FieldHour | FieldDayOfYear | FieldYear | FieldLeapYear | FieldDST
)

// Has reports whether all of the given fields are in the set.
func (f Fields) Has(fields Fields) bool {
	return f&fields == fields
}

// Encoder keeps a frame in sync with a Clock. It remembers the fields of the last encoded clock
// and only derives the symbols of fields that changed since then. This keeps the work that is done
// at each bit boundary inside the tick context small.
type Encoder struct {
	frame  Frame
	last   Clock
	primed bool
}

// NewEncoder returns an encoder with the structural symbols of the frame in place.
func NewEncoder() *Encoder {
	result := &Encoder{}
	result.frame = blankFrame()
	return result
}

func blankFrame() Frame {
	var result Frame
	for i := 0; i < FrameLength; i++ {
		if IsMarkerPosition(i) {
			result[i/SubframeLength][i%SubframeLength] = Marker
		}
	}
	for _, p := range dut1PositiveSigns {
		*p.of(&result) = One
	}
	*dut1NegativeSign.of(&result) = Zero
	dut1Weights.encode(&result, 0)
	*leapSecondFlag.of(&result) = Zero
	return result
}

// Update derives the symbols of all fields of the given clock that changed since the last update
// and returns the set of changed fields. The first update derives all fields.
func (e *Encoder) Update(c *Clock) Fields {
	changed := e.changedFields(c)

	if changed.Has(FieldMinute) {
		minutesWeights.encode(&e.frame, c.Minute)
	}
	if changed.Has(FieldHour) {
		hoursWeights.encode(&e.frame, c.Hour)
	}
	if changed.Has(FieldDayOfYear) {
		dayOfYearWeights.encode(&e.frame, c.DayOfYear)
	}
	if changed.Has(FieldYear) {
		yearWeights.encode(&e.frame, c.Year)
	}
	if changed.Has(FieldLeapYear) {
		*leapYearFlag.of(&e.frame) = symbolOf(c.LeapYear)
	}
	if changed.Has(FieldDST) {
		*dstHighBit.of(&e.frame) = symbolOf(c.DST&0b10 != 0)
		*dstLowBit.of(&e.frame) = symbolOf(c.DST&0b01 != 0)
	}

	e.last = *c
	e.primed = true
	return changed
}

func (e *Encoder) changedFields(c *Clock) Fields {
	if !e.primed {
		return AllFields
	}
	result := NoFields
	if c.Minute != e.last.Minute {
		result |= FieldMinute
	}
	if c.Hour != e.last.Hour {
		result |= FieldHour
	}
	if c.DayOfYear != e.last.DayOfYear {
		result |= FieldDayOfYear
	}
	if c.Year != e.last.Year {
		result |= FieldYear
	}
	if c.LeapYear != e.last.LeapYear {
		result |= FieldLeapYear
	}
	if c.DST != e.last.DST {
		result |= FieldDST
	}
	return result
}

// Frame returns the current frame.
func (e *Encoder) Frame() Frame {
	return e.frame
}

// Symbol returns the symbol of the current frame that is sent in the given second of the minute.
func (e *Encoder) Symbol(index int) Symbol {
	return e.frame.Symbol(index)
}

// Encode returns the frame for the given clock.
func Encode(c Clock) Frame {
	e := NewEncoder()
	e.Update(&c)
	return e.Frame()
}
