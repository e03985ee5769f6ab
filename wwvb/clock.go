package wwvb

import "fmt"

// Century is added to the two-digit year when the leap year rule is applied.
const Century = 2000

// DST is the 2-bit daylight savings code that is sent in the MISC subframe.
type DST uint8

// The daylight savings codes.
const (
	DSTNone     DST = 0b00
	DSTEnds     DST = 0b01 // ends today
	DSTBegins   DST = 0b10 // begins today
	DSTInEffect DST = 0b11
)

func (d DST) String() string {
	switch d & 0b11 {
	case DSTNone:
		return "not in effect"
	case DSTEnds:
		return "ends today"
	case DSTBegins:
		return "begins today"
	default:
		return "in effect"
	}
}

//                              Jan Feb Mar Apr May Jun Jul Aug Sep Oct Nov Dec
var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
var cumulativeDays = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// IsLeapYear reports whether the given four-digit year is a leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in the given month (1-12).
func DaysInMonth(month int, leapYear bool) int {
	days := daysInMonth[month-1]
	if month == 2 && leapYear {
		days++
	}
	return days
}

// ToDayOfYear returns the day of the year (1-366) for the given day (1-31) and month (1-12).
func ToDayOfYear(day, month int, leapYear bool) int {
	result := cumulativeDays[month-1] + day
	if leapYear && month > 2 {
		result++
	}
	return result
}

// FromDayOfYear returns the day and month for the given day of the year (1-366).
func FromDayOfYear(dayOfYear int, leapYear bool) (day, month int) {
	month = 1
	day = dayOfYear
	for month < 12 && day > DaysInMonth(month, leapYear) {
		day -= DaysInMonth(month, leapYear)
		month++
	}
	return day, month
}

// Clock holds the civil time that is encoded into the WWVB frames.
// The year is kept as two digits, see Century. DayOfYear and LeapYear are derived from the date
// and recomputed after every mutation through the methods of Clock.
//
// The Clock performs no range checking, the behavior for values outside of the calendar ranges
// is undefined.
type Clock struct {
	Second, Minute, Hour int
	Day, Month, Year     int
	DayOfYear            int
	LeapYear             bool
	DST                  DST
}

// NewClock returns a clock set to the given time with the derived fields computed.
func NewClock(hour, minute, second, day, month, year int, dst DST) Clock {
	c := Clock{
		Second: second,
		Minute: minute,
		Hour:   hour,
		Day:    day,
		Month:  month,
		Year:   year,
		DST:    dst,
	}
	c.derive()
	return c
}

func (c *Clock) derive() {
	c.LeapYear = IsLeapYear(Century + c.Year)
	c.DayOfYear = ToDayOfYear(c.Day, c.Month, c.LeapYear)
}

// AdvanceOneSecond increments the clock by one second, carrying into the coarser units.
func (c *Clock) AdvanceOneSecond() {
	c.Add(0, 0, 1)
}

// Add adds the given (possibly negative) offset to the clock. The units are carried from
// seconds to minutes, hours, day, month and year in this order. The offset must not move the
// date by more than the length of the current or the previous month.
func (c *Clock) Add(hours, minutes, seconds int) {
	var carry int
	c.Second, carry = boundedAdd(c.Second, seconds, 0, 60, 60)
	c.Minute, carry = boundedAdd(c.Minute, minutes+carry, 0, 60, 60)
	c.Hour, carry = boundedAdd(c.Hour, hours+carry, 0, 24, 24)

	leapYear := IsLeapYear(Century + c.Year)
	thisMonth := DaysInMonth(c.Month, leapYear)
	prevMonth := DaysInMonth(previousMonth(c.Month), leapYear)
	c.Day, carry = boundedAdd(c.Day, carry, 1, thisMonth, prevMonth)
	c.Month, carry = boundedAdd(c.Month, carry, 1, 12, 12)
	c.Year, _ = boundedAdd(c.Year, carry, 0, 100, 100)

	c.derive()
}

func previousMonth(month int) int {
	if month == 1 {
		return 12
	}
	return month - 1
}

// boundedAdd adds delta to value and keeps the result within [base, base+limit).
// On overflow the result is reduced modulo limit and the number of wraps is carried,
// on underflow the limit of the previous unit is added and one is borrowed.
func boundedAdd(value, delta, base, limit, prevLimit int) (result int, carry int) {
	v := value + delta - base
	switch {
	case v >= limit:
		carry = v / limit
		v %= limit
	case v < 0:
		for v < 0 {
			v += prevLimit
			carry--
		}
	}
	return v + base, carry
}

// FourDigitYear returns the year including the fixed century.
func (c Clock) FourDigitYear() int {
	return Century + c.Year
}

func (c Clock) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", c.FourDigitYear(), c.Month, c.Day, c.Hour, c.Minute, c.Second)
}
