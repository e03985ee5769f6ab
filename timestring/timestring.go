/*
Package timestring converts the fixed width date and time strings of the form "Feb 12 1996" and "23:59:01".
These are the formats of a build timestamp, which makes them handy to seed a transmitter without any
other time source.

The strings are not validated. Characters are read at fixed offsets and malformed input produces
meaningless values.
*/
package timestring

import "fmt"

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ParseDate returns the day (1-31), month (1-12) and the two-digit year of a date string like "Feb 12 1996".
// The day may be padded with a space instead of a zero ("Feb  2 1996").
func ParseDate(s string) (day, month, year int) {
	if len(s) < 11 {
		return 0, 0, 0
	}
	month = monthOf(s[0:3])
	day = twoDigits(s[4], s[5])
	year = twoDigits(s[9], s[10])
	return day, month, year
}

// monthOf decodes the month from as few characters as necessary.
func monthOf(name string) int {
	switch name[0] {
	case 'J':
		switch {
		case name[1] == 'a':
			return 1
		case name[2] == 'n':
			return 6
		default:
			return 7
		}
	case 'F':
		return 2
	case 'M':
		if name[2] == 'r' {
			return 3
		}
		return 5
	case 'A':
		if name[2] == 'r' {
			return 4
		}
		return 8
	case 'S':
		return 9
	case 'O':
		return 10
	case 'N':
		return 11
	case 'D':
		return 12
	default:
		return 0
	}
}

// ParseTime returns the hour, minute and second of a time string like "23:59:01".
func ParseTime(s string) (hour, minute, second int) {
	if len(s) < 8 {
		return 0, 0, 0
	}
	hour = twoDigits(s[0], s[1])
	minute = twoDigits(s[3], s[4])
	second = twoDigits(s[6], s[7])
	return hour, minute, second
}

func twoDigits(tens, units byte) int {
	return digit(tens)*10 + digit(units)
}

func digit(c byte) int {
	if c < '0' || c > '9' {
		return 0
	}
	return int(c - '0')
}

// FormatDate returns the date string for the given day, month and four-digit year.
func FormatDate(day, month, year int) string {
	name := "???"
	if month >= 1 && month <= 12 {
		name = monthNames[month-1]
	}
	return fmt.Sprintf("%s %2d %04d", name, day, year)
}

// FormatTime returns the time string for the given hour, minute and second.
func FormatTime(hour, minute, second int) string {
	return fmt.Sprintf("%02d:%02d:%02d", hour, minute, second)
}
