/*
Package nmea parses the time and position information from the NMEA 0183 sentences of a satellite receiver.

The Parser is fed byte by byte, so it can be attached directly to a serial line. It understands the
recommended minimum sentence RMC and the time and date sentence ZDA of any talker (GP, GN, GL, ...).
Each sentence is described by a table of fields, the parser itself knows nothing about the individual
sentence types.
*/
package nmea

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang/geo/s2"
	"github.com/tzneal/coordconv"
)

// Parser errors
var (
	// ErrChecksum indicates that the checksum of a sentence is missing or does not match its content
	ErrChecksum = errors.New("nmea: checksum mismatch")

	// ErrUnknownSentence indicates a sentence type that is not supported by the parser
	ErrUnknownSentence = errors.New("nmea: unknown sentence")

	// ErrMalformed indicates a field that cannot be parsed
	ErrMalformed = errors.New("nmea: malformed field")

	// ErrTooLong indicates a sentence that exceeds the maximum length
	ErrTooLong = errors.New("nmea: sentence too long")
)

// MaxLength is the maximum length of a sentence including the leading $ and the checksum.
const MaxLength = 82

// Fix contains the information of the last complete sentence.
type Fix struct {
	// Sentence is the type of the sentence this fix was taken from, e.g. RMC.
	Sentence string
	// Talker identifies the satellite system, e.g. GP or GN.
	Talker string
	// Time is the UTC time of the fix. It is zero if the sentence did not contain both time and date.
	Time time.Time
	// Valid is true if the receiver reported a valid fix.
	Valid bool
	// HasPosition is true if Latitude and Longitude are set.
	HasPosition bool
	// Latitude in degrees, positive to the north.
	Latitude float64
	// Longitude in degrees, positive to the east.
	Longitude float64
	// Knots is the speed over ground.
	Knots float64
	// Course is the true course over ground in degrees.
	Course float64
}

// Position returns the position of the fix.
func (f Fix) Position() s2.LatLng {
	return s2.LatLngFromDegrees(f.Latitude, f.Longitude)
}

// UTM returns the position of the fix as UTM coordinates, e.g. "33U 391505E 5820202N".
func (f Fix) UTM() (string, error) {
	utm, err := coordconv.DefaultUTMConverter.ConvertFromGeodetic(f.Position(), 0)
	if err != nil {
		return "", err
	}
	hemisphere := 'N'
	if utm.Hemisphere == coordconv.HemisphereSouth {
		hemisphere = 'S'
	}
	return fmt.Sprintf("%d%c %.0fE %.0fN", utm.Zone, hemisphere, utm.Easting, utm.Northing), nil
}

func (f Fix) String() string {
	var timestamp string
	if f.Time.IsZero() {
		timestamp = "no time"
	} else {
		timestamp = f.Time.Format(time.RFC3339Nano)
	}
	if !f.HasPosition {
		return fmt.Sprintf("%s%s %s valid=%t", f.Talker, f.Sentence, timestamp, f.Valid)
	}
	return fmt.Sprintf("%s%s %s valid=%t %.5f,%.5f %.1fkn %.1f°", f.Talker, f.Sentence, timestamp, f.Valid, f.Latitude, f.Longitude, f.Knots, f.Course)
}

type parserState int

const (
	idle parserState = iota
	inBody
	inChecksum
)

// Parser is an incremental parser for NMEA sentences. The zero value is ready to use.
type Parser struct {
	// LeapSeconds is the number of seconds that the receiver's time is ahead of UTC. It is subtracted from
	// the time of each fix. Receivers that report GPS time instead of UTC need this set to the current
	// GPS-UTC offset.
	LeapSeconds int

	state      parserState
	length     int
	checksum   byte
	received   []byte
	field      []byte
	fieldIndex int
	talker     string
	sentence   string
	fields     []field
	record     record
	err        error

	fix   Fix
	fresh bool
}

// Parse consumes the next byte of the input stream. It returns an error if the byte completes a sentence
// that cannot be used. Bytes outside of a sentence are ignored.
func (p *Parser) Parse(c byte) error {
	if c == '$' {
		p.begin()
		return nil
	}

	switch p.state {
	case inBody:
		return p.parseBody(c)
	case inChecksum:
		return p.parseChecksum(c)
	default:
		return nil
	}
}

// ParseString parses all bytes of the given string and returns the first error.
func (p *Parser) ParseString(s string) error {
	var result error
	for i := 0; i < len(s); i++ {
		err := p.Parse(s[i])
		if result == nil {
			result = err
		}
	}
	return result
}

// NewFix reports whether a new fix became available since the last call of NewFix.
func (p *Parser) NewFix() bool {
	result := p.fresh
	p.fresh = false
	return result
}

// Fix returns the last complete fix.
func (p *Parser) Fix() Fix {
	return p.fix
}

func (p *Parser) begin() {
	p.state = inBody
	p.length = 1
	p.checksum = 0
	p.received = p.received[:0]
	p.field = p.field[:0]
	p.fieldIndex = -1
	p.talker = ""
	p.sentence = ""
	p.fields = nil
	p.record = record{}
	p.err = nil
}

func (p *Parser) abort(err error) error {
	p.state = idle
	return err
}

func (p *Parser) parseBody(c byte) error {
	p.length++
	if p.length > MaxLength {
		return p.abort(ErrTooLong)
	}

	switch c {
	case '\r', '\n':
		return p.abort(fmt.Errorf("%w: missing checksum", ErrChecksum))
	case '*':
		p.state = inChecksum
		return p.endOfField()
	case ',':
		p.checksum ^= c
		return p.endOfField()
	default:
		p.checksum ^= c
		p.field = append(p.field, c)
		return nil
	}
}

func (p *Parser) endOfField() error {
	value := string(p.field)
	p.field = p.field[:0]
	index := p.fieldIndex
	p.fieldIndex++

	if index == -1 {
		return p.address(value)
	}
	if index >= len(p.fields) || p.err != nil {
		return nil
	}
	f := p.fields[index]
	if err := f.parse(&p.record, value); err != nil {
		p.err = fmt.Errorf("%w: %s %s %q", ErrMalformed, p.sentence, f.name, value)
	}
	return nil
}

func (p *Parser) address(value string) error {
	if len(value) != 5 {
		return p.abort(fmt.Errorf("%w: %q", ErrUnknownSentence, value))
	}
	fields, ok := sentences[value[2:]]
	if !ok {
		return p.abort(fmt.Errorf("%w: %q", ErrUnknownSentence, value))
	}
	p.talker = value[:2]
	p.sentence = value[2:]
	p.fields = fields
	return nil
}

func (p *Parser) parseChecksum(c byte) error {
	p.received = append(p.received, c)
	if len(p.received) < 2 {
		return nil
	}
	p.state = idle

	received, err := strconv.ParseUint(string(p.received), 16, 8)
	if err != nil || byte(received) != p.checksum {
		return fmt.Errorf("%w: expected %02X but found %s", ErrChecksum, p.checksum, p.received)
	}
	if p.err != nil {
		return p.err
	}

	p.fix = p.record.fix(p.talker, p.sentence)
	if !p.fix.Time.IsZero() && p.LeapSeconds != 0 {
		p.fix.Time = p.fix.Time.Add(-time.Duration(p.LeapSeconds) * time.Second)
	}
	p.fresh = true
	return nil
}
