package nmea

import (
	"strconv"
	"time"
)

// record collects the values of the fields of one sentence.
type record struct {
	hasTime              bool
	hour, minute, second int
	nanoseconds          int
	hasDate              bool
	day, month, year     int
	status               byte
	hasLatitude          bool
	latitude             float64
	hasLongitude         bool
	longitude            float64
	knots                float64
	course               float64
}

func (r *record) fix(talker, sentence string) Fix {
	result := Fix{
		Talker:   talker,
		Sentence: sentence,
		Knots:    r.knots,
		Course:   r.course,
	}
	if r.hasTime && r.hasDate {
		result.Time = time.Date(r.year, time.Month(r.month), r.day, r.hour, r.minute, r.second, r.nanoseconds, time.UTC)
	}
	switch sentence {
	case "RMC":
		result.Valid = r.status == 'A'
	default:
		result.Valid = r.hasTime && r.hasDate
	}
	if r.hasLatitude && r.hasLongitude {
		result.HasPosition = true
		result.Latitude = r.latitude
		result.Longitude = r.longitude
	}
	return result
}

// field describes how one comma separated field of a sentence is stored in the record.
// Empty fields are passed to parse as well.
type field struct {
	name  string
	parse func(r *record, value string) error
}

// $GPRMC,hhmmss.sss,A,ddmm.mmmm,N,dddmm.mmmm,W,k.kk,c.cc,ddmmyy,,,A*hh
var rmcFields = []field{
	{"time", parseTime},
	{"status", parseStatus},
	{"latitude", parseCoordinate(2, func(r *record, v float64) { r.latitude = v; r.hasLatitude = true })},
	{"north/south", parseHemisphere('N', 'S', func(r *record) *float64 { return &r.latitude })},
	{"longitude", parseCoordinate(3, func(r *record, v float64) { r.longitude = v; r.hasLongitude = true })},
	{"east/west", parseHemisphere('E', 'W', func(r *record) *float64 { return &r.longitude })},
	{"speed", parseOptionalFloat(func(r *record) *float64 { return &r.knots })},
	{"course", parseOptionalFloat(func(r *record) *float64 { return &r.course })},
	{"date", parseDate},
}

// $GPZDA,hhmmss.sss,dd,mm,yyyy,zh,zm*hh
var zdaFields = []field{
	{"time", parseTime},
	{"day", parseInt(func(r *record) *int { return &r.day })},
	{"month", parseInt(func(r *record) *int { return &r.month })},
	{"year", func(r *record, value string) error {
		if value == "" {
			return nil
		}
		year, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		r.year = year
		r.hasDate = r.day != 0 && r.month != 0
		return nil
	}},
}

var sentences = map[string][]field{
	"RMC": rmcFields,
	"ZDA": zdaFields,
}

func parseTime(r *record, value string) error {
	if value == "" {
		return nil
	}
	if len(value) < 6 {
		return strconv.ErrSyntax
	}
	var err error
	if r.hour, err = strconv.Atoi(value[0:2]); err != nil {
		return err
	}
	if r.minute, err = strconv.Atoi(value[2:4]); err != nil {
		return err
	}
	if r.second, err = strconv.Atoi(value[4:6]); err != nil {
		return err
	}
	if len(value) > 7 && value[6] == '.' {
		fraction, err := strconv.ParseFloat("0"+value[6:], 64)
		if err != nil {
			return err
		}
		r.nanoseconds = int(fraction * float64(time.Second))
	}
	r.hasTime = true
	return nil
}

func parseDate(r *record, value string) error {
	if value == "" {
		return nil
	}
	if len(value) != 6 {
		return strconv.ErrSyntax
	}
	var err error
	if r.day, err = strconv.Atoi(value[0:2]); err != nil {
		return err
	}
	if r.month, err = strconv.Atoi(value[2:4]); err != nil {
		return err
	}
	if r.year, err = strconv.Atoi(value[4:6]); err != nil {
		return err
	}
	r.year += 2000
	r.hasDate = true
	return nil
}

func parseStatus(r *record, value string) error {
	if len(value) != 1 {
		return strconv.ErrSyntax
	}
	r.status = value[0]
	return nil
}

// parseCoordinate converts a value of the form (d)ddmm.mmmm with the given number of degree digits to degrees.
func parseCoordinate(degreeDigits int, set func(*record, float64)) func(*record, string) error {
	return func(r *record, value string) error {
		if value == "" {
			return nil
		}
		if len(value) < degreeDigits+2 {
			return strconv.ErrSyntax
		}
		degrees, err := strconv.Atoi(value[:degreeDigits])
		if err != nil {
			return err
		}
		minutes, err := strconv.ParseFloat(value[degreeDigits:], 64)
		if err != nil {
			return err
		}
		set(r, float64(degrees)+minutes/60)
		return nil
	}
}

func parseHemisphere(positive, negative byte, coordinate func(*record) *float64) func(*record, string) error {
	return func(r *record, value string) error {
		switch {
		case value == "":
			return nil
		case value[0] == positive:
			return nil
		case value[0] == negative:
			c := coordinate(r)
			*c = -*c
			return nil
		default:
			return strconv.ErrSyntax
		}
	}
}

func parseOptionalFloat(target func(*record) *float64) func(*record, string) error {
	return func(r *record, value string) error {
		if value == "" {
			return nil
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		*target(r) = v
		return nil
	}
}

func parseInt(target func(*record) *int) func(*record, string) error {
	return func(r *record, value string) error {
		if value == "" {
			return nil
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*target(r) = v
		return nil
	}
}
