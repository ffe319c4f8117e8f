package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unit is a date-time unit used for arithmetic and deltas.
type Unit int

const (
	Nanosecond Unit = iota
	Microsecond
	Millisecond
	Second
	Minute
	Hour
	Day
	Week
	Month
	Quarter
	Year
	Century
)

var unitNames = map[Unit]string{
	Nanosecond:  "nanosecond",
	Microsecond: "microsecond",
	Millisecond: "millisecond",
	Second:      "second",
	Minute:      "minute",
	Hour:        "hour",
	Day:         "day",
	Week:        "week",
	Month:       "month",
	Quarter:     "quarter",
	Year:        "year",
	Century:     "century",
}

// String returns the singular unit name, e.g. "day".
func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return "Unit(" + strconv.Itoa(int(u)) + ")"
}

// ParseUnit accepts unit names in singular or plural form, e.g. "day" or "months".
func ParseUnit(s string) (Unit, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "centuries" {
		s = "century"
	}
	s = strings.TrimSuffix(s, "s")
	for u, name := range unitNames {
		if name == s {
			return u, nil
		}
	}
	return 0, fmt.Errorf("datetime: unknown unit %q", s)
}

// TimeBased reports whether the unit has a fixed duration.
func (u Unit) TimeBased() bool {
	return u <= Hour
}

// Duration returns the fixed length of a time-based unit, zero otherwise.
func (u Unit) Duration() time.Duration {
	switch u {
	case Nanosecond:
		return time.Nanosecond
	case Microsecond:
		return time.Microsecond
	case Millisecond:
		return time.Millisecond
	case Second:
		return time.Second
	case Minute:
		return time.Minute
	case Hour:
		return time.Hour
	}
	return 0
}

// days returns the length of day-based units, zero for month-based ones.
func (u Unit) days() int64 {
	switch u {
	case Day:
		return 1
	case Week:
		return 7
	}
	return 0
}

func (u Unit) months() int64 {
	switch u {
	case Month:
		return 1
	case Quarter:
		return 3
	case Year:
		return 12
	case Century:
		return 1200
	}
	return 0
}

// Period is an amount of time split into calendar and clock components.
type Period struct {
	Years       int
	Months      int
	Days        int
	Hours       int
	Minutes     int
	Seconds     int
	Nanoseconds int64
}

func (p Period) totalMonths() int64 {
	return int64(p.Years)*12 + int64(p.Months)
}

func (p Period) clockDuration() time.Duration {
	return time.Duration(p.Hours)*time.Hour + time.Duration(p.Minutes)*time.Minute +
		time.Duration(p.Seconds)*time.Second + time.Duration(p.Nanoseconds)
}

// Negate returns the period with every component sign-flipped.
func (p Period) Negate() Period {
	return Period{
		Years: -p.Years, Months: -p.Months, Days: -p.Days,
		Hours: -p.Hours, Minutes: -p.Minutes, Seconds: -p.Seconds,
		Nanoseconds: -p.Nanoseconds,
	}
}

// IsZero reports whether every component is zero.
func (p Period) IsZero() bool {
	return p == Period{}
}

// String renders the period in ISO 8601 form, e.g. P1Y2M3DT4H5M6.5S.
func (p Period) String() string {
	if p.IsZero() {
		return "P0D"
	}
	var b strings.Builder
	b.WriteByte('P')
	writePart := func(v int, suffix byte) {
		if v != 0 {
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(suffix)
		}
	}
	writePart(p.Years, 'Y')
	writePart(p.Months, 'M')
	writePart(p.Days, 'D')

	if p.Hours == 0 && p.Minutes == 0 && p.Seconds == 0 && p.Nanoseconds == 0 {
		return b.String()
	}
	b.WriteByte('T')
	writePart(p.Hours, 'H')
	writePart(p.Minutes, 'M')
	if p.Seconds != 0 || p.Nanoseconds != 0 {
		total := time.Duration(p.Seconds)*time.Second + time.Duration(p.Nanoseconds)
		secs := strconv.FormatFloat(total.Seconds(), 'f', -1, 64)
		b.WriteString(secs)
		b.WriteByte('S')
	}
	return b.String()
}

func periodOf(months, days int64, clock time.Duration) Period {
	p := Period{
		Years:  int(months / 12),
		Months: int(months % 12),
		Days:   int(days),
	}
	p.Hours = int(clock / time.Hour)
	clock -= time.Duration(p.Hours) * time.Hour
	p.Minutes = int(clock / time.Minute)
	clock -= time.Duration(p.Minutes) * time.Minute
	p.Seconds = int(clock / time.Second)
	clock -= time.Duration(p.Seconds) * time.Second
	p.Nanoseconds = int64(clock)
	return p
}
