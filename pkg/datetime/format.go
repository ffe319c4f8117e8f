package datetime

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// ErrUnsupportedField is returned when a pattern asks for a field the value
// does not have, such as an hour when formatting a date.
var ErrUnsupportedField = errors.New("datetime: unsupported field")

// Format renders the instant t in loc using pattern. A nil loc means the
// system time zone.
func Format(t time.Time, pattern string, loc *time.Location) (string, error) {
	f, err := formatterFor(pattern)
	if err != nil {
		return "", err
	}
	return f.Format(t.In(orSystemZone(loc))), nil
}

// FormatDateTime renders a zone-less date-time. Zone fields are rejected.
func FormatDateTime(dt civil.DateTime, pattern string) (string, error) {
	f, err := formatterFor(pattern)
	if err != nil {
		return "", err
	}
	if f.uses(classZone) {
		return "", fmt.Errorf("%w: pattern %q needs a time zone", ErrUnsupportedField, pattern)
	}
	return f.Format(dt.In(time.UTC)), nil
}

// FormatDate renders a calendar date. Time-of-day and zone fields are rejected.
func FormatDate(d civil.Date, pattern string) (string, error) {
	f, err := formatterFor(pattern)
	if err != nil {
		return "", err
	}
	if f.uses(classTime | classZone) {
		return "", fmt.Errorf("%w: pattern %q needs a time of day", ErrUnsupportedField, pattern)
	}
	return f.Format(d.In(time.UTC)), nil
}

// ParseInstant reads text with pattern. Values without an offset are
// interpreted in loc, or the system time zone when loc is nil.
func ParseInstant(text, pattern string, loc *time.Location) (time.Time, error) {
	f, err := formatterFor(pattern)
	if err != nil {
		return time.Time{}, err
	}
	return f.Parse(text, orSystemZone(loc))
}

// ParseDateTime reads a zone-less date-time.
func ParseDateTime(text, pattern string) (civil.DateTime, error) {
	f, err := formatterFor(pattern)
	if err != nil {
		return civil.DateTime{}, err
	}
	t, err := f.Parse(text, time.UTC)
	if err != nil {
		return civil.DateTime{}, err
	}
	return civil.DateTimeOf(t), nil
}

// ParseDate reads a calendar date.
func ParseDate(text, pattern string) (civil.Date, error) {
	f, err := formatterFor(pattern)
	if err != nil {
		return civil.Date{}, err
	}
	t, err := f.Parse(text, time.UTC)
	if err != nil {
		return civil.Date{}, err
	}
	return civil.DateOf(t), nil
}

// ToEpochMilliseconds parses text and returns milliseconds since the Unix epoch.
func ToEpochMilliseconds(text, pattern string, loc *time.Location) (int64, error) {
	t, err := ParseInstant(text, pattern, loc)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// ToEpochSeconds parses text and returns seconds since the Unix epoch.
func ToEpochSeconds(text, pattern string, loc *time.Location) (int64, error) {
	t, err := ParseInstant(text, pattern, loc)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// ToInstant resolves a local date-time in loc (nil means the system zone).
func ToInstant(dt civil.DateTime, loc *time.Location) time.Time {
	return dt.In(orSystemZone(loc))
}

// ToDateTime returns the wall clock reading of t in loc (nil means the system zone).
func ToDateTime(t time.Time, loc *time.Location) civil.DateTime {
	return civil.DateTimeOf(t.In(orSystemZone(loc)))
}

// ToDate returns the calendar date of t in loc (nil means the system zone).
func ToDate(t time.Time, loc *time.Location) civil.Date {
	return civil.DateOf(t.In(orSystemZone(loc)))
}
