package datetime

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// RangeError reports a field value outside its valid range.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("datetime: %s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &RangeError{Field: field, Value: v, Min: lo, Max: hi}
	}
	return nil
}

// WithYear returns d in another year. February 29 becomes February 28 in a
// common year.
func WithYear(d civil.Date, year int) civil.Date {
	return civil.Date{Year: year, Month: d.Month, Day: min(d.Day, daysIn(year, d.Month))}
}

// WithMonth returns d in another month of the same year, clamping the day to
// the month's length.
func WithMonth(d civil.Date, month int) (civil.Date, error) {
	if err := checkRange("month", month, 1, 12); err != nil {
		return d, err
	}
	m := time.Month(month)
	return civil.Date{Year: d.Year, Month: m, Day: min(d.Day, daysIn(d.Year, m))}, nil
}

// WithDayOfMonth returns d with another day of the same month.
func WithDayOfMonth(d civil.Date, day int) (civil.Date, error) {
	if err := checkRange("day of month", day, 1, daysIn(d.Year, d.Month)); err != nil {
		return d, err
	}
	d.Day = day
	return d, nil
}

// WithDayOfYear returns the date that is the given day of d's year.
func WithDayOfYear(d civil.Date, dayOfYear int) (civil.Date, error) {
	if err := checkRange("day of year", dayOfYear, 1, daysInYear(d.Year)); err != nil {
		return d, err
	}
	return civil.Date{Year: d.Year, Month: time.January, Day: 1}.AddDays(dayOfYear - 1), nil
}

// DateTimeWithYear is WithYear for the date part of dt.
func DateTimeWithYear(dt civil.DateTime, year int) civil.DateTime {
	dt.Date = WithYear(dt.Date, year)
	return dt
}

// DateTimeWithMonth is WithMonth for the date part of dt.
func DateTimeWithMonth(dt civil.DateTime, month int) (civil.DateTime, error) {
	d, err := WithMonth(dt.Date, month)
	if err != nil {
		return dt, err
	}
	dt.Date = d
	return dt, nil
}

// DateTimeWithDayOfMonth is WithDayOfMonth for the date part of dt.
func DateTimeWithDayOfMonth(dt civil.DateTime, day int) (civil.DateTime, error) {
	d, err := WithDayOfMonth(dt.Date, day)
	if err != nil {
		return dt, err
	}
	dt.Date = d
	return dt, nil
}

// DateTimeWithDayOfYear is WithDayOfYear for the date part of dt.
func DateTimeWithDayOfYear(dt civil.DateTime, dayOfYear int) (civil.DateTime, error) {
	d, err := WithDayOfYear(dt.Date, dayOfYear)
	if err != nil {
		return dt, err
	}
	dt.Date = d
	return dt, nil
}

// WithHour sets the hour of day, 0 to 23.
func WithHour(dt civil.DateTime, hour int) (civil.DateTime, error) {
	if err := checkRange("hour", hour, 0, 23); err != nil {
		return dt, err
	}
	dt.Time.Hour = hour
	return dt, nil
}

// WithMinute sets the minute of the hour.
func WithMinute(dt civil.DateTime, minute int) (civil.DateTime, error) {
	if err := checkRange("minute", minute, 0, 59); err != nil {
		return dt, err
	}
	dt.Time.Minute = minute
	return dt, nil
}

// WithSecond sets the second of the minute.
func WithSecond(dt civil.DateTime, second int) (civil.DateTime, error) {
	if err := checkRange("second", second, 0, 59); err != nil {
		return dt, err
	}
	dt.Time.Second = second
	return dt, nil
}

// WithNano sets the nanosecond of the second.
func WithNano(dt civil.DateTime, nano int) (civil.DateTime, error) {
	if err := checkRange("nanosecond", nano, 0, 999_999_999); err != nil {
		return dt, err
	}
	dt.Time.Nanosecond = nano
	return dt, nil
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysInYear(year int) int {
	if isLeap(year) {
		return 366
	}
	return 365
}

func daysIn(year int, month time.Month) int {
	switch month {
	case time.February:
		if isLeap(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// Weekday returns the day of the week of d.
func Weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

// addMonths moves d by n months, clamping the day to the target month.
func addMonths(d civil.Date, n int64) civil.Date {
	total := int64(d.Year)*12 + int64(d.Month-1) + n
	year := floorDiv(total, 12)
	month := time.Month(total-year*12) + 1
	return civil.Date{Year: int(year), Month: month, Day: min(d.Day, daysIn(int(year), month))}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
