package datetime

import (
	"time"

	"cloud.google.com/go/civil"
)

// Adjuster maps a date to another date by a calendar rule.
type Adjuster func(civil.Date) civil.Date

// Adjust applies adj to d.
func Adjust(d civil.Date, adj Adjuster) civil.Date {
	return adj(d)
}

// AdjustDateTime applies adj to the date of dt, keeping the time of day.
func AdjustDateTime(dt civil.DateTime, adj Adjuster) civil.DateTime {
	dt.Date = adj(dt.Date)
	return dt
}

// FirstDayOfYear returns 1 January of d's year.
func FirstDayOfYear(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: time.January, Day: 1}
}

// LastDayOfYear returns 31 December of d's year.
func LastDayOfYear(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: time.December, Day: 31}
}

// FirstDayOfNextYear returns 1 January of the following year.
func FirstDayOfNextYear(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year + 1, Month: time.January, Day: 1}
}

// FirstDayOfLastYear returns 1 January of the previous year.
func FirstDayOfLastYear(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year - 1, Month: time.January, Day: 1}
}

// FirstDayOfMonth returns the first day of d's month.
func FirstDayOfMonth(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: d.Month, Day: 1}
}

// LastDayOfMonth returns the last day of d's month.
func LastDayOfMonth(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: d.Month, Day: daysIn(d.Year, d.Month)}
}

// FirstDayOfNextMonth rolls December into January of the following year.
func FirstDayOfNextMonth(d civil.Date) civil.Date {
	return addMonths(FirstDayOfMonth(d), 1)
}

// FirstDayOfLastMonth returns the first day of the previous month.
func FirstDayOfLastMonth(d civil.Date) civil.Date {
	return addMonths(FirstDayOfMonth(d), -1)
}

// FirstInMonth returns an adjuster to the first w in the same month.
func FirstInMonth(w time.Weekday) Adjuster {
	return DayOfWeekInMonth(1, w)
}

// LastInMonth returns an adjuster to the last w in the same month.
func LastInMonth(w time.Weekday) Adjuster {
	return DayOfWeekInMonth(-1, w)
}

// DayOfWeekInMonth returns an adjuster to the ordinal-th w of the month.
// Positive ordinals count from the start of the month and may run into the
// following months; negative ordinals count back from the end; zero means the
// last w of the previous month.
func DayOfWeekInMonth(ordinal int, w time.Weekday) Adjuster {
	return func(d civil.Date) civil.Date {
		if ordinal >= 0 {
			first := FirstDayOfMonth(d)
			diff := (int(w) - int(Weekday(first)) + 7) % 7
			return first.AddDays(diff + (ordinal-1)*7)
		}
		last := LastDayOfMonth(d)
		diff := int(w) - int(Weekday(last))
		if diff > 0 {
			diff -= 7
		}
		return last.AddDays(diff - (-ordinal-1)*7)
	}
}

// Next returns an adjuster to the first w strictly after the date.
func Next(w time.Weekday) Adjuster {
	return func(d civil.Date) civil.Date {
		diff := int(w) - int(Weekday(d))
		if diff <= 0 {
			diff += 7
		}
		return d.AddDays(diff)
	}
}

// NextOrSame is like Next but keeps the date when it already falls on w.
func NextOrSame(w time.Weekday) Adjuster {
	return func(d civil.Date) civil.Date {
		if Weekday(d) == w {
			return d
		}
		return Next(w)(d)
	}
}

// Previous returns an adjuster to the last w strictly before the date.
func Previous(w time.Weekday) Adjuster {
	return func(d civil.Date) civil.Date {
		diff := int(Weekday(d)) - int(w)
		if diff <= 0 {
			diff += 7
		}
		return d.AddDays(-diff)
	}
}

// PreviousOrSame is like Previous but keeps the date when it already falls on w.
func PreviousOrSame(w time.Weekday) Adjuster {
	return func(d civil.Date) civil.Date {
		if Weekday(d) == w {
			return d
		}
		return Previous(w)(d)
	}
}
