package datetime

import (
	"math"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jonboulle/clockwork"
)

// CalendarOption configures a Calendar
type CalendarOption func(*Calendar)

// WithClock sets the clock used for "today"
func WithClock(clock clockwork.Clock) CalendarOption {
	return func(c *Calendar) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithZoneCache sets the cache that supplies the default zone
func WithZoneCache(zones *ZoneCache) CalendarOption {
	return func(c *Calendar) {
		if zones != nil {
			c.zones = zones
		}
	}
}

// WithLocation pins the calendar to loc instead of the system zone
func WithLocation(loc *time.Location) CalendarOption {
	return func(c *Calendar) {
		c.loc = loc
	}
}

// Calendar performs zone-aware calendar arithmetic on instants. Date-based
// units move the wall clock in the calendar's zone; time-based units add
// exact durations.
type Calendar struct {
	clock clockwork.Clock
	zones *ZoneCache
	loc   *time.Location
}

// NewCalendar returns a calendar on the real clock and the system zone.
func NewCalendar(opts ...CalendarOption) *Calendar {
	c := &Calendar{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the zone used for date-based arithmetic.
func (c *Calendar) Location() *time.Location {
	if c.loc != nil {
		return c.loc
	}
	if c.zones != nil {
		return c.zones.Current()
	}
	return SystemZone()
}

// Now returns the current instant in the calendar's zone.
func (c *Calendar) Now() time.Time {
	return c.clock.Now().In(c.Location())
}

// Today returns the current date in the calendar's zone.
func (c *Calendar) Today() civil.Date {
	return civil.DateOf(c.Now())
}

// IsToday reports whether d is the current date in the calendar's zone.
func (c *Calendar) IsToday(d civil.Date) bool {
	return d == c.Today()
}

// IsYesterday reports whether d is the day before today.
func (c *Calendar) IsYesterday(d civil.Date) bool {
	return d == c.Today().AddDays(-1)
}

// IsTodayDateTime is IsToday for the date part of dt.
func (c *Calendar) IsTodayDateTime(dt civil.DateTime) bool {
	return c.IsToday(dt.Date)
}

// IsYesterdayDateTime is IsYesterday for the date part of dt.
func (c *Calendar) IsYesterdayDateTime(dt civil.DateTime) bool {
	return c.IsYesterday(dt.Date)
}

// Plus moves t by value units. Time-based moves beyond the range of
// time.Time stop at its first or last representable instant.
func (c *Calendar) Plus(t time.Time, value int64, unit Unit) time.Time {
	if unit.TimeBased() {
		return addUnits(t, value, unit.Duration())
	}
	loc := c.Location()
	local := t.In(loc)
	_, offset := local.Zone()
	dt := civil.DateTimeOf(local)
	dt.Date = PlusDate(dt.Date, value, unit)
	return resolve(dt, loc, offset).In(t.Location())
}

// Minus moves t back by value units.
func (c *Calendar) Minus(t time.Time, value int64, unit Unit) time.Time {
	return c.Plus(t, -value, unit)
}

// PlusPeriod adds the months, then the days, then the clock part of p.
func (c *Calendar) PlusPeriod(t time.Time, p Period) time.Time {
	loc := c.Location()
	local := t.In(loc)
	_, offset := local.Zone()
	dt := civil.DateTimeOf(local)
	if months := p.totalMonths(); months != 0 {
		dt.Date = addMonths(dt.Date, months)
	}
	if p.Days != 0 {
		dt.Date = dt.Date.AddDays(p.Days)
	}
	out := resolve(dt, loc, offset).In(t.Location())
	return out.Add(p.clockDuration())
}

// MinusPeriod subtracts p, applying the negated parts in the same order as PlusPeriod.
func (c *Calendar) MinusPeriod(t time.Time, p Period) time.Time {
	return c.PlusPeriod(t, p.Negate())
}

// Until returns the number of whole units from a to b, truncated toward zero.
// Counts that do not fit in an int64 saturate.
func (c *Calendar) Until(a, b time.Time, unit Unit) int64 {
	if unit.TimeBased() {
		return unitsBetween(a, b, unit.Duration())
	}
	loc := c.Location()
	return localUntil(civil.DateTimeOf(a.In(loc)), civil.DateTimeOf(b.In(loc)), unit)
}

// Between returns the number of whole units from other to t: t minus other.
func (c *Calendar) Between(t, other time.Time, unit Unit) int64 {
	return c.Until(other, t, unit)
}

// DaysUntil returns the whole days from a to b.
func (c *Calendar) DaysUntil(a, b time.Time) int {
	return int(c.Until(a, b, Day))
}

// MonthsUntil returns the whole months from a to b.
func (c *Calendar) MonthsUntil(a, b time.Time) int {
	return int(c.Until(a, b, Month))
}

// YearsUntil returns the whole years from a to b.
func (c *Calendar) YearsUntil(a, b time.Time) int {
	return int(c.Until(a, b, Year))
}

// PeriodUntil splits the time from a to b into months, then days, then the
// remaining clock time.
func (c *Calendar) PeriodUntil(a, b time.Time) Period {
	loc := c.Location()
	target := civil.DateTimeOf(b.In(loc))

	months := localUntil(civil.DateTimeOf(a.In(loc)), target, Month)
	afterMonths := c.Plus(a, months, Month)
	days := localUntil(civil.DateTimeOf(afterMonths.In(loc)), target, Day)
	afterDays := c.Plus(afterMonths, days, Day)

	return periodOf(months, days, b.Sub(afterDays))
}

// PlusDate moves d by value date-based units. Month-based units clamp the
// day to the length of the target month. Time-based units leave d unchanged.
func PlusDate(d civil.Date, value int64, unit Unit) civil.Date {
	if n := unit.days(); n != 0 {
		return d.AddDays(int(value * n))
	}
	if n := unit.months(); n != 0 {
		return addMonths(d, value*n)
	}
	return d
}

// DateUntil returns the number of whole date-based units from a to b.
func DateUntil(a, b civil.Date, unit Unit) int64 {
	if n := unit.days(); n != 0 {
		return int64(b.DaysSince(a)) / n
	}
	if n := unit.months(); n != 0 {
		return monthsUntil(a, b) / n
	}
	return 0
}

func localUntil(a, b civil.DateTime, unit Unit) int64 {
	end := b.Date
	if end.After(a.Date) && timeBefore(b.Time, a.Time) {
		end = end.AddDays(-1)
	} else if end.Before(a.Date) && timeBefore(a.Time, b.Time) {
		end = end.AddDays(1)
	}
	return DateUntil(a.Date, end, unit)
}

func monthsUntil(a, b civil.Date) int64 {
	packed := func(d civil.Date) int64 {
		return (int64(d.Year)*12+int64(d.Month-1))*32 + int64(d.Day)
	}
	return (packed(b) - packed(a)) / 32
}

func timeBefore(a, b civil.Time) bool {
	return nanoOfDay(a) < nanoOfDay(b)
}

func nanoOfDay(t civil.Time) int64 {
	return ((int64(t.Hour)*60+int64(t.Minute))*60+int64(t.Second))*int64(time.Second) + int64(t.Nanosecond)
}

// resolve maps a wall clock reading in loc to an instant, keeping the
// preferred offset when the reading is ambiguous.
func resolve(dt civil.DateTime, loc *time.Location, preferred int) time.Time {
	t := dt.In(loc)
	if _, offset := t.Zone(); offset != preferred {
		alt := t.Add(time.Duration(offset-preferred) * time.Second)
		if _, altOffset := alt.Zone(); altOffset == preferred && civil.DateTimeOf(alt) == dt {
			return alt
		}
	}
	return t
}

// unixToInternal is the number of seconds from year 1 to the Unix epoch.
const unixToInternal int64 = 62135596800

var (
	maxTime = time.Unix(math.MaxInt64-unixToInternal, 999_999_999)
	minTime = time.Unix(math.MinInt64+unixToInternal, 0)
)

// addUnits adds value units of length d to t. Products that overflow a
// Duration are added as whole seconds; results past maxTime or minTime
// saturate.
func addUnits(t time.Time, value int64, d time.Duration) time.Time {
	if limit := int64(math.MaxInt64 / d); -limit <= value && value <= limit {
		return t.Add(time.Duration(value) * d)
	}

	var secs int64
	if d < time.Second {
		perSecond := int64(time.Second / d)
		secs = value / perSecond
		t = t.Add(time.Duration(value%perSecond) * d)
	} else {
		step := int64(d / time.Second)
		if value > math.MaxInt64/step || value < math.MinInt64/step {
			return saturate(t, value > 0)
		}
		secs = value * step
	}

	unix := t.Unix()
	if (secs > 0 && unix > maxTime.Unix()-secs) || (secs < 0 && unix < minTime.Unix()-secs) {
		return saturate(t, secs > 0)
	}
	return time.Unix(unix+secs, int64(t.Nanosecond())).In(t.Location())
}

func saturate(t time.Time, up bool) time.Time {
	if up {
		return maxTime.In(t.Location())
	}
	return minTime.In(t.Location())
}

// unitsBetween counts whole units of length d from a to b, truncated toward
// zero. Time.Sub saturates beyond about 292 years, so long spans are counted
// from Unix seconds instead.
func unitsBetween(a, b time.Time, d time.Duration) int64 {
	if diff := b.Sub(a); diff != math.MaxInt64 && diff != math.MinInt64 {
		return int64(diff / d)
	}

	au, bu := a.Unix(), b.Unix()
	switch {
	case bu >= 0 && au < 0 && bu > math.MaxInt64+au:
		return math.MaxInt64
	case bu < 0 && au >= 0 && bu < math.MinInt64+au:
		return math.MinInt64
	}
	secs := bu - au
	nanos := int64(b.Nanosecond() - a.Nanosecond())
	if secs > 0 && nanos < 0 {
		secs, nanos = secs-1, nanos+int64(time.Second)
	} else if secs < 0 && nanos > 0 {
		secs, nanos = secs+1, nanos-int64(time.Second)
	}

	if d >= time.Second {
		return secs / int64(d/time.Second)
	}
	perSecond := int64(time.Second / d)
	switch {
	case secs > math.MaxInt64/perSecond-1:
		return math.MaxInt64
	case secs < math.MinInt64/perSecond+1:
		return math.MinInt64
	}
	return secs*perSecond + nanos/int64(d)
}

var (
	defaultCalendarMu sync.Mutex
	defaultCalendar   *Calendar
)

// DefaultCalendar returns the process-wide calendar on the system zone.
func DefaultCalendar() *Calendar {
	defaultCalendarMu.Lock()
	defer defaultCalendarMu.Unlock()
	if defaultCalendar == nil {
		defaultCalendar = NewCalendar()
	}
	return defaultCalendar
}

// SetDefaultCalendar replaces the process-wide calendar.
func SetDefaultCalendar(c *Calendar) {
	defaultCalendarMu.Lock()
	defer defaultCalendarMu.Unlock()
	defaultCalendar = c
}

// Today returns the current date in the system zone.
func Today() civil.Date { return DefaultCalendar().Today() }

// IsToday reports whether d is today in the system zone.
func IsToday(d civil.Date) bool { return DefaultCalendar().IsToday(d) }

// IsYesterday reports whether d is yesterday in the system zone.
func IsYesterday(d civil.Date) bool { return DefaultCalendar().IsYesterday(d) }

// Plus moves t by value units using the default calendar.
func Plus(t time.Time, value int64, unit Unit) time.Time {
	return DefaultCalendar().Plus(t, value, unit)
}

// Minus moves t back by value units using the default calendar.
func Minus(t time.Time, value int64, unit Unit) time.Time {
	return DefaultCalendar().Minus(t, value, unit)
}

// PlusPeriod adds p using the default calendar.
func PlusPeriod(t time.Time, p Period) time.Time { return DefaultCalendar().PlusPeriod(t, p) }

// MinusPeriod subtracts p using the default calendar.
func MinusPeriod(t time.Time, p Period) time.Time { return DefaultCalendar().MinusPeriod(t, p) }

// Until counts whole units from a to b using the default calendar.
func Until(a, b time.Time, unit Unit) int64 { return DefaultCalendar().Until(a, b, unit) }

// DaysUntil counts whole days from a to b in the system zone.
func DaysUntil(a, b time.Time) int { return DefaultCalendar().DaysUntil(a, b) }

// MonthsUntil counts whole months from a to b in the system zone.
func MonthsUntil(a, b time.Time) int { return DefaultCalendar().MonthsUntil(a, b) }

// YearsUntil counts whole years from a to b in the system zone.
func YearsUntil(a, b time.Time) int { return DefaultCalendar().YearsUntil(a, b) }

// PeriodUntil splits the time from a to b using the default calendar.
func PeriodUntil(a, b time.Time) Period { return DefaultCalendar().PeriodUntil(a, b) }
