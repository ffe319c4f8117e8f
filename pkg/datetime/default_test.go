package datetime

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useSystemZone installs a default zone cache that resolves to loc and
// restores the previous cache when the test ends.
func useSystemZone(t *testing.T, loc *time.Location) {
	t.Helper()
	defaultZonesMu.Lock()
	prev := defaultZones
	defaultZonesMu.Unlock()

	SetDefaultZoneCache(NewZoneCache(WithZoneResolver(func() (*time.Location, error) { return loc, nil })))
	t.Cleanup(func() { SetDefaultZoneCache(prev) })
}

// useDefaultCalendar installs c as the default calendar for the test.
func useDefaultCalendar(t *testing.T, c *Calendar) {
	t.Helper()
	defaultCalendarMu.Lock()
	prev := defaultCalendar
	defaultCalendarMu.Unlock()

	SetDefaultCalendar(c)
	t.Cleanup(func() { SetDefaultCalendar(prev) })
}

func TestSystemZone_UsesDefaultCache(t *testing.T) {
	plus9 := time.FixedZone("PLUS9", 9*3600)
	useSystemZone(t, plus9)

	assert.Equal(t, plus9, SystemZone())
	assert.Same(t, DefaultZoneCache(), DefaultZoneCache())
}

func TestNilLocation_FallsBackToSystemZone(t *testing.T) {
	useSystemZone(t, time.FixedZone("PLUS9", 9*3600))
	const pattern = "yyyy-MM-dd HH:mm"
	epoch := time.Unix(0, 0)

	text, err := Format(epoch, pattern, nil)
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01 09:00", text)

	got, err := ParseInstant("1970-01-01 09:00", pattern, nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(epoch), "got %s", got)

	ms, err := ToEpochMilliseconds("1970-01-01 09:00", pattern, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ms)

	dt := civil.DateTime{Date: date(1970, time.January, 1), Time: civil.Time{Hour: 9}}
	assert.True(t, ToInstant(dt, nil).Equal(epoch))
	assert.Equal(t, dt, ToDateTime(epoch, nil))
	assert.Equal(t, date(1970, time.January, 2), ToDate(epoch.Add(15*time.Hour), nil))
}

func TestDefaultCalendar_UsesSystemZone(t *testing.T) {
	minus5 := time.FixedZone("MINUS5", -5*3600)
	useSystemZone(t, minus5)
	useDefaultCalendar(t, nil)

	assert.Equal(t, minus5, DefaultCalendar().Location())
}

func TestPackageCalendarHelpers(t *testing.T) {
	useSystemZone(t, time.UTC)
	now := time.Date(2021, time.December, 15, 10, 0, 0, 0, time.UTC)
	useDefaultCalendar(t, NewCalendar(
		WithClock(clockwork.NewFakeClockAt(now)),
		WithZoneCache(DefaultZoneCache())))

	assert.Equal(t, date(2021, time.December, 15), Today())
	assert.True(t, IsToday(date(2021, time.December, 15)))
	assert.True(t, IsYesterday(date(2021, time.December, 14)))

	jan31 := time.Date(2021, time.January, 31, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2021, time.February, 28, 10, 0, 0, 0, time.UTC), Plus(jan31, 1, Month))
	assert.Equal(t, time.Date(2020, time.December, 31, 10, 0, 0, 0, time.UTC), Minus(jan31, 1, Month))
	assert.Equal(t, jan31.Add(3*time.Hour), Plus(jan31, 3, Hour))
	assert.Equal(t, time.Date(2021, time.March, 1, 12, 0, 0, 0, time.UTC),
		PlusPeriod(jan31, Period{Months: 1, Days: 1, Hours: 2}))
	assert.Equal(t, jan31, MinusPeriod(jan31.AddDate(0, 0, 2), Period{Days: 2}))

	from := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(789), Until(from, to, Day))
	assert.Equal(t, 789, DaysUntil(from, to))
	assert.Equal(t, 26, MonthsUntil(from, to))
	assert.Equal(t, 2, YearsUntil(from, to))
	assert.Equal(t, "P2Y2M", PeriodUntil(from, to).String())
}
