package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/berrythewa/longan/pkg/datetime"
)

// newDateCmd creates the date command
func newDateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "date",
		Short: "Date and time helpers",
		Long: `Work with dates and times:
  • Format and parse with patterns such as yyyy-MM-dd HH:mm:ss
  • Move dates to calendar landmarks (first day of month, next Monday)
  • Add calendar units and measure the time between two instants
  • Show and follow the system time zone

Instants are given as "now", epoch milliseconds, RFC 3339 or text in the
configured pattern. Dates are given as "today", "yesterday" or yyyy-MM-dd.`,
	}

	cmd.AddCommand(newDateFormatCmd())
	cmd.AddCommand(newDateParseCmd())
	cmd.AddCommand(newDateTodayCmd())
	cmd.AddCommand(newDateAdjustCmd())
	cmd.AddCommand(newDateWithCmd())
	cmd.AddCommand(newDatePlusCmd("plus", 1))
	cmd.AddCommand(newDatePlusCmd("minus", -1))
	cmd.AddCommand(newDateUntilCmd())
	cmd.AddCommand(newDateZoneCmd())

	return cmd
}

// parseInstant reads the instant forms accepted on the command line.
func parseInstant(s string, cal *datetime.Calendar, loc *time.Location) (time.Time, error) {
	switch strings.ToLower(s) {
	case "", "now":
		return cal.Now().In(loc), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := datetime.ParseInstant(s, cfg.DateTime.Pattern, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid instant %q: %w", s, err)
	}
	return t, nil
}

func parseDate(s string, cal *datetime.Calendar) (civil.Date, error) {
	switch strings.ToLower(s) {
	case "today":
		return cal.Today(), nil
	case "yesterday":
		return cal.Today().AddDays(-1), nil
	case "tomorrow":
		return cal.Today().AddDays(1), nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q, want yyyy-MM-dd", s)
	}
	return d, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(s)
	for w := time.Sunday; w <= time.Saturday; w++ {
		name := strings.ToLower(w.String())
		if s == name || s == name[:3] {
			return w, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func writeInstant(cmd *cobra.Command, t time.Time, pattern string) error {
	if pattern == "" {
		fmt.Fprintln(cmd.OutOrStdout(), t.Format(time.RFC3339Nano))
		return nil
	}
	out, err := datetime.Format(t, pattern, t.Location())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func newDateFormatCmd() *cobra.Command {
	var pattern, zone string

	cmd := &cobra.Command{
		Use:   "format [instant]",
		Short: "Format an instant with a pattern",
		Long: `Format an instant (default now) with a pattern.

Examples:
  longan date format
  longan date format -p "EEE, d MMM yyyy" 1609459200000
  longan date format -z Asia/Tokyo -p "HH:mm z" now`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := newCalendarIn(zone)
			if err != nil {
				return err
			}
			loc := cal.Location()
			value := ""
			if len(args) > 0 {
				value = args[0]
			}
			t, err := parseInstant(value, cal, loc)
			if err != nil {
				return err
			}
			if pattern == "" {
				pattern = cfg.DateTime.Pattern
			}
			return writeInstant(cmd, t.In(loc), pattern)
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "output pattern (default is the configured pattern)")
	cmd.Flags().StringVarP(&zone, "zone", "z", "", "IANA time zone (default is the configured zone)")
	return cmd
}

func newDateParseCmd() *cobra.Command {
	var (
		pattern string
		zone    string
		epoch   bool
		seconds bool
	)

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Parse text with a pattern",
		Long: `Parse text with a pattern and print the instant.

Text without an offset is read in the configured zone or --zone.

Examples:
  longan date parse "2021-01-01 08:30:00"
  longan date parse -p yyyy-MM-dd 2021-01-01 --epoch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := newCalendarIn(zone)
			if err != nil {
				return err
			}
			loc := cal.Location()
			if pattern == "" {
				pattern = cfg.DateTime.Pattern
			}

			out := cmd.OutOrStdout()
			switch {
			case seconds:
				secs, err := datetime.ToEpochSeconds(args[0], pattern, loc)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, secs)
			case epoch:
				ms, err := datetime.ToEpochMilliseconds(args[0], pattern, loc)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ms)
			default:
				t, err := datetime.ParseInstant(args[0], pattern, loc)
				if err != nil {
					return err
				}
				return writeInstant(cmd, t, "")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "input pattern (default is the configured pattern)")
	cmd.Flags().StringVarP(&zone, "zone", "z", "", "zone for text without an offset")
	cmd.Flags().BoolVar(&epoch, "epoch", false, "print epoch milliseconds")
	cmd.Flags().BoolVar(&seconds, "seconds", false, "print epoch seconds")
	return cmd
}

func newDateTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today [date]",
		Short: "Print today's date, or whether a date is today or yesterday",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal := newCalendar()
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, cal.Today())
				return nil
			}

			d, err := parseDate(args[0], cal)
			if err != nil {
				return err
			}
			switch {
			case cal.IsToday(d):
				fmt.Fprintln(out, "today")
			case cal.IsYesterday(d):
				fmt.Fprintln(out, "yesterday")
			default:
				fmt.Fprintf(out, "%d days from today\n", datetime.DateUntil(cal.Today(), d, datetime.Day))
			}
			return nil
		},
	}
}

var dateAdjusters = map[string]datetime.Adjuster{
	"first-day-of-year":       datetime.FirstDayOfYear,
	"last-day-of-year":        datetime.LastDayOfYear,
	"first-day-of-next-year":  datetime.FirstDayOfNextYear,
	"first-day-of-last-year":  datetime.FirstDayOfLastYear,
	"first-day-of-month":      datetime.FirstDayOfMonth,
	"last-day-of-month":       datetime.LastDayOfMonth,
	"first-day-of-next-month": datetime.FirstDayOfNextMonth,
	"first-day-of-last-month": datetime.FirstDayOfLastMonth,
}

var weekdayAdjusters = map[string]func(time.Weekday) datetime.Adjuster{
	"first-in-month":   datetime.FirstInMonth,
	"last-in-month":    datetime.LastInMonth,
	"next":             datetime.Next,
	"next-or-same":     datetime.NextOrSame,
	"previous":         datetime.Previous,
	"previous-or-same": datetime.PreviousOrSame,
}

func lookupAdjuster(name, weekday string, ordinal int) (datetime.Adjuster, error) {
	if adj, ok := dateAdjusters[name]; ok {
		return adj, nil
	}
	if weekday == "" {
		return nil, fmt.Errorf("unknown adjuster %q or missing --weekday", name)
	}
	w, err := parseWeekday(weekday)
	if err != nil {
		return nil, err
	}
	if name == "day-of-week-in-month" {
		return datetime.DayOfWeekInMonth(ordinal, w), nil
	}
	if build, ok := weekdayAdjusters[name]; ok {
		return build(w), nil
	}
	return nil, fmt.Errorf("unknown adjuster %q", name)
}

func newDateAdjustCmd() *cobra.Command {
	var (
		weekday string
		ordinal int
	)

	cmd := &cobra.Command{
		Use:   "adjust <date> <adjuster>",
		Short: "Move a date to a calendar landmark",
		Long: `Move a date to a calendar landmark.

Adjusters:
  first-day-of-year, last-day-of-year, first-day-of-next-year, first-day-of-last-year
  first-day-of-month, last-day-of-month, first-day-of-next-month, first-day-of-last-month
  first-in-month, last-in-month, next, next-or-same, previous, previous-or-same (need --weekday)
  day-of-week-in-month (needs --weekday and --ordinal)

Examples:
  longan date adjust 2021-12-15 first-day-of-next-month
  longan date adjust today next --weekday monday
  longan date adjust 2024-05-01 day-of-week-in-month -w thu -o 2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal := newCalendar()
			d, err := parseDate(args[0], cal)
			if err != nil {
				return err
			}
			adj, err := lookupAdjuster(args[1], weekday, ordinal)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), datetime.Adjust(d, adj))
			return nil
		},
	}

	cmd.Flags().StringVarP(&weekday, "weekday", "w", "", "weekday for weekday adjusters")
	cmd.Flags().IntVarP(&ordinal, "ordinal", "o", 1, "ordinal for day-of-week-in-month (negative counts from the end)")
	return cmd
}

func newDateWithCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "with <date-time> <field> <value>",
		Short: "Replace one field of a date-time",
		Long: `Replace one field of a date-time given as yyyy-MM-ddTHH:mm:ss or yyyy-MM-dd.
Day-of-month is clamped when the new year or month is shorter.

Fields: year, month, day, day-of-year, hour, minute, second, nano

Examples:
  longan date with 2021-01-31T10:00:00 month 2
  longan date with 2024-01-01 day-of-year 60`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dt, err := civil.ParseDateTime(args[0])
			if err != nil {
				d, derr := civil.ParseDate(args[0])
				if derr != nil {
					return fmt.Errorf("invalid date-time %q", args[0])
				}
				dt = civil.DateTime{Date: d}
			}
			value, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[2], err)
			}

			var result civil.DateTime
			switch args[1] {
			case "year":
				result = datetime.DateTimeWithYear(dt, value)
			case "month":
				result, err = datetime.DateTimeWithMonth(dt, value)
			case "day":
				result, err = datetime.DateTimeWithDayOfMonth(dt, value)
			case "day-of-year":
				result, err = datetime.DateTimeWithDayOfYear(dt, value)
			case "hour":
				result, err = datetime.WithHour(dt, value)
			case "minute":
				result, err = datetime.WithMinute(dt, value)
			case "second":
				result, err = datetime.WithSecond(dt, value)
			case "nano":
				result, err = datetime.WithNano(dt, value)
			default:
				return fmt.Errorf("unknown field %q", args[1])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func newDatePlusCmd(name string, sign int64) *cobra.Command {
	var pattern, zone string

	cmd := &cobra.Command{
		Use:   name + " <instant> <amount> <unit>",
		Short: strings.ToUpper(name[:1]) + name[1:] + " an amount of a unit to an instant",
		Long: `Shift an instant by an amount of a unit.

Date-based units (day, week, month, quarter, year, century) keep the local
time of day in the zone; month arithmetic clamps the day to the month end.
Time-based units add an exact duration.

Examples:
  longan date ` + name + ` now 3 days
  longan date ` + name + ` 2021-01-31T10:00:00Z 1 month`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := newCalendarIn(zone)
			if err != nil {
				return err
			}
			loc := cal.Location()
			t, err := parseInstant(args[0], cal, loc)
			if err != nil {
				return err
			}
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			unit, err := datetime.ParseUnit(args[2])
			if err != nil {
				return err
			}
			return writeInstant(cmd, cal.Plus(t, sign*amount, unit), pattern)
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "output pattern (default RFC 3339)")
	cmd.Flags().StringVarP(&zone, "zone", "z", "", "zone the arithmetic happens in")
	return cmd
}

func newDateUntilCmd() *cobra.Command {
	var (
		unitName string
		zone     string
		period   bool
	)

	cmd := &cobra.Command{
		Use:   "until <from> <to>",
		Short: "Count whole units between two instants",
		Long: `Count the whole units from one instant to another. The result is
negative when <to> is before <from>.

Examples:
  longan date until 2021-01-01T00:00:00Z 2021-03-01T00:00:00Z --unit month
  longan date until 1609459200000 now --period`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := newCalendarIn(zone)
			if err != nil {
				return err
			}
			loc := cal.Location()
			from, err := parseInstant(args[0], cal, loc)
			if err != nil {
				return err
			}
			to, err := parseInstant(args[1], cal, loc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if period {
				fmt.Fprintln(out, cal.PeriodUntil(from, to))
				return nil
			}
			unit, err := datetime.ParseUnit(unitName)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cal.Until(from, to, unit))
			return nil
		},
	}

	cmd.Flags().StringVarP(&unitName, "unit", "u", "day", "unit to count")
	cmd.Flags().StringVarP(&zone, "zone", "z", "", "zone whose calendar days are counted")
	cmd.Flags().BoolVar(&period, "period", false, "print the ISO 8601 period instead")
	return cmd
}

func newDateZoneCmd() *cobra.Command {
	var (
		watch   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "zone",
		Short: "Show the system time zone",
		Long: `Print the current system time zone. With --watch, keep running and
print the zone again whenever the system zone changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			zones := newZoneCache()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, zones.Current())
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			changed := make(chan *time.Location, 4)
			zones.OnChange(func(loc *time.Location) {
				select {
				case changed <- loc:
				default:
				}
			})
			if err := zones.Watch(ctx); err != nil {
				return err
			}
			logger.Info("Watching system time zone", zap.Strings("paths", cfg.DateTime.ZonePaths))

			for {
				select {
				case <-ctx.Done():
					return nil
				case loc := <-changed:
					fmt.Fprintln(out, loc)
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "print zone changes until interrupted")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "stop watching after this long (0 for infinite)")
	return cmd
}
