package datetime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vjeantet/jodaTime"
)

type fieldClass uint8

const (
	classDate fieldClass = 1 << iota
	classTime
	classZone
)

// PatternError reports a pattern that cannot be compiled, or a compiled
// pattern that cannot be used for parsing.
type PatternError struct {
	Pattern string
	Pos     int
	Msg     string
}

func (e *PatternError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("datetime: pattern %q: %s", e.Pattern, e.Msg)
	}
	return fmt.Sprintf("datetime: pattern %q at %d: %s", e.Pattern, e.Pos, e.Msg)
}

type token struct {
	literal string
	letter  rune
	count   int
	layout  string
	format  func(time.Time) string
	class   fieldClass
}

// Formatter formats and parses date-times with a letter pattern such as
// "yyyy-MM-dd HH:mm:ss". Letters follow the conventions of the common
// date-time formatters: y year, M month, d day, E weekday, H hour, m minute,
// s second, S fraction, a am/pm, z/Z/X/x zone, and text in single quotes is
// copied verbatim.
//
// Fields that Joda and java.time agree on are rendered by jodaTime; the rest
// are rendered here. Parsing goes through time.ParseInLocation and needs a
// pattern that maps onto a Go layout. Two digit years read as 2000-2099, an
// hour of 24 in a k field reads as midnight, and a zone name in a z field
// must be one that the target location uses.
type Formatter struct {
	pattern   string
	tokens    []token
	classes   fieldClass
	layout    string
	layoutErr error

	twoDigitYear bool
	clockHour    bool
	zoneName     bool
}

var formatterCache sync.Map

// NewFormatter compiles pattern.
func NewFormatter(pattern string) (*Formatter, error) {
	tokens, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	f := &Formatter{pattern: pattern, tokens: tokens}
	hourOfDay := false
	for _, tok := range tokens {
		f.classes |= tok.class
		switch tok.letter {
		case 'y', 'u':
			f.twoDigitYear = f.twoDigitYear || tok.count == 2
		case 'k':
			f.clockHour = true
		case 'H':
			hourOfDay = true
		case 'z':
			f.zoneName = f.zoneName || tok.layout != ""
		}
	}
	// a 24 can only be traced back to the k field when no H shares its layout
	f.clockHour = f.clockHour && !hourOfDay
	f.layout, f.layoutErr = f.buildLayout()
	return f, nil
}

// MustFormatter is like NewFormatter but panics on an invalid pattern.
func MustFormatter(pattern string) *Formatter {
	f, err := NewFormatter(pattern)
	if err != nil {
		panic(err)
	}
	return f
}

func formatterFor(pattern string) (*Formatter, error) {
	if f, ok := formatterCache.Load(pattern); ok {
		return f.(*Formatter), nil
	}
	f, err := NewFormatter(pattern)
	if err != nil {
		return nil, err
	}
	formatterCache.Store(pattern, f)
	return f, nil
}

// Pattern returns the source pattern
func (f *Formatter) Pattern() string { return f.pattern }

// Layout returns the equivalent Go layout, or an error when the pattern has
// no layout form.
func (f *Formatter) Layout() (string, error) { return f.layout, f.layoutErr }

// Format renders t in its own location.
func (f *Formatter) Format(t time.Time) string {
	var b strings.Builder
	for _, tok := range f.tokens {
		switch {
		case tok.letter == 0:
			b.WriteString(tok.literal)
		case tok.format != nil:
			b.WriteString(tok.format(t))
		default:
			b.WriteString(t.Format(tok.layout))
		}
	}
	return b.String()
}

// Parse reads text, interpreting values without an explicit offset in loc.
func (f *Formatter) Parse(text string, loc *time.Location) (time.Time, error) {
	if f.layoutErr != nil {
		return time.Time{}, f.layoutErr
	}
	t, err := time.ParseInLocation(f.layout, text, loc)
	if err != nil && f.clockHour {
		t, err = f.parseMidnight(text, loc, err)
	}
	if err != nil {
		return time.Time{}, err
	}
	if f.twoDigitYear && t.Year() < 2000 {
		t = time.Date(t.Year()+100, t.Month(), t.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	if f.zoneName {
		if err := checkZoneName(t, loc); err != nil {
			return time.Time{}, err
		}
	}
	return t, nil
}

// parseMidnight retries a k field that read 24, which the Go hour element
// rejects, as hour 0 of the same day.
func (f *Formatter) parseMidnight(text string, loc *time.Location, err error) (time.Time, error) {
	var perr *time.ParseError
	if !errors.As(err, &perr) || perr.LayoutElem != "15" || !strings.Contains(perr.Message, "hour out of range") {
		return time.Time{}, err
	}
	end := len(text) - len(perr.ValueElem)
	if end < 2 || text[end-2:end] != "24" {
		return time.Time{}, err
	}
	return time.ParseInLocation(f.layout, text[:end-2]+"00"+text[end:], loc)
}

// checkZoneName rejects a zone abbreviation that loc does not use. Go reads
// such a name as a zone with offset zero, which shifts the instant.
func checkZoneName(t time.Time, loc *time.Location) error {
	if t.Location() == loc || t.Location() == time.UTC {
		return nil
	}
	name, offset := t.Zone()
	if offset != 0 || strings.HasPrefix(name, "GMT") {
		return nil
	}
	return fmt.Errorf("datetime: zone %q is not used in %s", name, loc)
}

func (f *Formatter) uses(c fieldClass) bool {
	return f.classes&c != 0
}

// layoutCheckTime has a distinct value in every field so that layouts whose
// adjacent chunks merge into a different Go element format differently.
var layoutCheckTime = time.Date(2009, time.November, 17, 20, 34, 58, 651387237,
	time.FixedZone("XYZ", -(3*3600 + 30*60)))

func (f *Formatter) buildLayout() (string, error) {
	var b strings.Builder
	for _, tok := range f.tokens {
		if tok.letter == 0 {
			if !literalSafe(tok.literal) {
				return "", &PatternError{Pattern: f.pattern, Pos: -1,
					Msg: fmt.Sprintf("literal %q cannot be parsed", tok.literal)}
			}
			b.WriteString(tok.literal)
			continue
		}
		if tok.layout == "" {
			return "", &PatternError{Pattern: f.pattern, Pos: -1,
				Msg: fmt.Sprintf("field %s is format-only", strings.Repeat(string(tok.letter), tok.count))}
		}
		b.WriteString(tok.layout)
	}
	layout := b.String()
	if layoutCheckTime.Format(layout) != f.Format(layoutCheckTime) {
		return "", &PatternError{Pattern: f.pattern, Pos: -1, Msg: "adjacent fields are ambiguous when parsing"}
	}
	return layout, nil
}

// literalSafe reports whether s can appear verbatim in a Go layout.
func literalSafe(s string) bool {
	if strings.ContainsAny(s, "0123456789") {
		return false
	}
	for _, chunk := range []string{"Jan", "Mon", "MST", "PM", "pm"} {
		if strings.Contains(s, chunk) {
			return false
		}
	}
	return true
}

func compile(pattern string) ([]token, error) {
	var (
		tokens []token
		lit    strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{literal: lit.String()})
			lit.Reset()
		}
	}

	runes := []rune(pattern)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\'':
			if i+1 < len(runes) && runes[i+1] == '\'' {
				lit.WriteRune('\'')
				i += 2
				continue
			}
			j := i + 1
			for {
				if j >= len(runes) {
					return nil, &PatternError{Pattern: pattern, Pos: i, Msg: "unterminated quote"}
				}
				if runes[j] == '\'' {
					if j+1 < len(runes) && runes[j+1] == '\'' {
						lit.WriteRune('\'')
						j += 2
						continue
					}
					break
				}
				lit.WriteRune(runes[j])
				j++
			}
			i = j + 1

		case isPatternLetter(r):
			j := i
			for j < len(runes) && runes[j] == r {
				j++
			}
			count := j - i
			tok, msg := fieldToken(r, count)
			if msg != "" {
				return nil, &PatternError{Pattern: pattern, Pos: i, Msg: msg}
			}
			if r == 'S' {
				// a fraction directly after '.' or ',' maps onto Go's ".000"
				if s := lit.String(); len(s) > 0 && (s[len(s)-1] == '.' || s[len(s)-1] == ',') {
					sep, digits := s[len(s)-1:], tok.format
					tok.layout = sep + strings.Repeat("0", count)
					tok.format = func(t time.Time) string { return sep + digits(t) }
					lit.Reset()
					lit.WriteString(s[:len(s)-1])
				}
			}
			flush()
			tokens = append(tokens, tok)
			i = j

		case strings.ContainsRune("[]{}#", r):
			return nil, &PatternError{Pattern: pattern, Pos: i, Msg: fmt.Sprintf("reserved character %q", r)}

		default:
			lit.WriteRune(r)
			i++
		}
	}
	flush()
	return tokens, nil
}

func isPatternLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func fieldToken(letter rune, count int) (token, string) {
	tok := token{letter: letter, count: count}
	tooMany := fmt.Sprintf("too many pattern letters: %s", strings.Repeat(string(letter), count))

	switch letter {
	case 'G':
		tok.class = classDate
		switch {
		case count <= 3:
			tok.format = func(t time.Time) string { return era(t, "AD", "BC") }
		case count == 4:
			tok.format = func(t time.Time) string { return era(t, "Anno Domini", "Before Christ") }
		case count == 5:
			tok.format = func(t time.Time) string { return era(t, "A", "B") }
		default:
			return tok, tooMany
		}

	case 'y', 'u':
		tok.class = classDate
		switch {
		case count == 2:
			tok.layout = "06"
		case count <= 4:
			tok.layout = "2006"
		default:
			tok.format = func(t time.Time) string { return pad(t.Year(), count) }
		}

	case 'M', 'L':
		tok.class = classDate
		switch count {
		case 1, 2, 3, 4:
			tok.layout = []string{"1", "01", "Jan", "January"}[count-1]
			tok.format = joda(strings.Repeat("M", count))
		case 5:
			tok.format = func(t time.Time) string { return t.Month().String()[:1] }
		default:
			return tok, tooMany
		}

	case 'd':
		tok.class = classDate
		switch count {
		case 1:
			tok.layout = "2"
		case 2:
			tok.layout = "02"
		default:
			return tok, tooMany
		}
		tok.format = joda(strings.Repeat("d", count))

	case 'D':
		tok.class = classDate
		switch count {
		case 1, 2:
			tok.format = joda(strings.Repeat("D", count))
		case 3:
			tok.layout = "002"
		default:
			return tok, tooMany
		}

	case 'Q', 'q':
		tok.class = classDate
		switch count {
		case 1, 2:
			tok.format = func(t time.Time) string { return pad(quarter(t), count) }
		case 3:
			tok.format = func(t time.Time) string { return "Q" + strconv.Itoa(quarter(t)) }
		case 4:
			tok.format = func(t time.Time) string {
				return []string{"1st", "2nd", "3rd", "4th"}[quarter(t)-1] + " quarter"
			}
		default:
			return tok, tooMany
		}

	case 'E':
		tok.class = classDate
		switch {
		case count <= 3:
			tok.layout = "Mon"
			tok.format = joda("EEE")
		case count == 4:
			tok.layout = "Monday"
			tok.format = joda("EEEE")
		case count == 5:
			tok.format = func(t time.Time) string { return t.Weekday().String()[:1] }
		default:
			return tok, tooMany
		}

	case 'a':
		tok.class = classTime
		if count > 1 {
			return tok, tooMany
		}
		tok.layout = "PM"

	case 'H', 'k':
		// Go reads one or two digits for "15", so both widths parse
		tok.class = classTime
		if count > 2 {
			return tok, tooMany
		}
		tok.layout = "15"
		tok.format = joda(strings.Repeat(string(letter), count))

	case 'K', 'h':
		// Go's "3" reads 0 through 12, covering both K and h
		tok.class = classTime
		if count > 2 {
			return tok, tooMany
		}
		tok.layout = []string{"3", "03"}[count-1]
		tok.format = joda(strings.Repeat(string(letter), count))

	case 'm':
		tok.class = classTime
		switch count {
		case 1:
			tok.layout = "4"
		case 2:
			tok.layout = "04"
		default:
			return tok, tooMany
		}
		tok.format = joda(strings.Repeat("m", count))

	case 's':
		tok.class = classTime
		switch count {
		case 1:
			tok.layout = "5"
		case 2:
			tok.layout = "05"
		default:
			return tok, tooMany
		}
		tok.format = joda(strings.Repeat("s", count))

	case 'S':
		tok.class = classTime
		switch {
		case count <= 3:
			tok.format = joda(strings.Repeat("S", count))
		case count <= 9:
			tok.format = func(t time.Time) string {
				return fmt.Sprintf("%09d", t.Nanosecond())[:count]
			}
		default:
			return tok, tooMany
		}

	case 'n':
		tok.class = classTime
		tok.format = func(t time.Time) string { return pad(t.Nanosecond(), count) }

	case 'A':
		tok.class = classTime
		tok.format = func(t time.Time) string { return pad(int(sinceMidnight(t)/time.Millisecond), count) }

	case 'N':
		tok.class = classTime
		tok.format = func(t time.Time) string { return pad(int(sinceMidnight(t)), count) }

	case 'V':
		tok.class = classZone
		if count != 2 {
			return tok, "pattern letter V must appear twice"
		}
		tok.format = func(t time.Time) string { return t.Location().String() }

	case 'z':
		tok.class = classZone
		switch {
		case count <= 3:
			tok.layout = "MST"
			tok.format = joda("z")
		case count == 4:
			tok.format = func(t time.Time) string { return t.Location().String() }
		default:
			return tok, tooMany
		}

	case 'O':
		tok.class = classZone
		switch count {
		case 1:
			tok.format = func(t time.Time) string { return gmtOffset(t, false) }
		case 4:
			tok.format = func(t time.Time) string { return gmtOffset(t, true) }
		default:
			return tok, "pattern letter O must appear once or four times"
		}

	case 'X':
		tok.class = classZone
		layouts := []string{"Z07", "Z0700", "Z07:00", "Z070000", "Z07:00:00"}
		if count > len(layouts) {
			return tok, tooMany
		}
		tok.layout = layouts[count-1]

	case 'x':
		tok.class = classZone
		layouts := []string{"-07", "-0700", "-07:00", "-070000", "-07:00:00"}
		if count > len(layouts) {
			return tok, tooMany
		}
		tok.layout = layouts[count-1]

	case 'Z':
		tok.class = classZone
		switch {
		case count <= 3:
			tok.layout = "-0700"
		case count == 4:
			tok.format = func(t time.Time) string { return gmtOffset(t, true) }
		case count == 5:
			tok.layout = "Z07:00"
		default:
			return tok, tooMany
		}

	default:
		return tok, fmt.Sprintf("unknown pattern letter %q", letter)
	}
	return tok, ""
}

// joda renders one field with jodaTime. Only runs whose Joda meaning and
// widths match java.time are routed here.
func joda(run string) func(time.Time) string {
	return func(t time.Time) string { return jodaTime.Format(run, t) }
}

func pad(v, width int) string {
	if v < 0 {
		return "-" + pad(-v, width)
	}
	return fmt.Sprintf("%0*d", width, v)
}

func era(t time.Time, ad, bc string) string {
	if t.Year() <= 0 {
		return bc
	}
	return ad
}

func quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

func sinceMidnight(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}

// gmtOffset renders the localized offset form: GMT, GMT+8, GMT+08:00.
func gmtOffset(t time.Time, full bool) string {
	_, offset := t.Zone()
	if offset == 0 {
		return "GMT"
	}
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	h, m, s := offset/3600, offset/60%60, offset%60
	if full {
		out := fmt.Sprintf("GMT%s%02d:%02d", sign, h, m)
		if s != 0 {
			out += fmt.Sprintf(":%02d", s)
		}
		return out
	}
	out := fmt.Sprintf("GMT%s%d", sign, h)
	if m != 0 || s != 0 {
		out += fmt.Sprintf(":%02d", m)
	}
	if s != 0 {
		out += fmt.Sprintf(":%02d", s)
	}
	return out
}
