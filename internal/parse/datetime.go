package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFormat is wrapped by every parse failure in this package.
var ErrInvalidFormat = errors.New("invalid format")

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2})(?:\.(\d{1,9}))?)?$`)

const (
	// LocalDateTimeLayout is the wire format of a passage timestamp: ISO-8601 without an offset.
	LocalDateTimeLayout = "2006-01-02T15:04:05"
	DateLayout          = "2006-01-02"
)

var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
}

// ParseClock parses a time of day ("06:30", "06:30:00" or "06:30:00.25") and
// returns its offset from midnight.
func ParseClock(raw string) (time.Duration, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, fmt.Errorf("%w: clock time %q", ErrInvalidFormat, raw)
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	s := 0
	if m[3] != "" {
		s, _ = strconv.Atoi(m[3])
	}
	if h > 23 || mi > 59 || s > 59 {
		return 0, fmt.Errorf("%w: clock time %q out of range", ErrInvalidFormat, raw)
	}

	var nanos int
	if frac := m[4]; frac != "" {
		// right-pad to nanoseconds: ".5" is 500ms
		frac += strings.Repeat("0", 9-len(frac))
		nanos, _ = strconv.Atoi(frac)
	}

	return time.Duration(h)*time.Hour +
		time.Duration(mi)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(nanos), nil
}

// FormatClock renders an offset from midnight as HH:MM:SS, adding the
// fractional part only when it is non-zero.
func FormatClock(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second

	out := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if d > 0 {
		frac := strings.TrimRight(fmt.Sprintf("%09d", int64(d)), "0")
		out += "." + frac
	}
	return out
}

// ParseLocalDateTime parses a passage timestamp. Values without an offset are
// read as wall-clock time in loc; RFC 3339 values are converted into loc.
func ParseLocalDateTime(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range localDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: date-time %q", ErrInvalidFormat, raw)
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(raw string) (year int, month time.Month, day int, err error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: date %q", ErrInvalidFormat, raw)
	}
	return t.Year(), t.Month(), t.Day(), nil
}

// FormatDate is the inverse of ParseDate.
func FormatDate(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// ParseWeekday accepts English day names in any case, e.g. "SATURDAY".
func ParseWeekday(raw string) (time.Weekday, error) {
	name := strings.TrimSpace(raw)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(name, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: day of week %q", ErrInvalidFormat, raw)
}

// FormatWeekday renders a weekday in upper case ("SATURDAY").
func FormatWeekday(d time.Weekday) string {
	return strings.ToUpper(d.String())
}

// ParseMonth accepts English month names in any case, e.g. "JULY".
func ParseMonth(raw string) (time.Month, error) {
	name := strings.TrimSpace(raw)
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(name, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: month %q", ErrInvalidFormat, raw)
}

// FormatMonth renders a month in upper case ("JULY").
func FormatMonth(m time.Month) string {
	return strings.ToUpper(m.String())
}
