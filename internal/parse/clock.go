package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the number of minutes between two midnights.
const MinutesPerDay = 24 * 60

var (
	displayRe = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*([AP])\.?M\.?$`)
	clockRe   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// timestampLayouts are tried in order when decoding upstream timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// DisplayTime parses a 12-hour "HH:MM AM" string into minutes since midnight.
func DisplayTime(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	m := displayRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("unable to parse display time: %q", raw)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, fmt.Errorf("display time out of range: %q", raw)
	}

	// 12 AM is midnight, 12 PM is noon.
	hour %= 12
	if strings.EqualFold(m[3], "P") {
		hour += 12
	}
	return hour*60 + minute, nil
}

// FormatDisplay renders minutes since midnight as "HH:MM AM".
func FormatDisplay(minute int) string {
	minute = ((minute % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return time.Date(2000, 1, 1, minute/60, minute%60, 0, 0, time.UTC).Format("03:04 PM")
}

// ClockTime parses a 24-hour "HH:MM" string into minutes since midnight.
func ClockTime(raw string) (int, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, fmt.Errorf("unable to parse clock time: %q", raw)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 24 || minute > 59 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("clock time out of range: %q", raw)
	}
	return hour*60 + minute, nil
}

// Date parses a "YYYY-MM-DD" string as midnight in loc.
func Date(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD format: %q", raw)
	}
	return t, nil
}

// Timestamp parses an upstream timestamp. Strings without an offset are read in loc.
func Timestamp(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	// Date-only values are accepted for meeting dates.
	if t, err := Date(s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp %q", raw)
}

// MinuteOfDay returns the wall-clock minute of t in loc. Zero times are rejected.
func MinuteOfDay(t time.Time, loc *time.Location) (int, bool) {
	if t.IsZero() {
		return 0, false
	}
	t = t.In(loc)
	return t.Hour()*60 + t.Minute(), true
}

// TruncateToDay returns midnight of t's calendar day in loc.
func TruncateToDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// At anchors minutes since midnight to the calendar day of date in loc.
func At(date time.Time, minute int, loc *time.Location) time.Time {
	return TruncateToDay(date, loc).Add(time.Duration(minute) * time.Minute)
}
