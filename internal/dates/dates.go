// Package dates provides civil-day arithmetic in local time. All helpers
// operate on start-of-day values so that daylight-saving transitions never
// shift a date by a partial day.
package dates

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DayKeyLayout is the canonical YYYY-MM-DD date-key format.
const DayKeyLayout = "2006-01-02"

// StartOfDay returns t with the time-of-day zeroed, keeping its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddDays returns t shifted by n whole civil days. n may be negative.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DayDifference returns the number of whole days from b to a, computed on
// start-of-day values. The result is rounded, not truncated, so a 23h or
// 25h DST day still counts as one day.
func DayDifference(a, b time.Time) int {
	d := StartOfDay(a).Sub(StartOfDay(b))
	return int(math.Round(d.Hours() / 24))
}

// WeekdayIndex returns the weekday of t with Sunday as 0.
func WeekdayIndex(t time.Time) int {
	return int(StartOfDay(t).Weekday())
}

// MostRecentSunday returns the Sunday on or before t, at start of day.
func MostRecentSunday(t time.Time) time.Time {
	return AddDays(StartOfDay(t), -WeekdayIndex(t))
}

// ParseDayKey parses a YYYY-MM-DD literal into a local start-of-day time.
// Malformed input (wrong part count, non-numeric or zero components)
// reports ok=false instead of an error; callers decide the fallback.
func ParseDayKey(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n == 0 {
			return time.Time{}, false
		}
		nums[i] = n
	}
	year, month, day := nums[0], nums[1], nums[2]
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
}

// FormatDayKey renders t as YYYY-MM-DD. For every t,
// ParseDayKey(FormatDayKey(t)) lands on the same calendar day.
func FormatDayKey(t time.Time) string {
	return StartOfDay(t).Format(DayKeyLayout)
}

// FormatDayRange renders a half-open day range for logs and descriptions.
func FormatDayRange(start, end time.Time) string {
	return fmt.Sprintf("%s → %s", FormatDayKey(start), FormatDayKey(end))
}
