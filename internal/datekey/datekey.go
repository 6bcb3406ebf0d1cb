// Package datekey converts between calendar dates and the canonical
// YYYY-MM-DD day keys used throughout the state tree, and builds the
// Monday-first month grid.
package datekey

import (
	"fmt"
	"time"
)

// Layout is the canonical day-key layout.
const Layout = "2006-01-02"

const gridWeeks = 6

// DayKey formats t's own calendar components as YYYY-MM-DD. No timezone
// conversion is applied.
func DayKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseDayKey parses a day key into midnight of that day in loc. It rejects
// anything that does not round-trip through DayKey.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(Layout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("datekey: invalid day key %q: %w", key, err)
	}
	if DayKey(t) != key {
		return time.Time{}, fmt.Errorf("datekey: non-canonical day key %q", key)
	}
	return t, nil
}

// Valid reports whether key is a canonical day key.
func Valid(key string) bool {
	_, err := ParseDayKey(key, time.UTC)
	return err == nil
}

// MonthPrefix returns the "YYYY-MM-" prefix shared by every day key of the
// month.
func MonthPrefix(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d-", year, int(month))
}

// YearPrefix returns the "YYYY-" prefix shared by every day key of the year.
func YearPrefix(year int) string {
	return fmt.Sprintf("%04d-", year)
}

// IsSameCalendarDay compares year, month and day only.
func IsSameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MonthGrid returns the weeks covering t's month, Monday first. Six weeks
// are generated starting at the Monday on or before the 1st; a trailing
// week lying entirely in the following month is dropped, so the result has
// 5 or 6 rows.
func MonthGrid(t time.Time) [][7]time.Time {
	year, month, _ := t.Date()
	loc := t.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)

	// Monday is 0, Sunday is 6.
	offset := (int(first.Weekday()) + 6) % 7
	start := first.AddDate(0, 0, -offset)

	weeks := make([][7]time.Time, 0, gridWeeks)
	for w := 0; w < gridWeeks; w++ {
		var week [7]time.Time
		for d := 0; d < 7; d++ {
			week[d] = start.AddDate(0, 0, w*7+d)
		}
		weeks = append(weeks, week)
	}

	last := weeks[len(weeks)-1]
	outside := true
	for _, d := range last {
		if d.Month() == month {
			outside = false
			break
		}
	}
	if outside {
		weeks = weeks[:len(weeks)-1]
	}
	return weeks
}
