package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"shiftcal/internal/datekey"
	"shiftcal/internal/stats"
)

// parseDay accepts a day key, "today" or "tomorrow".
func (a *app) parseDay(s string) (string, error) {
	switch strings.ToLower(s) {
	case "today", "hoy":
		return datekey.DayKey(a.now()), nil
	case "tomorrow", "mañana":
		return datekey.DayKey(a.now().AddDate(0, 0, 1)), nil
	}
	if !datekey.Valid(s) {
		return "", fmt.Errorf("invalid day %q, want YYYY-MM-DD", s)
	}
	return s, nil
}

// parseMonth accepts YYYY-MM; an empty string means the current month.
func (a *app) parseMonth(s string) (int, time.Month, error) {
	if s == "" {
		now := a.now()
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, want YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// parsePeriod accepts YYYY-MM or YYYY; empty means the current month.
func (a *app) parsePeriod(s string) (stats.Period, error) {
	if len(s) == 4 {
		y, err := strconv.Atoi(s)
		if err != nil {
			return stats.Period{}, fmt.Errorf("invalid year %q", s)
		}
		return stats.Period{Year: y}, nil
	}
	y, m, err := a.parseMonth(s)
	if err != nil {
		return stats.Period{}, err
	}
	return stats.Period{Year: y, Month: m}, nil
}

// parseSlot converts a 1-based slot number to an index.
func parseSlot(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 3 {
		return 0, fmt.Errorf("invalid slot %q, want 1, 2 or 3", s)
	}
	return n - 1, nil
}
