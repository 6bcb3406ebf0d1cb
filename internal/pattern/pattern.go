// Package pattern fills a calendar from a recurrence rule, e.g. a rotation
// of "every fourth day" or "weekdays of this month".
package pattern

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"shiftcal/internal/datekey"
	"shiftcal/internal/engine"
	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
)

const defaultMaxOccurrences = 1000

var (
	ErrInvalidRule  = errors.New("pattern: invalid recurrence rule")
	ErrInvalidRange = errors.New("pattern: range end is before range start")
)

// Request describes one fill.
type Request struct {
	CalendarID string
	ShiftID    string
	// Rule is an RFC 5545 RRULE, with or without the "RRULE:" prefix.
	Rule string
	// From and To bound the fill, both days inclusive. From is also the
	// first occurrence of the rule.
	From, To time.Time
	// Except lists day keys to leave untouched.
	Except []string
	// MaxOccurrences caps the number of days visited. Zero means 1000.
	MaxOccurrences int
}

// Result reports what a fill did.
type Result struct {
	Applied   []string // days the shift was placed on
	Skipped   []string // days already holding the shift, or full
	Truncated bool     // the rule produced more days than the cap
}

// Fill places req.ShiftID on the first free slot of every day the rule
// produces. Days that already hold the shift or have no free slot are
// skipped. Each placement goes through the assignment engine, so every
// applied day gets its own history entry.
func Fill(st *model.AppState, req Request, now time.Time) (Result, error) {
	var res Result

	if st.Calendar(req.CalendarID) == nil {
		return res, engine.ErrCalendarNotFound
	}
	if _, ok := st.Shift(req.ShiftID); !ok {
		return res, engine.ErrInvalidShift
	}

	from := startOfDay(req.From)
	to := startOfDay(req.To.In(from.Location()))
	if to.Before(from) {
		return res, ErrInvalidRange
	}
	limit := req.MaxOccurrences
	if limit <= 0 {
		limit = defaultMaxOccurrences
	}

	days, truncated, err := expand(req.Rule, from, to, req.Except, limit)
	if err != nil {
		return res, err
	}
	res.Truncated = truncated

	cal := st.Calendar(req.CalendarID)
	for _, day := range days {
		slots := cal.AssignedShifts[day]
		free := slots.FirstFree()
		if slots.IndexOf(req.ShiftID) >= 0 || free < 0 {
			res.Skipped = append(res.Skipped, day)
			continue
		}
		applied, err := engine.SetAssignment(st, req.CalendarID, day, free, req.ShiftID, now)
		if err != nil {
			return res, err
		}
		if applied {
			res.Applied = append(res.Applied, day)
		} else {
			res.Skipped = append(res.Skipped, day)
		}
	}

	appLog.Debug("pattern fill",
		"calendar_id", req.CalendarID,
		"shift_id", req.ShiftID,
		"applied", len(res.Applied),
		"skipped", len(res.Skipped),
		"truncated", res.Truncated,
	)
	return res, nil
}

// expand returns the distinct day keys the rule produces between from and
// to inclusive.
func expand(rule string, from, to time.Time, except []string, limit int) ([]string, bool, error) {
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	r.DTStart(from)

	var set rrule.Set
	set.RRule(r)
	for _, key := range except {
		ex, err := datekey.ParseDayKey(key, from.Location())
		if err != nil {
			return nil, false, fmt.Errorf("%w: exception %q", ErrInvalidRule, key)
		}
		set.ExDate(ex)
	}

	// Occurrences fall on midnight, so an inclusive window covers both ends.
	occ := set.Between(from, to, true)
	truncated := false
	if len(occ) > limit {
		occ = occ[:limit]
		truncated = true
	}

	days := make([]string, 0, len(occ))
	seen := make(map[string]bool, len(occ))
	for _, t := range occ {
		key := datekey.DayKey(t.In(from.Location()))
		if seen[key] {
			continue
		}
		seen[key] = true
		days = append(days, key)
	}
	return days, truncated, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
