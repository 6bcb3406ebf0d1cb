package engine

import (
	"strings"
	"time"

	"shiftcal/internal/datekey"
	"shiftcal/internal/model"
)

// TimeLayout is the alarm time-of-day layout.
const TimeLayout = "15:04"

// SetNote stores the trimmed text as the note of day. Empty or
// whitespace-only text removes the note.
func SetNote(st *model.AppState, calendarID, day, text string) error {
	cal := st.Calendar(calendarID)
	if cal == nil {
		return ErrCalendarNotFound
	}
	if !datekey.Valid(day) {
		return ErrInvalidDay
	}
	if cal.Notes == nil {
		cal.Notes = map[string]string{}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		delete(cal.Notes, day)
		return nil
	}
	cal.Notes[day] = text
	return nil
}

// SetAlarm sets the HH:MM alarm of shiftID on day, or removes it when at is
// empty. Whether the shift is actually assigned that day is not checked.
func SetAlarm(st *model.AppState, calendarID, day, shiftID, at string) error {
	cal := st.Calendar(calendarID)
	if cal == nil {
		return ErrCalendarNotFound
	}
	if !datekey.Valid(day) {
		return ErrInvalidDay
	}
	shiftID = strings.TrimSpace(shiftID)
	if shiftID == "" {
		return ErrInvalidShift
	}
	if cal.Alarms == nil {
		cal.Alarms = map[string]map[string]string{}
	}

	at = strings.TrimSpace(at)
	if at == "" {
		byShift, ok := cal.Alarms[day]
		if !ok {
			return nil
		}
		delete(byShift, shiftID)
		if len(byShift) == 0 {
			delete(cal.Alarms, day)
		}
		return nil
	}

	if !ValidTime(at) {
		return ErrInvalidTime
	}
	byShift, ok := cal.Alarms[day]
	if !ok {
		byShift = map[string]string{}
		cal.Alarms[day] = byShift
	}
	byShift[shiftID] = at
	return nil
}

// ValidTime reports whether s is a zero-padded 24h HH:MM time.
func ValidTime(s string) bool {
	t, err := time.Parse(TimeLayout, s)
	return err == nil && t.Format(TimeLayout) == s
}
