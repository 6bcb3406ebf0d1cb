// Package alarm computes which shift reminders are due and delivers them
// from a cron-driven scheduler.
package alarm

import (
	"context"
	"fmt"
	"sort"
	"time"

	"shiftcal/internal/datekey"
	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
)

// Title is the heading every reminder is delivered under.
const Title = "Recordatorio de Turno"

// Reminder is one alarm that is due.
type Reminder struct {
	CalendarID string
	Day        string
	ShiftID    string
	ShiftName  string
	Color      string
	// Time is the alarm as stored, "HH:MM".
	Time string
	// Start is the shift start the alarm refers to.
	Start time.Time
	// Lead is how long before Start the reminder fires.
	Lead time.Duration
}

// Tag identifies the reminder for duplicate suppression.
func (r Reminder) Tag() string {
	return fmt.Sprintf("shift-notification-%s-%s", r.Day, r.ShiftID)
}

// Body is the human readable reminder text.
func (r Reminder) Body() string {
	return fmt.Sprintf("Tu turno %q comienza en %d minutos, a las %s.", r.ShiftName, int(r.Lead/time.Minute), r.Time)
}

// Due returns the reminders of the active calendar whose fire time
// (shift start minus lead) falls in the same minute as now. Alarms for
// today and tomorrow are considered so that an early-morning shift can
// fire before midnight. Shifts missing from the registry are skipped.
func Due(st *model.AppState, now time.Time, lead time.Duration) []Reminder {
	cal := st.Active()
	if cal == nil || len(cal.Alarms) == 0 {
		return nil
	}
	loc := now.Location()
	minute := now.Truncate(time.Minute)

	var out []Reminder
	for _, d := range []time.Time{now, now.AddDate(0, 0, 1)} {
		day := datekey.DayKey(d)
		alarms := cal.Alarms[day]
		if len(alarms) == 0 {
			continue
		}
		dayStart, err := datekey.ParseDayKey(day, loc)
		if err != nil {
			continue
		}
		for shiftID, at := range alarms {
			sh, ok := st.Shift(shiftID)
			if !ok {
				continue
			}
			clock, err := time.Parse("15:04", at)
			if err != nil {
				appLog.Debug("alarm: ignoring malformed time", "day", day, "shift_id", shiftID, "time", at)
				continue
			}
			start := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
			if !start.Add(-lead).Truncate(time.Minute).Equal(minute) {
				continue
			}
			out = append(out, Reminder{
				CalendarID: cal.ID,
				Day:        day,
				ShiftID:    shiftID,
				ShiftName:  sh.Name,
				Color:      sh.Color,
				Time:       at,
				Start:      start,
				Lead:       lead,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ShiftID < out[j].ShiftID
	})
	return out
}

// Notifier delivers a reminder.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, r Reminder) error

func (f NotifierFunc) Notify(ctx context.Context, r Reminder) error { return f(ctx, r) }

// LogNotifier writes reminders to the application log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, r Reminder) error {
	appLog.Info(Title,
		"tag", r.Tag(),
		"body", r.Body(),
		"calendar_id", r.CalendarID,
		"day", r.Day,
		"shift_id", r.ShiftID,
		"start", r.Start.Format(time.RFC3339),
	)
	return nil
}
