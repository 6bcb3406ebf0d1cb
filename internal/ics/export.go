// Package ics exports a calendar's assignments as an iCalendar feed so it
// can be subscribed to from any calendar application. Every assigned shift
// becomes an all-day event; a per-shift alarm becomes a VALARM.
package ics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"shiftcal/internal/datekey"
	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
)

const productID = "-//shiftcal//shiftcal//ES"

// Options controls the export.
type Options struct {
	// Location is used to anchor all-day events. Nil means time.Local.
	Location *time.Location
	// Lead is how long before an alarm time the VALARM fires.
	Lead time.Duration
	// From and To are optional inclusive day keys bounding the export.
	From, To string
	// Now stamps DTSTAMP. Zero means time.Now.
	Now time.Time
}

// Export renders calendarID of st as an iCalendar document. Ids missing
// from the shift registry are exported under their raw id.
func Export(st *model.AppState, calendarID string, opts Options) (string, error) {
	cal := st.Calendar(calendarID)
	if cal == nil {
		return "", fmt.Errorf("ics: calendar %q not found", calendarID)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	out := ical.NewCalendar()
	out.SetProductId(productID)
	out.SetMethod(ical.MethodPublish)
	out.SetXWRCalName(cal.Name)

	days := make([]string, 0, len(cal.AssignedShifts))
	for day := range cal.AssignedShifts {
		if opts.From != "" && day < opts.From {
			continue
		}
		if opts.To != "" && day > opts.To {
			continue
		}
		days = append(days, day)
	}
	sort.Strings(days)

	count := 0
	for _, day := range days {
		start, err := datekey.ParseDayKey(day, opts.Location)
		if err != nil {
			appLog.Error("ics export: skipping malformed day", err, "day", day)
			continue
		}
		for _, shiftID := range cal.AssignedShifts[day].Filled() {
			addEvent(out, cal, st, day, shiftID, start, opts)
			count++
		}
	}

	appLog.Info("ics export completed", "calendar_id", calendarID, "event_count", count)
	return out.Serialize(), nil
}

// UID returns the stable event id of a shift on a day.
func UID(calendarID, day, shiftID string) string {
	return fmt.Sprintf("%s-%s-%s@shiftcal", day, shiftID, calendarID)
}

func addEvent(out *ical.Calendar, cal *model.Calendar, st *model.AppState, day, shiftID string, start time.Time, opts Options) {
	sh, known := st.Shift(shiftID)
	name := shiftID
	if known && sh.Name != "" {
		name = sh.Name
	}

	ev := out.AddEvent(UID(cal.ID, day, shiftID))
	ev.SetDtStampTime(opts.Now)
	ev.SetAllDayStartAt(start)
	ev.SetAllDayEndAt(start.AddDate(0, 0, 1))
	ev.SetSummary(name)
	if known {
		ev.SetProperty(ical.ComponentPropertyCategories, sh.Abbreviation)
	}
	if note := strings.TrimSpace(cal.Notes[day]); note != "" {
		ev.SetDescription(note)
	}

	at, ok := cal.Alarms[day][shiftID]
	if !ok {
		return
	}
	clock, err := time.Parse("15:04", at)
	if err != nil {
		appLog.Error("ics export: skipping malformed alarm", err, "day", day, "shift_id", shiftID)
		return
	}
	offset := time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute - opts.Lead

	alarm := ev.AddAlarm()
	alarm.SetAction(ical.ActionDisplay)
	alarm.SetTrigger(formatDuration(offset))
	alarm.SetProperty(ical.ComponentPropertyDescription, fmt.Sprintf("%s a las %s", name, at))
}

// formatDuration renders d as an RFC 5545 duration relative to DTSTART,
// e.g. PT6H45M or -PT15M.
func formatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString("PT")
	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 || h == 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	return b.String()
}
