package engine

import (
	"strings"
	"time"

	"shiftcal/internal/model"
)

// AddCalendar creates an empty calendar and makes it active.
func AddCalendar(st *model.AppState, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if len(st.Calendars) >= model.MaxCalendars {
		return "", ErrCalendarLimit
	}
	cal := model.NewCalendar(model.NewCalendarID(), name)
	st.Calendars = append(st.Calendars, cal)
	st.ActiveCalendarID = cal.ID
	return cal.ID, nil
}

// RenameCalendar changes a calendar's display name.
func RenameCalendar(st *model.AppState, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	cal := st.Calendar(id)
	if cal == nil {
		return ErrCalendarNotFound
	}
	cal.Name = name
	return nil
}

// DeleteCalendar removes a calendar. The last calendar cannot be removed.
// Deleting the active calendar activates the first remaining one.
func DeleteCalendar(st *model.AppState, id string) error {
	if st.Calendar(id) == nil {
		return ErrCalendarNotFound
	}
	if len(st.Calendars) <= 1 {
		return ErrLastCalendar
	}
	kept := make([]model.Calendar, 0, len(st.Calendars)-1)
	for _, c := range st.Calendars {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	st.Calendars = kept
	if st.ActiveCalendarID == id {
		st.ActiveCalendarID = kept[0].ID
	}
	return nil
}

// SwitchCalendar makes id the active calendar.
func SwitchCalendar(st *model.AppState, id string) error {
	if st.Calendar(id) == nil {
		return ErrCalendarNotFound
	}
	st.ActiveCalendarID = id
	return nil
}

func SetTheme(st *model.AppState, theme model.Theme) error {
	if !theme.Valid() {
		return ErrInvalidSetting
	}
	st.Theme = theme
	return nil
}

func SetBackupFrequency(st *model.AppState, f model.BackupFrequency) error {
	if !f.Valid() {
		return ErrInvalidSetting
	}
	st.BackupFrequency = f
	return nil
}

// MarkBackupPrompt records now as the last backup reminder.
func MarkBackupPrompt(st *model.AppState, now time.Time) {
	t := now.UTC()
	st.LastBackupPrompt = &t
}
