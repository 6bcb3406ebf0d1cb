package engine

import (
	"fmt"
	"time"

	"shiftcal/internal/datekey"
	"shiftcal/internal/model"
)

var shortMonths = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}

var longMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// ShortDate renders a day key as "10 may". Unparseable keys are returned
// as-is.
func ShortDate(day string) string {
	t, err := datekey.ParseDayKey(day, time.UTC)
	if err != nil {
		return day
	}
	return fmt.Sprintf("%02d %s", t.Day(), shortMonths[t.Month()-1])
}

// MonthName returns the Spanish name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return m.String()
	}
	return longMonths[m-1]
}

func describeAdd(name, day string) string {
	return fmt.Sprintf("Añadido '%s' el %s.", name, ShortDate(day))
}

func describeRemove(name, day string) string {
	return fmt.Sprintf("Quitado '%s' el %s.", name, ShortDate(day))
}

func describeModify(oldName, newName, day string) string {
	return fmt.Sprintf("Cambiado '%s' por '%s' el %s.", oldName, newName, ShortDate(day))
}

func describeClear(year int, month time.Month) string {
	return fmt.Sprintf("Borrados todos los turnos de %s %d.", MonthName(month), year)
}

// appendHistory prepends an entry and evicts the oldest ones past the cap.
// Ids come from the wall clock in milliseconds and are bumped past the
// newest existing id so they stay strictly increasing.
func appendHistory(cal *model.Calendar, typ model.HistoryType, description string, now time.Time) model.HistoryEntry {
	id := now.UnixMilli()
	if len(cal.History) > 0 && cal.History[0].ID >= id {
		id = cal.History[0].ID + 1
	}
	entry := model.HistoryEntry{
		ID:          id,
		Date:        now.UTC(),
		Description: description,
		Type:        typ,
	}

	history := make([]model.HistoryEntry, 0, min(len(cal.History)+1, model.MaxHistory))
	history = append(history, entry)
	for _, h := range cal.History {
		if len(history) == model.MaxHistory {
			break
		}
		history = append(history, h)
	}
	cal.History = history
	return entry
}

// ClearHistory empties the history of a calendar.
func ClearHistory(st *model.AppState, calendarID string) error {
	cal := st.Calendar(calendarID)
	if cal == nil {
		return ErrCalendarNotFound
	}
	cal.History = []model.HistoryEntry{}
	return nil
}
