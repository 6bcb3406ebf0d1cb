package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Limits enforced by the core.
const (
	SlotCount       = 3
	MaxCalendars    = 10
	MaxHistory      = 100
	MaxAbbreviation = 3
)

// Default shift ids. The assignment order gives these ids priority, so they
// must stay stable.
const (
	ShiftMorning   = "m"
	ShiftAfternoon = "t"
	ShiftNight     = "n"
)

const DefaultCalendarName = "Principal"

// Shift is a user-defined shift type shared by all calendars.
type Shift struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Color        string `json:"color"`
	Icon         string `json:"icon"`
}

// HistoryType classifies a history entry.
type HistoryType string

const (
	HistoryAdd    HistoryType = "add"
	HistoryRemove HistoryType = "remove"
	HistoryModify HistoryType = "modify"
	HistoryClear  HistoryType = "clear"
)

// HistoryEntry is one audit-log record of an assignment or month-clear change.
type HistoryEntry struct {
	ID          int64       `json:"id"`
	Date        time.Time   `json:"date"`
	Description string      `json:"description"`
	Type        HistoryType `json:"type"`
}

// Calendar owns its day assignments, notes, alarms and history.
//
// AssignedShifts maps a day key to its three slots; Notes maps a day key to
// free text; Alarms maps a day key to shift id to an HH:MM time. History is
// newest first.
type Calendar struct {
	ID             string                       `json:"id"`
	Name           string                       `json:"name"`
	AssignedShifts map[string]Slots             `json:"assignedShifts"`
	Notes          map[string]string            `json:"notes"`
	Alarms         map[string]map[string]string `json:"alarms"`
	History        []HistoryEntry               `json:"history"`
}

// Theme is the UI theme preference carried in the state.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// BackupFrequency controls how often a backup reminder fires.
type BackupFrequency string

const (
	BackupDisabled BackupFrequency = "disabled"
	BackupDaily    BackupFrequency = "daily"
	BackupWeekly   BackupFrequency = "weekly"
	BackupMonthly  BackupFrequency = "monthly"
)

// Valid reports whether f is a known frequency.
func (f BackupFrequency) Valid() bool {
	switch f {
	case BackupDisabled, BackupDaily, BackupWeekly, BackupMonthly:
		return true
	}
	return false
}

// AppState is the root of the state tree.
type AppState struct {
	Calendars        []Calendar      `json:"calendars"`
	ActiveCalendarID string          `json:"activeCalendarId"`
	Shifts           []Shift         `json:"shifts"`
	Theme            Theme           `json:"theme"`
	BackupFrequency  BackupFrequency `json:"backupFrequency"`
	LastBackupPrompt *time.Time      `json:"lastBackupPrompt,omitempty"`
}

// DefaultShifts returns the built-in Mañana/Tarde/Noche shifts.
func DefaultShifts() []Shift {
	return []Shift{
		{ID: ShiftMorning, Name: "Mañana", Abbreviation: "M", Color: "bg-sky-500", Icon: "Sun"},
		{ID: ShiftAfternoon, Name: "Tarde", Abbreviation: "T", Color: "bg-amber-500", Icon: "Cloud"},
		{ID: ShiftNight, Name: "Noche", Abbreviation: "N", Color: "bg-indigo-600", Icon: "Moon"},
	}
}

// NewCalendarID returns a fresh calendar id.
func NewCalendarID() string {
	return "calendar-" + uuid.NewString()
}

// NewCalendar returns an empty calendar with initialized maps.
func NewCalendar(id, name string) Calendar {
	return Calendar{
		ID:             id,
		Name:           name,
		AssignedShifts: map[string]Slots{},
		Notes:          map[string]string{},
		Alarms:         map[string]map[string]string{},
		History:        []HistoryEntry{},
	}
}

// DefaultState is the state used when storage holds nothing yet.
func DefaultState() *AppState {
	cal := NewCalendar(NewCalendarID(), DefaultCalendarName)
	return &AppState{
		Calendars:        []Calendar{cal},
		ActiveCalendarID: cal.ID,
		Shifts:           DefaultShifts(),
		Theme:            ThemeSystem,
		BackupFrequency:  BackupDisabled,
	}
}

// NormalizeAbbreviation upper-cases a and keeps at most three runes.
func NormalizeAbbreviation(a string) string {
	a = strings.ToUpper(strings.TrimSpace(a))
	if utf8.RuneCountInString(a) <= MaxAbbreviation {
		return a
	}
	return string([]rune(a)[:MaxAbbreviation])
}

// Calendar returns a pointer to the calendar with the given id, or nil.
// The pointer aliases s; callers mutating through it must own s.
func (s *AppState) Calendar(id string) *Calendar {
	for i := range s.Calendars {
		if s.Calendars[i].ID == id {
			return &s.Calendars[i]
		}
	}
	return nil
}

// Active returns the active calendar, or nil if the id dangles.
func (s *AppState) Active() *Calendar {
	return s.Calendar(s.ActiveCalendarID)
}

// Shift looks up a registry entry by id.
func (s *AppState) Shift(id string) (Shift, bool) {
	for _, sh := range s.Shifts {
		if sh.ID == id {
			return sh, true
		}
	}
	return Shift{}, false
}

// ShiftIndex returns the registry position of id, or -1.
func (s *AppState) ShiftIndex(id string) int {
	for i, sh := range s.Shifts {
		if sh.ID == id {
			return i
		}
	}
	return -1
}

// ShiftMap indexes the registry by id.
func ShiftMap(shifts []Shift) map[string]Shift {
	m := make(map[string]Shift, len(shifts))
	for _, sh := range shifts {
		m[sh.ID] = sh
	}
	return m
}
