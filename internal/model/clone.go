package model

import "strings"

// Clone returns a deep copy of the state. Mutations go through a clone so a
// previously handed-out snapshot never changes underneath its reader.
func (s *AppState) Clone() *AppState {
	if s == nil {
		return nil
	}
	out := &AppState{
		ActiveCalendarID: s.ActiveCalendarID,
		Theme:            s.Theme,
		BackupFrequency:  s.BackupFrequency,
	}
	if s.LastBackupPrompt != nil {
		t := *s.LastBackupPrompt
		out.LastBackupPrompt = &t
	}
	if s.Shifts != nil {
		out.Shifts = make([]Shift, len(s.Shifts))
		copy(out.Shifts, s.Shifts)
	}
	if s.Calendars != nil {
		out.Calendars = make([]Calendar, len(s.Calendars))
		for i := range s.Calendars {
			out.Calendars[i] = s.Calendars[i].Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the calendar.
func (c Calendar) Clone() Calendar {
	out := Calendar{ID: c.ID, Name: c.Name}
	if c.AssignedShifts != nil {
		out.AssignedShifts = make(map[string]Slots, len(c.AssignedShifts))
		for k, v := range c.AssignedShifts {
			out.AssignedShifts[k] = v
		}
	}
	if c.Notes != nil {
		out.Notes = make(map[string]string, len(c.Notes))
		for k, v := range c.Notes {
			out.Notes[k] = v
		}
	}
	if c.Alarms != nil {
		out.Alarms = make(map[string]map[string]string, len(c.Alarms))
		for day, byShift := range c.Alarms {
			m := make(map[string]string, len(byShift))
			for k, v := range byShift {
				m[k] = v
			}
			out.Alarms[day] = m
		}
	}
	if c.History != nil {
		out.History = make([]HistoryEntry, len(c.History))
		copy(out.History, c.History)
	}
	return out
}

// Normalize repairs a state read from storage or a sync code: nil maps are
// filled and a dangling active calendar id is reset. A well-formed state is
// left as is.
func (s *AppState) Normalize() {
	if s.Shifts == nil {
		s.Shifts = []Shift{}
	}
	for i := range s.Shifts {
		s.Shifts[i].Abbreviation = NormalizeAbbreviation(s.Shifts[i].Abbreviation)
	}
	for i := range s.Calendars {
		s.Calendars[i].normalize()
	}
	if !s.Theme.Valid() {
		s.Theme = ThemeSystem
	}
	if !s.BackupFrequency.Valid() {
		s.BackupFrequency = BackupDisabled
	}
	if s.Active() == nil && len(s.Calendars) > 0 {
		s.ActiveCalendarID = s.Calendars[0].ID
	}
}

func (c *Calendar) normalize() {
	if c.AssignedShifts == nil {
		c.AssignedShifts = map[string]Slots{}
	}
	for day, slots := range c.AssignedShifts {
		if slots.IsEmpty() {
			delete(c.AssignedShifts, day)
		}
	}
	if c.Notes == nil {
		c.Notes = map[string]string{}
	}
	for day, text := range c.Notes {
		if strings.TrimSpace(text) == "" {
			delete(c.Notes, day)
		}
	}
	if c.Alarms == nil {
		c.Alarms = map[string]map[string]string{}
	}
	for day, byShift := range c.Alarms {
		if len(byShift) == 0 {
			delete(c.Alarms, day)
		}
	}
	if c.History == nil {
		c.History = []HistoryEntry{}
	}
	if len(c.History) > MaxHistory {
		c.History = c.History[:MaxHistory]
	}
}
