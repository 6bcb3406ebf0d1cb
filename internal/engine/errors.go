// Package engine holds the mutation rules of the state tree: the shift
// registry, calendar management and the assignment engine. Every function
// mutates the *model.AppState it is given in place and expects the caller to
// own that value (the store hands it a fresh clone). On error the state is
// left untouched.
package engine

import "errors"

var (
	ErrCalendarNotFound = errors.New("calendar not found")
	ErrCalendarLimit    = errors.New("calendar limit reached")
	ErrLastCalendar     = errors.New("at least one calendar is required")
	ErrEmptyName        = errors.New("name must not be empty")
	ErrShiftExists      = errors.New("shift id already exists")
	ErrInvalidShift     = errors.New("invalid shift")
	ErrInvalidSlot      = errors.New("slot index out of range")
	ErrInvalidDay       = errors.New("invalid day key")
	ErrInvalidTime      = errors.New("invalid alarm time, expected HH:MM")
	ErrInvalidSetting   = errors.New("invalid setting value")
)
