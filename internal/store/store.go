// Package store owns the application state tree. It is the only holder of
// the live state: every mutation clones the current tree, applies an
// engine operation to the clone, persists it and only then publishes it.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"shiftcal/internal/engine"
	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
	"shiftcal/internal/synccode"
)

// errNoChange aborts a mutation without persisting and without error.
var errNoChange = errors.New("no change")

// Store is the state holder. Create it with Open and release it with Close.
type Store struct {
	mu      sync.RWMutex
	state   *model.AppState
	backend Backend
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for history entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads the state from backend. An empty backend is seeded with the
// default state, which is persisted right away. A blob that cannot be
// parsed is reported as an error rather than silently replaced.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	data, err := backend.Load(ctx)
	switch {
	case errors.Is(err, ErrNoState):
		s.state = model.DefaultState()
		if err := s.persist(ctx, s.state); err != nil {
			return nil, err
		}
		appLog.Info("store initialized with default state", "calendar_id", s.state.ActiveCalendarID)
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("store: load state: %w", err)
	}

	st, err := synccode.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("store: stored state is unreadable: %w", err)
	}
	s.state = st
	appLog.Debug("store loaded", "calendars", len(st.Calendars), "shifts", len(st.Shifts))
	return s, nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Snapshot returns a deep copy of the current state. Later mutations never
// show through it.
func (s *Store) Snapshot() *model.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Update applies fn to a private copy of the state and publishes the copy
// once it has been persisted. If fn or the write fails, the published state
// is unchanged.
func (s *Store) Update(ctx context.Context, op string, fn func(st *model.AppState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(next); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	if err := s.persist(ctx, next); err != nil {
		appLog.Error("store persist failed", err, "op", op)
		return err
	}
	s.state = next
	appLog.Debug("state updated", "op", op)
	return nil
}

func (s *Store) persist(ctx context.Context, st *model.AppState) error {
	data, err := synccode.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, data); err != nil {
		return fmt.Errorf("store: save state: %w", err)
	}
	return nil
}

// ActiveCalendarID returns the id of the active calendar.
func (s *Store) ActiveCalendarID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ActiveCalendarID
}

func (s *Store) AddCalendar(ctx context.Context, name string) (string, error) {
	var id string
	err := s.Update(ctx, "add-calendar", func(st *model.AppState) error {
		var err error
		id, err = engine.AddCalendar(st, name)
		return err
	})
	return id, err
}

func (s *Store) RenameCalendar(ctx context.Context, id, name string) error {
	return s.Update(ctx, "rename-calendar", func(st *model.AppState) error {
		return engine.RenameCalendar(st, id, name)
	})
}

func (s *Store) DeleteCalendar(ctx context.Context, id string) error {
	return s.Update(ctx, "delete-calendar", func(st *model.AppState) error {
		return engine.DeleteCalendar(st, id)
	})
}

func (s *Store) SwitchCalendar(ctx context.Context, id string) error {
	return s.Update(ctx, "switch-calendar", func(st *model.AppState) error {
		return engine.SwitchCalendar(st, id)
	})
}

func (s *Store) AddShift(ctx context.Context, sh model.Shift) error {
	return s.Update(ctx, "add-shift", func(st *model.AppState) error {
		return engine.AddShift(st, sh)
	})
}

// UpdateShift reports whether a shift with that id existed.
func (s *Store) UpdateShift(ctx context.Context, sh model.Shift) (bool, error) {
	var found bool
	err := s.Update(ctx, "update-shift", func(st *model.AppState) error {
		found = engine.UpdateShift(st, sh)
		if !found {
			return errNoChange
		}
		return nil
	})
	return found, err
}

// DeleteShift returns the number of slots cleared across all calendars.
func (s *Store) DeleteShift(ctx context.Context, id string) (int, error) {
	var cleared int
	err := s.Update(ctx, "delete-shift", func(st *model.AppState) error {
		if st.ShiftIndex(id) < 0 {
			return errNoChange
		}
		cleared = engine.DeleteShift(st, id)
		return nil
	})
	return cleared, err
}

// SetAssignment reports false when the shift is already on another slot of
// that day; nothing is changed in that case.
func (s *Store) SetAssignment(ctx context.Context, calendarID, day string, slot int, shiftID string) (bool, error) {
	var applied bool
	err := s.Update(ctx, "set-assignment", func(st *model.AppState) error {
		var err error
		applied, err = engine.SetAssignment(st, calendarID, day, slot, shiftID, s.now())
		if err == nil && !applied {
			return errNoChange
		}
		return err
	})
	return applied, err
}

// ClearMonth returns the number of days removed.
func (s *Store) ClearMonth(ctx context.Context, calendarID string, year int, month time.Month) (int, error) {
	var removed int
	err := s.Update(ctx, "clear-month", func(st *model.AppState) error {
		var err error
		removed, err = engine.ClearMonth(st, calendarID, year, month, s.now())
		return err
	})
	return removed, err
}

func (s *Store) SetNote(ctx context.Context, calendarID, day, text string) error {
	return s.Update(ctx, "set-note", func(st *model.AppState) error {
		return engine.SetNote(st, calendarID, day, text)
	})
}

func (s *Store) SetAlarm(ctx context.Context, calendarID, day, shiftID, at string) error {
	return s.Update(ctx, "set-alarm", func(st *model.AppState) error {
		return engine.SetAlarm(st, calendarID, day, shiftID, at)
	})
}

func (s *Store) ClearHistory(ctx context.Context, calendarID string) error {
	return s.Update(ctx, "clear-history", func(st *model.AppState) error {
		cal := st.Calendar(calendarID)
		if cal != nil && len(cal.History) == 0 {
			return errNoChange
		}
		return engine.ClearHistory(st, calendarID)
	})
}

func (s *Store) SetTheme(ctx context.Context, theme model.Theme) error {
	return s.Update(ctx, "set-theme", func(st *model.AppState) error {
		return engine.SetTheme(st, theme)
	})
}

func (s *Store) SetBackupFrequency(ctx context.Context, f model.BackupFrequency) error {
	return s.Update(ctx, "set-backup-frequency", func(st *model.AppState) error {
		return engine.SetBackupFrequency(st, f)
	})
}

// MarkBackupPrompt records the current time as the last backup reminder.
func (s *Store) MarkBackupPrompt(ctx context.Context) error {
	return s.Update(ctx, "mark-backup-prompt", func(st *model.AppState) error {
		engine.MarkBackupPrompt(st, s.now())
		return nil
	})
}

// Export returns the sync code of the current state.
func (s *Store) Export() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return synccode.Encode(s.state)
}

// Import replaces the state with the one carried by code. This device's
// backup frequency and last backup prompt are kept. An invalid code leaves
// the state untouched and returns an error wrapping synccode.ErrInvalidCode.
func (s *Store) Import(ctx context.Context, code string) error {
	imported, err := synccode.Decode(code)
	if err != nil {
		return err
	}
	return s.Update(ctx, "import", func(st *model.AppState) error {
		imported.BackupFrequency = st.BackupFrequency
		imported.LastBackupPrompt = st.LastBackupPrompt
		*st = *imported
		return nil
	})
}
