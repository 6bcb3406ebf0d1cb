package engine

import (
	"strings"

	"github.com/google/uuid"

	"shiftcal/internal/model"
)

// NewShiftID derives an id for a new shift from its name.
func NewShiftID(name string) string {
	base := strings.ToLower(strings.Join(strings.Fields(name), ""))
	if base == "" {
		base = "shift"
	}
	return base + "-" + uuid.NewString()[:8]
}

// AddShift appends a shift to the registry. The id is supplied by the
// caller and must not collide with an existing one.
func AddShift(st *model.AppState, sh model.Shift) error {
	sh.ID = strings.TrimSpace(sh.ID)
	if sh.ID == "" {
		return ErrInvalidShift
	}
	if st.ShiftIndex(sh.ID) >= 0 {
		return ErrShiftExists
	}
	sh.Abbreviation = model.NormalizeAbbreviation(sh.Abbreviation)
	st.Shifts = append(st.Shifts, sh)
	return nil
}

// UpdateShift replaces the registry entry with the same id. It reports
// whether an entry was replaced; an unknown id is a no-op.
func UpdateShift(st *model.AppState, sh model.Shift) bool {
	idx := st.ShiftIndex(sh.ID)
	if idx < 0 {
		return false
	}
	sh.Abbreviation = model.NormalizeAbbreviation(sh.Abbreviation)
	st.Shifts[idx] = sh
	return true
}

// DeleteShift removes a shift from the registry and clears every slot that
// references it in every calendar. Slots keep their positions; a day left
// with no shift is removed. No history entry is written for the cascade.
// It returns the number of slots cleared.
func DeleteShift(st *model.AppState, id string) int {
	idx := st.ShiftIndex(id)
	if idx >= 0 {
		st.Shifts = append(st.Shifts[:idx:idx], st.Shifts[idx+1:]...)
	}

	cleared := 0
	for c := range st.Calendars {
		days := st.Calendars[c].AssignedShifts
		for day, slots := range days {
			changed := false
			for i := range slots {
				if slots[i] == id {
					slots[i] = ""
					changed = true
					cleared++
				}
			}
			if !changed {
				continue
			}
			if slots.IsEmpty() {
				delete(days, day)
			} else {
				days[day] = slots
			}
		}
	}
	return cleared
}
