package engine

import (
	"sort"
	"strings"
	"time"

	"shiftcal/internal/datekey"
	"shiftcal/internal/model"
)

// priority ranks the built-in shifts ahead of user-defined ones.
var priority = map[string]int{
	model.ShiftMorning:   0,
	model.ShiftAfternoon: 1,
	model.ShiftNight:     2,
}

// SetAssignment writes shiftID ("" clears) into a slot of day and
// normalizes the day: built-in shifts first in m, t, n order, then other
// shifts in registry order, then empty slots. A day with no shift left is
// removed.
//
// Placing a shift that already occupies another slot of the same day is
// ignored: applied is false, err is nil and nothing changes. When the id at
// the addressed slot actually changes, a history entry is prepended.
func SetAssignment(st *model.AppState, calendarID, day string, slot int, shiftID string, now time.Time) (applied bool, err error) {
	cal := st.Calendar(calendarID)
	if cal == nil {
		return false, ErrCalendarNotFound
	}
	if slot < 0 || slot >= model.SlotCount {
		return false, ErrInvalidSlot
	}
	if !datekey.Valid(day) {
		return false, ErrInvalidDay
	}
	shiftID = strings.TrimSpace(shiftID)

	slots := cal.AssignedShifts[day]
	if idx := slots.IndexOf(shiftID); idx >= 0 && idx != slot {
		return false, nil
	}

	oldID := slots[slot]
	slots[slot] = shiftID
	slots = orderSlots(st, slots)

	if cal.AssignedShifts == nil {
		cal.AssignedShifts = map[string]model.Slots{}
	}
	if slots.IsEmpty() {
		delete(cal.AssignedShifts, day)
	} else {
		cal.AssignedShifts[day] = slots
	}

	if oldID == shiftID {
		return true, nil
	}
	switch {
	case oldID == "":
		appendHistory(cal, model.HistoryAdd, describeAdd(shiftName(st, shiftID), day), now)
	case shiftID == "":
		appendHistory(cal, model.HistoryRemove, describeRemove(shiftName(st, oldID), day), now)
	default:
		appendHistory(cal, model.HistoryModify, describeModify(shiftName(st, oldID), shiftName(st, shiftID), day), now)
	}
	return true, nil
}

// ClearMonth removes every assignment of the given month and records one
// clear entry, whether or not anything was assigned. It returns the number
// of days removed.
func ClearMonth(st *model.AppState, calendarID string, year int, month time.Month, now time.Time) (int, error) {
	cal := st.Calendar(calendarID)
	if cal == nil {
		return 0, ErrCalendarNotFound
	}
	if month < time.January || month > time.December {
		return 0, ErrInvalidDay
	}

	prefix := datekey.MonthPrefix(year, month)
	removed := 0
	for day := range cal.AssignedShifts {
		if strings.HasPrefix(day, prefix) {
			delete(cal.AssignedShifts, day)
			removed++
		}
	}
	appendHistory(cal, model.HistoryClear, describeClear(year, month), now)
	return removed, nil
}

// orderSlots compacts the non-empty ids to the front in priority order.
func orderSlots(st *model.AppState, slots model.Slots) model.Slots {
	ids := slots.Filled()
	sort.SliceStable(ids, func(i, j int) bool {
		return slotRank(st, ids[i]) < slotRank(st, ids[j])
	})
	var out model.Slots
	copy(out[:], ids)
	return out
}

func slotRank(st *model.AppState, id string) int {
	if p, ok := priority[id]; ok {
		return p
	}
	if idx := st.ShiftIndex(id); idx >= 0 {
		return len(priority) + idx
	}
	// Unknown ids keep their slot order after every registered shift.
	return len(priority) + len(st.Shifts)
}

func shiftName(st *model.AppState, id string) string {
	if sh, ok := st.Shift(id); ok && sh.Name != "" {
		return sh.Name
	}
	return id
}
