package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultState(t *testing.T) {
	st := DefaultState()

	require.Len(t, st.Calendars, 1)
	assert.Equal(t, DefaultCalendarName, st.Calendars[0].Name)
	assert.True(t, strings.HasPrefix(st.ActiveCalendarID, "calendar-"))
	assert.NotNil(t, st.Active())
	assert.Equal(t, ThemeSystem, st.Theme)
	assert.Equal(t, BackupDisabled, st.BackupFrequency)
	assert.Nil(t, st.LastBackupPrompt)

	ids := make([]string, 0, len(st.Shifts))
	for _, sh := range st.Shifts {
		ids = append(ids, sh.ID)
	}
	assert.Equal(t, []string{"m", "t", "n"}, ids)
}

func TestSlotsJSON(t *testing.T) {
	data, err := json.Marshal(Slots{"m", "", "n"})
	require.NoError(t, err)
	assert.JSONEq(t, `["m", null, "n"]`, string(data))

	var s Slots
	require.NoError(t, json.Unmarshal([]byte(`["t"]`), &s))
	assert.Equal(t, Slots{"t", "", ""}, s)

	assert.Error(t, json.Unmarshal([]byte(`["m","t","n","x"]`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"0":"m"}`), &s))
}

func TestSlotsHelpers(t *testing.T) {
	s := Slots{"m", "t", ""}
	assert.False(t, s.IsEmpty())
	assert.True(t, Slots{}.IsEmpty())
	assert.Equal(t, 1, s.IndexOf("t"))
	assert.Equal(t, -1, s.IndexOf(""))
	assert.Equal(t, []string{"m", "t"}, s.Filled())
	assert.Equal(t, 2, s.FirstFree())
	assert.Equal(t, -1, Slots{"m", "t", "n"}.FirstFree())
}

func TestNormalizeAbbreviation(t *testing.T) {
	assert.Equal(t, "M", NormalizeAbbreviation(" m "))
	assert.Equal(t, "GUA", NormalizeAbbreviation("guardia"))
	assert.Equal(t, "ÑOÑ", NormalizeAbbreviation("ñoño"))
}

func TestCloneIsDeep(t *testing.T) {
	st := DefaultState()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	st.LastBackupPrompt = &now
	cal := st.Active()
	cal.AssignedShifts["2024-05-10"] = Slots{"m", "", ""}
	cal.Notes["2024-05-10"] = "dentista"
	cal.Alarms["2024-05-10"] = map[string]string{"m": "07:00"}
	cal.History = append(cal.History, HistoryEntry{ID: 1, Type: HistoryAdd})

	cp := st.Clone()
	cpCal := cp.Active()
	cpCal.AssignedShifts["2024-05-10"] = Slots{"t", "", ""}
	cpCal.Notes["2024-05-11"] = "x"
	cpCal.Alarms["2024-05-10"]["m"] = "08:00"
	cpCal.History[0].Description = "changed"
	cp.Shifts[0].Name = "Changed"
	*cp.LastBackupPrompt = now.Add(time.Hour)

	assert.Equal(t, Slots{"m", "", ""}, cal.AssignedShifts["2024-05-10"])
	assert.NotContains(t, cal.Notes, "2024-05-11")
	assert.Equal(t, "07:00", cal.Alarms["2024-05-10"]["m"])
	assert.Empty(t, cal.History[0].Description)
	assert.Equal(t, "Mañana", st.Shifts[0].Name)
	assert.Equal(t, now, *st.LastBackupPrompt)
}

func TestNormalizeRepairs(t *testing.T) {
	st := &AppState{
		Calendars: []Calendar{{
			ID:             "a",
			AssignedShifts: map[string]Slots{"2024-05-10": {}, "2024-05-11": {"m", "", ""}},
			Notes:          map[string]string{"2024-05-10": "  "},
			Alarms:         map[string]map[string]string{"2024-05-10": {}},
			History:        make([]HistoryEntry, MaxHistory+5),
		}},
		ActiveCalendarID: "missing",
		Shifts:           []Shift{{ID: "g", Abbreviation: "guard"}},
		Theme:            "neon",
		BackupFrequency:  "hourly",
	}
	st.Normalize()

	cal := st.Calendars[0]
	assert.Equal(t, "a", st.ActiveCalendarID)
	assert.NotContains(t, cal.AssignedShifts, "2024-05-10")
	assert.Contains(t, cal.AssignedShifts, "2024-05-11")
	assert.Empty(t, cal.Notes)
	assert.Empty(t, cal.Alarms)
	assert.Len(t, cal.History, MaxHistory)
	assert.Equal(t, "GUA", st.Shifts[0].Abbreviation)
	assert.Equal(t, ThemeSystem, st.Theme)
	assert.Equal(t, BackupDisabled, st.BackupFrequency)
}

func TestNormalizeIdentityOnValidState(t *testing.T) {
	st := DefaultState()
	st.Active().AssignedShifts["2024-05-10"] = Slots{"m", "t", ""}
	before := st.Clone()
	st.Normalize()
	assert.Equal(t, before, st)
}
