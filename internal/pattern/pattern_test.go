package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftcal/internal/engine"
	"shiftcal/internal/model"
)

var now = time.Date(2024, 4, 30, 20, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func TestFillEveryFourthDay(t *testing.T) {
	st := model.DefaultState()
	res, err := Fill(st, Request{
		CalendarID: st.ActiveCalendarID,
		ShiftID:    "n",
		Rule:       "FREQ=DAILY;INTERVAL=4",
		From:       day(1),
		To:         day(13),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-05-01", "2024-05-05", "2024-05-09", "2024-05-13"}, res.Applied)
	assert.Empty(t, res.Skipped)
	assert.False(t, res.Truncated)

	cal := st.Active()
	assert.Len(t, cal.AssignedShifts, 4)
	assert.Equal(t, model.Slots{"n", "", ""}, cal.AssignedShifts["2024-05-09"])
	assert.Len(t, cal.History, 4)
	assert.Equal(t, model.HistoryAdd, cal.History[0].Type)
}

func TestFillSkipsTakenAndFullDays(t *testing.T) {
	st := model.DefaultState()
	cal := st.ActiveCalendarID
	require.NoError(t, engine.AddShift(st, model.Shift{ID: "g", Name: "Guardia", Abbreviation: "G"}))

	_, err := engine.SetAssignment(st, cal, "2024-05-02", 0, "t", now)
	require.NoError(t, err)
	for i, id := range []string{"m", "t", "n"} {
		_, err := engine.SetAssignment(st, cal, "2024-05-03", i, id, now)
		require.NoError(t, err)
	}

	res, err := Fill(st, Request{
		CalendarID: cal,
		ShiftID:    "t",
		Rule:       "RRULE:FREQ=DAILY",
		From:       day(1),
		To:         day(3),
	}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-01"}, res.Applied)
	assert.Equal(t, []string{"2024-05-02", "2024-05-03"}, res.Skipped)

	res, err = Fill(st, Request{CalendarID: cal, ShiftID: "g", Rule: "FREQ=DAILY", From: day(1), To: day(3)}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-01", "2024-05-02"}, res.Applied)
	assert.Equal(t, []string{"2024-05-03"}, res.Skipped)
	assert.Equal(t, model.Slots{"t", "g", ""}, st.Active().AssignedShifts["2024-05-02"])
}

func TestFillWeekdaysWithExceptions(t *testing.T) {
	st := model.DefaultState()
	res, err := Fill(st, Request{
		CalendarID: st.ActiveCalendarID,
		ShiftID:    "m",
		Rule:       "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR",
		From:       day(1),
		To:         day(10),
		Except:     []string{"2024-05-08"},
	}, now)
	require.NoError(t, err)
	// 1 May 2024 is a Wednesday.
	assert.Equal(t, []string{
		"2024-05-01", "2024-05-02", "2024-05-03",
		"2024-05-06", "2024-05-07", "2024-05-09", "2024-05-10",
	}, res.Applied)
}

func TestFillCap(t *testing.T) {
	st := model.DefaultState()
	res, err := Fill(st, Request{
		CalendarID:     st.ActiveCalendarID,
		ShiftID:        "m",
		Rule:           "FREQ=DAILY",
		From:           day(1),
		To:             day(31),
		MaxOccurrences: 5,
	}, now)
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Len(t, res.Applied, 5)
}

func TestFillErrors(t *testing.T) {
	st := model.DefaultState()
	cal := st.ActiveCalendarID

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"unknown calendar", Request{CalendarID: "nope", ShiftID: "m", Rule: "FREQ=DAILY", From: day(1), To: day(2)}, engine.ErrCalendarNotFound},
		{"unknown shift", Request{CalendarID: cal, ShiftID: "x", Rule: "FREQ=DAILY", From: day(1), To: day(2)}, engine.ErrInvalidShift},
		{"bad rule", Request{CalendarID: cal, ShiftID: "m", Rule: "FREQ=SOMETIMES", From: day(1), To: day(2)}, ErrInvalidRule},
		{"bad exception", Request{CalendarID: cal, ShiftID: "m", Rule: "FREQ=DAILY", From: day(1), To: day(2), Except: []string{"2024-13-01"}}, ErrInvalidRule},
		{"reversed range", Request{CalendarID: cal, ShiftID: "m", Rule: "FREQ=DAILY", From: day(5), To: day(2)}, ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := st.Clone()
			_, err := Fill(st, tt.req, now)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, st)
		})
	}
}
