package alarm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"shiftcal/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const lead = 15 * time.Minute

func stateWithAlarms(alarms map[string]map[string]string) *model.AppState {
	st := model.DefaultState()
	st.Active().Alarms = alarms
	return st
}

type staticSource struct {
	mu sync.Mutex
	st *model.AppState
}

func (s *staticSource) Snapshot() *model.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Clone()
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 5, day, hour, minute, 0, 0, time.UTC)
}

func TestDue(t *testing.T) {
	st := stateWithAlarms(map[string]map[string]string{
		"2024-05-10": {"m": "07:00", "t": "15:00", "ghost": "07:00"},
		"2024-05-11": {"n": "00:10"},
	})

	tests := []struct {
		name string
		now  time.Time
		want []string
	}{
		{"fires lead before start", at(10, 6, 45), []string{"shift-notification-2024-05-10-m"}},
		{"fires within the minute", at(10, 6, 45).Add(42 * time.Second), []string{"shift-notification-2024-05-10-m"}},
		{"too early", at(10, 6, 44), nil},
		{"too late", at(10, 6, 46), nil},
		{"afternoon", at(10, 14, 45), []string{"shift-notification-2024-05-10-t"}},
		{"crosses midnight", at(10, 23, 55), []string{"shift-notification-2024-05-11-n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags []string
			for _, r := range Due(st, tt.now, lead) {
				tags = append(tags, r.Tag())
			}
			assert.Equal(t, tt.want, tags)
		})
	}
}

func TestDueReminderFields(t *testing.T) {
	st := stateWithAlarms(map[string]map[string]string{"2024-05-10": {"m": "07:00"}})
	due := Due(st, at(10, 6, 45), lead)
	require.Len(t, due, 1)
	r := due[0]
	assert.Equal(t, "Mañana", r.ShiftName)
	assert.Equal(t, st.ActiveCalendarID, r.CalendarID)
	assert.True(t, r.Start.Equal(at(10, 7, 0)))
	assert.Equal(t, `Tu turno "Mañana" comienza en 15 minutos, a las 07:00.`, r.Body())
}

func TestDueOnlyActiveCalendar(t *testing.T) {
	st := model.DefaultState()
	other := model.NewCalendar("other", "Otro")
	other.Alarms["2024-05-10"] = map[string]string{"m": "07:00"}
	st.Calendars = append(st.Calendars, other)

	assert.Empty(t, Due(st, at(10, 6, 45), lead))
	st.ActiveCalendarID = "other"
	assert.Len(t, Due(st, at(10, 6, 45), lead), 1)
}

func TestCheckAlarmsSuppressesDuplicates(t *testing.T) {
	src := &staticSource{st: stateWithAlarms(map[string]map[string]string{"2024-05-10": {"m": "07:00"}})}

	var delivered []string
	notifier := NotifierFunc(func(_ context.Context, r Reminder) error {
		delivered = append(delivered, r.Tag())
		return nil
	})
	s, err := NewScheduler(src, notifier, SchedulerConfig{Location: time.UTC, AlarmSpec: "* * * * *", Lead: lead})
	require.NoError(t, err)
	defer s.Stop(context.Background())

	ctx := context.Background()
	assert.Len(t, s.CheckAlarms(ctx, at(10, 6, 45)), 1)
	assert.Empty(t, s.CheckAlarms(ctx, at(10, 6, 45).Add(30*time.Second)), "same tag within the window")
	assert.Len(t, delivered, 1)
}

func TestCheckAlarmsReadsLatestSnapshot(t *testing.T) {
	src := &staticSource{st: model.DefaultState()}
	s, err := NewScheduler(src, NotifierFunc(func(context.Context, Reminder) error {
		return errors.New("delivery is best effort")
	}), SchedulerConfig{Location: time.UTC, AlarmSpec: "* * * * *", Lead: lead})
	require.NoError(t, err)
	defer s.Stop(context.Background())

	assert.Empty(t, s.CheckAlarms(context.Background(), at(10, 6, 45)))

	src.mu.Lock()
	src.st.Active().Alarms["2024-05-10"] = map[string]string{"m": "07:00"}
	src.mu.Unlock()

	assert.Len(t, s.CheckAlarms(context.Background(), at(10, 6, 45)), 1)
}

func TestSchedulerLifecycle(t *testing.T) {
	src := &staticSource{st: model.DefaultState()}
	var backups int
	var mu sync.Mutex
	s, err := NewScheduler(src, LogNotifier{}, SchedulerConfig{
		Location:   time.UTC,
		AlarmSpec:  "* * * * *",
		BackupSpec: "0 9 * * *",
		Lead:       lead,
		Backup: func(context.Context, time.Time) error {
			mu.Lock()
			backups++
			mu.Unlock()
			return nil
		},
	})
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	s.runBackup()
	mu.Lock()
	assert.Equal(t, 1, backups)
	mu.Unlock()
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(&staticSource{st: model.DefaultState()}, LogNotifier{}, SchedulerConfig{AlarmSpec: "every minute"})
	assert.Error(t, err)

	_, err = NewScheduler(&staticSource{st: model.DefaultState()}, LogNotifier{}, SchedulerConfig{
		AlarmSpec:  "* * * * *",
		BackupSpec: "nope",
		Backup:     func(context.Context, time.Time) error { return nil },
	})
	assert.Error(t, err)
}
