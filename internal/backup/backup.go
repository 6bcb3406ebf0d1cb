// Package backup decides when a backup reminder is due and writes the
// backup file, which holds the sync code of the whole state.
package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"shiftcal/internal/config"
	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
)

const day = 24 * time.Hour

// Interval returns how long must pass between reminders. Zero means never.
func Interval(f model.BackupFrequency) time.Duration {
	switch f {
	case model.BackupDaily:
		return day
	case model.BackupWeekly:
		return 7 * day
	case model.BackupMonthly:
		return 30 * day
	}
	return 0
}

// IsDue reports whether more than the frequency's interval has passed
// since last. A missing last prompt counts as the Unix epoch.
func IsDue(f model.BackupFrequency, last *time.Time, now time.Time) bool {
	interval := Interval(f)
	if interval == 0 {
		return false
	}
	since := time.Unix(0, 0)
	if last != nil {
		since = *last
	}
	return now.Sub(since) > interval
}

// FileName is the backup file name for the day of now.
func FileName(now time.Time) string {
	return fmt.Sprintf("MisTurnos_Respaldo_%s.txt", now.Format("2006-01-02"))
}

// Target is the part of the store a backup needs.
type Target interface {
	Snapshot() *model.AppState
	Export() (string, error)
	MarkBackupPrompt(ctx context.Context) error
}

// Run writes a backup into dir when one is due and records the prompt.
// The prompt is recorded even when the write fails so the reminder does not
// repeat on every check. It returns the written path, or "" when nothing
// was due.
func Run(ctx context.Context, t Target, dir string, now time.Time) (string, error) {
	st := t.Snapshot()
	if !IsDue(st.BackupFrequency, st.LastBackupPrompt, now) {
		return "", nil
	}

	path := filepath.Join(dir, FileName(now))
	werr := write(t, path)
	if err := t.MarkBackupPrompt(ctx); err != nil {
		appLog.Error("failed to record backup prompt", err)
		if werr == nil {
			werr = err
		}
	}
	if werr != nil {
		return "", werr
	}
	appLog.Info("backup written", "path", path, "frequency", string(st.BackupFrequency))
	return path, nil
}

func write(t Target, path string) error {
	code, err := t.Export()
	if err != nil {
		return fmt.Errorf("backup: export state: %w", err)
	}
	if err := config.WriteFileAtomic(path, []byte(code), ".shiftcal-backup-*.tmp"); err != nil {
		return fmt.Errorf("backup: write %s: %w", path, err)
	}
	return nil
}
