package alarm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
)

// Source provides the latest state. store.Store satisfies it.
type Source interface {
	Snapshot() *model.AppState
}

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	Location *time.Location
	// AlarmSpec is the cron spec of the alarm check, e.g. "* * * * *".
	AlarmSpec string
	// BackupSpec is the cron spec of the backup check. Empty disables it.
	BackupSpec string
	Lead       time.Duration
	// Backup runs on every backup check.
	Backup func(ctx context.Context, now time.Time) error
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// Scheduler checks alarms and backups on cron schedules.
type Scheduler struct {
	cron     *cron.Cron
	src      Source
	notifier Notifier
	cfg      SchedulerConfig

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	sent map[string]time.Time
}

// NewScheduler registers the jobs but does not start them.
func NewScheduler(src Source, notifier Notifier, cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:     c,
		src:      src,
		notifier: notifier,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		sent:     map[string]time.Time{},
	}

	if _, err := c.AddFunc(cfg.AlarmSpec, func() { s.CheckAlarms(s.ctx, s.cfg.Now().In(s.cfg.Location)) }); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid alarm schedule %q: %w", cfg.AlarmSpec, err)
	}
	if cfg.BackupSpec != "" && cfg.Backup != nil {
		if _, err := c.AddFunc(cfg.BackupSpec, s.runBackup); err != nil {
			cancel()
			return nil, fmt.Errorf("invalid backup schedule %q: %w", cfg.BackupSpec, err)
		}
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	appLog.Info("scheduler started",
		"alarm_check", s.cfg.AlarmSpec,
		"backup_check", s.cfg.BackupSpec,
		"lead", s.cfg.Lead.String(),
		"timezone", s.cfg.Location.String(),
	)
	s.cron.Start()
}

// Stop halts the schedules and waits for running jobs, or until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		appLog.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CheckAlarms delivers every reminder due at now that was not already
// delivered within the suppression window. It returns what was delivered.
func (s *Scheduler) CheckAlarms(ctx context.Context, now time.Time) []Reminder {
	due := Due(s.src.Snapshot(), now, s.cfg.Lead)

	s.mu.Lock()
	window := 2 * s.cfg.Lead
	if window < time.Minute {
		window = time.Minute
	}
	for tag, at := range s.sent {
		if now.Sub(at) >= window {
			delete(s.sent, tag)
		}
	}
	fresh := due[:0]
	for _, r := range due {
		if _, dup := s.sent[r.Tag()]; dup {
			continue
		}
		s.sent[r.Tag()] = now
		fresh = append(fresh, r)
	}
	s.mu.Unlock()

	for _, r := range fresh {
		if err := s.notifier.Notify(ctx, r); err != nil {
			appLog.Error("reminder delivery failed", err, "tag", r.Tag())
		}
	}
	return fresh
}

func (s *Scheduler) runBackup() {
	now := s.cfg.Now().In(s.cfg.Location)
	if err := s.cfg.Backup(s.ctx, now); err != nil {
		appLog.Error("backup check failed", err)
	}
}

// cronLogger routes cron's own logging through the application log.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
