package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shiftcal/internal/alarm"
	"shiftcal/internal/backup"
	appLog "shiftcal/internal/log"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the alarm and backup reminder scheduler until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	appLog.Info("shiftcal starting", "version", version)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	sched, err := alarm.NewScheduler(a.store, alarm.LogNotifier{}, alarm.SchedulerConfig{
		Location:   a.cfg.Location(),
		AlarmSpec:  a.cfg.AlarmCheck,
		BackupSpec: a.cfg.BackupCheck,
		Lead:       a.cfg.ReminderLead(),
		Backup: func(ctx context.Context, now time.Time) error {
			_, err := backup.Run(ctx, a.store, a.cfg.BackupDir, now)
			return err
		},
	})
	if err != nil {
		return err
	}

	// A reminder that became due while the scheduler was down is caught
	// up right away.
	if _, err := backup.Run(ctx, a.store, a.cfg.BackupDir, a.now()); err != nil {
		appLog.Error("startup backup check failed", err)
	}

	sched.Start()
	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := sched.Stop(stopCtx); err != nil {
		appLog.Error("scheduler did not stop in time", err)
	}
	appLog.Info("shiftcal exiting")
	return nil
}
