package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"shiftcal/internal/config"
	appLog "shiftcal/internal/log"
	"shiftcal/internal/store"
)

const version = "0.1.0"

// app carries what every command needs once the config is loaded.
type app struct {
	configPath string
	verbose    bool
	calendarID string

	cfg   *config.Config
	store *store.Store
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "shiftcal",
		Short:         "Personal shift calendar",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsStore(cmd) {
				return nil
			}
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "./var/shiftcal/config.yaml", "Path to config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVarP(&a.calendarID, "calendar", "c", "", "Calendar id (defaults to the active calendar)")

	root.AddCommand(
		newCalendarCmd(a),
		newShiftCmd(a),
		newAssignCmd(a),
		newNoteCmd(a),
		newAlarmCmd(a),
		newClearMonthCmd(a),
		newFillCmd(a),
		newMonthCmd(a),
		newStatsCmd(a),
		newHistoryCmd(a),
		newSyncCmd(a),
		newExportICSCmd(a),
		newSettingsCmd(a),
		newServeCmd(a),
	)
	return root
}

// needsStore is false for cobra's built-in help and completion commands.
func needsStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", a.configPath)
		return fmt.Errorf("load config: %w", err)
	}

	level := appLog.ParseLevel(cfg.LogLevel)
	if a.verbose {
		level = appLog.LevelDebug
	}
	appLog.SetLevel(level)

	backend, err := store.OpenBackend(cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	st, err := store.Open(ctx, backend)
	if err != nil {
		backend.Close()
		return err
	}

	a.cfg = cfg
	a.store = st
	appLog.Debug("effective config",
		"data_path", cfg.DataPath,
		"store", cfg.Store,
		"timezone", cfg.Timezone,
		"alarm_check", cfg.AlarmCheck,
		"reminder_lead_minutes", cfg.ReminderLeadMinutes,
		"backup_check", cfg.BackupCheck,
		"backup_dir", cfg.BackupDir,
	)
	return nil
}

func (a *app) close() error {
	defer appLog.Sync()
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// calendar resolves the --calendar flag, falling back to the active one.
func (a *app) calendar() string {
	if a.calendarID != "" {
		return a.calendarID
	}
	return a.store.ActiveCalendarID()
}

func (a *app) now() time.Time {
	return time.Now().In(a.cfg.Location())
}
