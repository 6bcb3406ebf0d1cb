package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shiftcal/internal/config"
	"shiftcal/internal/ics"
	"shiftcal/internal/model"
)

func newSyncCmd(a *app) *cobra.Command {
	syncCmd := &cobra.Command{Use: "sync", Short: "Move the whole state between devices with a sync code"}

	var outPath string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Print the sync code of the current state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code, err := a.store.Export()
			if err != nil {
				return err
			}
			if outPath != "" {
				return config.WriteFileAtomic(outPath, []byte(code), ".shiftcal-sync-*.tmp")
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the code to a file instead of stdout")
	syncCmd.AddCommand(exportCmd)

	var inPath string
	importCmd := &cobra.Command{
		Use:   "import [CODE]",
		Short: "Replace the state with the one carried by a sync code",
		Long: "Replace the state with the one carried by a sync code. The code is read\n" +
			"from the argument, from --in, or from stdin. The backup settings of this\n" +
			"device are kept.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var code string
			switch {
			case len(args) == 1:
				code = args[0]
			case inPath != "":
				data, err := os.ReadFile(inPath)
				if err != nil {
					return err
				}
				code = string(data)
			default:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				code = string(data)
			}
			if err := a.store.Import(cmd.Context(), code); err != nil {
				return err
			}
			st := a.store.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d calendars and %d shifts\n", len(st.Calendars), len(st.Shifts))
			return nil
		},
	}
	importCmd.Flags().StringVarP(&inPath, "in", "i", "", "Read the code from a file")
	syncCmd.AddCommand(importCmd)

	return syncCmd
}

func newExportICSCmd(a *app) *cobra.Command {
	var outPath, period string
	cmd := &cobra.Command{
		Use:   "export-ics",
		Short: "Export the calendar as an iCalendar feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := ics.Options{Location: a.cfg.Location(), Lead: a.cfg.ReminderLead(), Now: a.now()}
			if period != "" {
				p, err := a.parsePeriod(period)
				if err != nil {
					return err
				}
				if p.Annual() {
					opts.From, opts.To = fmt.Sprintf("%04d-01-01", p.Year), fmt.Sprintf("%04d-12-31", p.Year)
				} else {
					opts.From = fmt.Sprintf("%04d-%02d-01", p.Year, int(p.Month))
					opts.To = fmt.Sprintf("%04d-%02d-31", p.Year, int(p.Month))
				}
			}
			out, err := ics.Export(a.store.Snapshot(), a.calendar(), opts)
			if err != nil {
				return err
			}
			if outPath != "" {
				return config.WriteFileAtomic(outPath, []byte(out), ".shiftcal-ics-*.tmp")
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the feed to a file instead of stdout")
	cmd.Flags().StringVarP(&period, "period", "p", "", "Only export YYYY-MM or YYYY")
	return cmd
}

func newSettingsCmd(a *app) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.store.Snapshot()
			last := "never"
			if st.LastBackupPrompt != nil {
				last = st.LastBackupPrompt.In(a.cfg.Location()).Format("2006-01-02 15:04")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "theme: %s\nbackup: %s\nlast backup prompt: %s\n", st.Theme, st.BackupFrequency, last)
			return nil
		},
	}

	settingsCmd.AddCommand(&cobra.Command{
		Use:       "theme light|dark|system",
		Short:     "Set the theme preference",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(model.ThemeLight), string(model.ThemeDark), string(model.ThemeSystem)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.SetTheme(cmd.Context(), model.Theme(strings.ToLower(args[0])))
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "backup disabled|daily|weekly|monthly",
		Short: "Set how often a backup is written",
		Args:  cobra.ExactArgs(1),
		ValidArgs: []string{
			string(model.BackupDisabled), string(model.BackupDaily),
			string(model.BackupWeekly), string(model.BackupMonthly),
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.SetBackupFrequency(cmd.Context(), model.BackupFrequency(strings.ToLower(args[0])))
		},
	})

	return settingsCmd
}
