package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"shiftcal/internal/engine"
	"shiftcal/internal/model"
)

func newCalendarCmd(a *app) *cobra.Command {
	calendarCmd := &cobra.Command{Use: "calendar", Short: "Calendar operations"}

	calendarCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List calendars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.store.Snapshot()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range st.Calendars {
				marker := " "
				if c.ID == st.ActiveCalendarID {
					marker = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d days\n", marker, c.ID, c.Name, len(c.AssignedShifts))
			}
			return w.Flush()
		},
	})

	calendarCmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Create a calendar and make it active",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.store.AddCalendar(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				if errors.Is(err, engine.ErrCalendarLimit) {
					return fmt.Errorf("at most %d calendars are allowed", model.MaxCalendars)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	})

	calendarCmd.AddCommand(&cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a calendar",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.RenameCalendar(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	})

	calendarCmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.DeleteCalendar(cmd.Context(), args[0])
		},
	})

	calendarCmd.AddCommand(&cobra.Command{
		Use:   "switch ID",
		Short: "Make a calendar active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.SwitchCalendar(cmd.Context(), args[0])
		},
	})

	return calendarCmd
}
