package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"shiftcal/internal/datekey"
	"shiftcal/internal/engine"
	"shiftcal/internal/model"
	"shiftcal/internal/pattern"
)

func newAssignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assign DAY SLOT [SHIFT_ID]",
		Short: "Put a shift into slot 1-3 of a day; omit SHIFT_ID to clear the slot",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.parseDay(args[0])
			if err != nil {
				return err
			}
			slot, err := parseSlot(args[1])
			if err != nil {
				return err
			}
			shiftID := ""
			if len(args) == 3 {
				shiftID = args[2]
				if _, ok := a.store.Snapshot().Shift(shiftID); !ok {
					return fmt.Errorf("shift %q not found", shiftID)
				}
			}

			applied, err := a.store.SetAssignment(cmd.Context(), a.calendar(), day, slot, shiftID)
			if err != nil {
				return err
			}
			if !applied {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already has %s, nothing changed\n", day, shiftID)
				return nil
			}
			ids := a.store.Snapshot().Calendar(a.calendar()).AssignedShifts[day].Filled()
			if len(ids) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: free\n", day)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", day, strings.Join(ids, ", "))
			return nil
		},
	}
}

func newNoteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "note DAY [TEXT...]",
		Short: "Set the note of a day; omit TEXT to delete it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.parseDay(args[0])
			if err != nil {
				return err
			}
			return a.store.SetNote(cmd.Context(), a.calendar(), day, strings.Join(args[1:], " "))
		},
	}
}

func newAlarmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "alarm DAY SHIFT_ID [HH:MM]",
		Short: "Set a shift start alarm; omit the time to delete it",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.parseDay(args[0])
			if err != nil {
				return err
			}
			at := ""
			if len(args) == 3 {
				at = args[2]
			}
			err = a.store.SetAlarm(cmd.Context(), a.calendar(), day, args[1], at)
			if errors.Is(err, engine.ErrInvalidTime) {
				return fmt.Errorf("invalid time %q, want HH:MM", at)
			}
			return err
		},
	}
}

func newClearMonthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-month YYYY-MM",
		Short: "Remove every assignment of a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := a.parseMonth(args[0])
			if err != nil {
				return err
			}
			n, err := a.store.ClearMonth(cmd.Context(), a.calendar(), year, month)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d days of %s %d\n", n, engine.MonthName(month), year)
			return nil
		},
	}
}

func newFillCmd(a *app) *cobra.Command {
	var (
		rule, from, to string
		except         []string
	)
	cmd := &cobra.Command{
		Use:   "fill SHIFT_ID",
		Short: "Place a shift on every day produced by a recurrence rule",
		Example: `  shiftcal fill n --rule "FREQ=DAILY;INTERVAL=4" --from 2024-05-01 --to 2024-05-31
  shiftcal fill m --rule "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR" --from today --to 2024-06-30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := pattern.Request{CalendarID: a.calendar(), ShiftID: args[0], Rule: rule, Except: except}
			loc := a.cfg.Location()
			for _, p := range []struct {
				in  string
				out *time.Time
			}{{from, &req.From}, {to, &req.To}} {
				day, err := a.parseDay(p.in)
				if err != nil {
					return err
				}
				if *p.out, err = datekey.ParseDayKey(day, loc); err != nil {
					return err
				}
			}

			var res pattern.Result
			err := a.store.Update(cmd.Context(), "fill", func(st *model.AppState) error {
				var ferr error
				res, ferr = pattern.Fill(st, req, a.now())
				return ferr
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d days, skipped %d\n", len(res.Applied), len(res.Skipped))
			if res.Truncated {
				fmt.Fprintln(cmd.OutOrStdout(), "warning: the rule produced too many days and was truncated")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&rule, "rule", "r", "", "RFC 5545 recurrence rule (required)")
	cmd.Flags().StringVar(&from, "from", "today", "First day, also the rule start")
	cmd.Flags().StringVar(&to, "to", "", "Last day (required)")
	cmd.Flags().StringSliceVar(&except, "except", nil, "Days to leave untouched")
	_ = cmd.MarkFlagRequired("rule")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
