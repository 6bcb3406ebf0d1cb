package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"shiftcal/internal/datekey"
	"shiftcal/internal/engine"
	"shiftcal/internal/model"
	"shiftcal/internal/stats"
)

var weekdayHeader = []string{"L", "M", "X", "J", "V", "S", "D"}

func newMonthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show the month grid of the calendar",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			year, month, err := a.parseMonth(arg)
			if err != nil {
				return err
			}
			st := a.store.Snapshot()
			cal := st.Calendar(a.calendar())
			if cal == nil {
				return engine.ErrCalendarNotFound
			}
			renderMonth(cmd.OutOrStdout(), st, cal, year, month, a.now())
			return nil
		},
	}
}

// renderMonth prints the Monday-first grid. Each cell shows the day number,
// "*" for today, and the abbreviations of the assigned shifts.
func renderMonth(w io.Writer, st *model.AppState, cal *model.Calendar, year int, month time.Month, today time.Time) {
	shifts := model.ShiftMap(st.Shifts)
	fmt.Fprintf(w, "%s · %s %d\n", cal.Name, engine.MonthName(month), year)

	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintln(tw, strings.Join(weekdayHeader, "\t")+"\t")
	for _, week := range datekey.MonthGrid(time.Date(year, month, 1, 0, 0, 0, 0, today.Location())) {
		cells := make([]string, 0, 7)
		for _, d := range week {
			if d.Month() != month {
				cells = append(cells, "")
				continue
			}
			key := datekey.DayKey(d)
			cell := fmt.Sprintf("%2d", d.Day())
			if datekey.IsSameCalendarDay(d, today) {
				cell += "*"
			}
			abbrs := make([]string, 0, model.SlotCount)
			for _, id := range cal.AssignedShifts[key].Filled() {
				if sh, ok := shifts[id]; ok {
					abbrs = append(abbrs, sh.Abbreviation)
				} else {
					abbrs = append(abbrs, "?")
				}
			}
			if len(abbrs) > 0 {
				cell += " " + strings.Join(abbrs, "/")
			}
			if cal.Notes[key] != "" {
				cell += " ✎"
			}
			if len(cal.Alarms[key]) > 0 {
				cell += " ⏰"
			}
			cells = append(cells, cell)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	tw.Flush()
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [YYYY-MM | YYYY]",
		Short: "Show shift counts for a month or a year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			p, err := a.parsePeriod(arg)
			if err != nil {
				return err
			}
			st := a.store.Snapshot()
			cal := st.Calendar(a.calendar())
			if cal == nil {
				return engine.ErrCalendarNotFound
			}
			renderStats(cmd.OutOrStdout(), stats.Compute(cal, st.Shifts, p))
			return nil
		},
	}
}

func renderStats(w io.Writer, sum stats.Summary) {
	if sum.Period.Annual() {
		fmt.Fprintf(w, "Resumen %d\n", sum.Period.Year)
	} else {
		fmt.Fprintf(w, "Resumen %s %d\n", engine.MonthName(sum.Period.Month), sum.Period.Year)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	worked := sum.Worked()
	if len(worked) == 0 {
		fmt.Fprintln(tw, "Sin turnos asignados")
	}
	for _, c := range worked {
		fmt.Fprintf(tw, "%s (%s)\t%d\n", c.Name, c.Abbreviation, c.Count)
	}
	fmt.Fprintf(tw, "Días trabajados\t%d\n", sum.WorkedDays)
	if len(sum.Combinations) > 0 {
		fmt.Fprintln(tw, "Combinaciones")
		for _, c := range sum.Combinations {
			fmt.Fprintf(tw, "  %s\t%d\n", c.Key, c.Count)
		}
	}
	tw.Flush()
}

func newHistoryCmd(a *app) *cobra.Command {
	var clearAll bool
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the change history of the calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if clearAll {
				return a.store.ClearHistory(cmd.Context(), a.calendar())
			}
			cal := a.store.Snapshot().Calendar(a.calendar())
			if cal == nil {
				return engine.ErrCalendarNotFound
			}
			loc := a.cfg.Location()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i, h := range cal.History {
				if limit > 0 && i >= limit {
					break
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Date.In(loc).Format("2006-01-02 15:04"), h.Type, h.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete every history entry")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Entries to show, 0 for all")
	return cmd
}
