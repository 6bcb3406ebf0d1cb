package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"shiftcal/internal/engine"
	"shiftcal/internal/model"
)

func newShiftCmd(a *app) *cobra.Command {
	shiftCmd := &cobra.Command{Use: "shift", Short: "Shift registry operations"}

	shiftCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List shifts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tABBR\tNAME\tCOLOR\tICON")
			for _, sh := range a.store.Snapshot().Shifts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", sh.ID, sh.Abbreviation, sh.Name, sh.Color, sh.Icon)
			}
			return w.Flush()
		},
	})

	var sh model.Shift
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sh.ID == "" {
				sh.ID = engine.NewShiftID(sh.Name)
			}
			if err := a.store.AddShift(cmd.Context(), sh); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sh.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&sh.ID, "id", "", "Shift id (derived from the name if empty)")
	addCmd.Flags().StringVarP(&sh.Name, "name", "n", "", "Shift name (required)")
	addCmd.Flags().StringVarP(&sh.Abbreviation, "abbr", "a", "", "Abbreviation, up to 3 characters")
	addCmd.Flags().StringVar(&sh.Color, "color", "bg-gray-500", "Color token")
	addCmd.Flags().StringVar(&sh.Icon, "icon", "Briefcase", "Icon name")
	_ = addCmd.MarkFlagRequired("name")
	shiftCmd.AddCommand(addCmd)

	var upd model.Shift
	updateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a shift; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, ok := a.store.Snapshot().Shift(args[0])
			if !ok {
				return fmt.Errorf("shift %q not found", args[0])
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				cur.Name = upd.Name
			}
			if flags.Changed("abbr") {
				cur.Abbreviation = model.NormalizeAbbreviation(upd.Abbreviation)
			}
			if flags.Changed("color") {
				cur.Color = upd.Color
			}
			if flags.Changed("icon") {
				cur.Icon = upd.Icon
			}
			_, err := a.store.UpdateShift(cmd.Context(), cur)
			return err
		},
	}
	updateCmd.Flags().StringVarP(&upd.Name, "name", "n", "", "Shift name")
	updateCmd.Flags().StringVarP(&upd.Abbreviation, "abbr", "a", "", "Abbreviation, up to 3 characters")
	updateCmd.Flags().StringVar(&upd.Color, "color", "", "Color token")
	updateCmd.Flags().StringVar(&upd.Icon, "icon", "", "Icon name")
	shiftCmd.AddCommand(updateCmd)

	shiftCmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a shift and clear it from every calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := a.store.Snapshot().Shift(args[0]); !ok {
				return fmt.Errorf("shift %q not found", args[0])
			}
			n, err := a.store.DeleteShift(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s, cleared %d slots\n", args[0], n)
			return nil
		},
	})

	return shiftCmd
}
