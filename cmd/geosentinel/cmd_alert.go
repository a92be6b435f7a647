package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"GeoSentinel/internal/format"
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Entrapment signal monitoring",
}

var alertSetFlags struct {
	key      string
	active   bool
	inactive bool
	notes    string
}

var alertSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Mark a signal active or inactive",
	Args:  cobra.NoArgs,
	RunE:  runAlertSet,
}

var alertStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show every signal and the red-line state",
	Args:  cobra.NoArgs,
	RunE:  runAlertStatus,
}

func init() {
	f := alertSetCmd.Flags()
	f.StringVar(&alertSetFlags.key, "key", "", "Signal key (required)")
	f.BoolVar(&alertSetFlags.active, "active", false, "Mark the signal active")
	f.BoolVar(&alertSetFlags.inactive, "inactive", false, "Mark the signal inactive")
	f.StringVar(&alertSetFlags.notes, "notes", "", "Analyst notes")
	_ = alertSetCmd.MarkFlagRequired("key")
	alertSetCmd.MarkFlagsMutuallyExclusive("active", "inactive")
	alertSetCmd.MarkFlagsOneRequired("active", "inactive")

	alertCmd.AddCommand(alertSetCmd, alertStatusCmd)
}

func runAlertSet(cmd *cobra.Command, _ []string) error {
	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	active := alertSetFlags.active && !alertSetFlags.inactive
	if _, err := a.SetAlertState(cmd.Context(), alertSetFlags.key, active, alertSetFlags.notes); err != nil {
		return err
	}
	state := "inactive"
	if active {
		state = "ACTIVE"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Signal %s => %s\n", alertSetFlags.key, state)
	if a.RedAlert() {
		fmt.Fprintln(out, "Entrapment red-line triggered!")
	}
	return nil
}

func runAlertStatus(cmd *cobra.Command, _ []string) error {
	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	tb := newTable()
	tb.Header("Key", "Description", "Active", "Evidence", "Checked", "Notes")
	tb.Columns(
		format.ColumnConfig{Number: 2, MaxWidth: 50},
		format.ColumnConfig{Number: 3, Align: format.AlignCenter},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
		format.ColumnConfig{Number: 6, MaxWidth: 30},
	)
	for _, s := range a.AlertSummary() {
		checked := "-"
		if !s.LastChecked.IsZero() {
			checked = s.LastChecked.Local().Format("2006-01-02 15:04")
		}
		tb.Row(s.Key, s.Description, format.BoolMark(s.Active), s.EvidenceCount, checked, dash(s.Notes))
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tb.String())
	if a.RedAlert() {
		fmt.Fprintln(out, "RED LINE: every entrapment signal is active.")
	}
	return nil
}
