package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"GeoSentinel/internal/format"
	"GeoSentinel/internal/model"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast ledger and calibration",
}

var forecastAddFlags struct {
	event       string
	dueDate     string
	probability float64
	rationale   string
}

var forecastAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a dated probability estimate",
	Args:  cobra.NoArgs,
	RunE:  runForecastAdd,
}

var forecastCloseFlags struct {
	event   string
	outcome int
}

var forecastCloseCmd = &cobra.Command{
	Use:   "close",
	Short: "Record the outcome of a forecast and score it",
	Args:  cobra.NoArgs,
	RunE:  runForecastClose,
}

var forecastListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every forecast with its Brier score",
	Args:  cobra.NoArgs,
	RunE:  runForecastList,
}

var forecastPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List unresolved forecasts, due and overdue",
	Args:  cobra.NoArgs,
	RunE:  runForecastPending,
}

var forecastCalibrationFlags struct {
	buckets int
}

var forecastCalibrationCmd = &cobra.Command{
	Use:   "calibration",
	Short: "Show a reliability table of resolved forecasts",
	Args:  cobra.NoArgs,
	RunE:  runForecastCalibration,
}

func init() {
	f := forecastAddCmd.Flags()
	f.StringVar(&forecastAddFlags.event, "event", "", "Event name (required)")
	f.StringVar(&forecastAddFlags.dueDate, "due-date", "", "Due date YYYY-MM-DD (required)")
	f.Float64Var(&forecastAddFlags.probability, "probability", 0, "Probability in [0,1] (required)")
	f.StringVar(&forecastAddFlags.rationale, "rationale", "", "Reasoning behind the estimate")
	_ = forecastAddCmd.MarkFlagRequired("event")
	_ = forecastAddCmd.MarkFlagRequired("due-date")
	_ = forecastAddCmd.MarkFlagRequired("probability")

	forecastCloseCmd.Flags().StringVar(&forecastCloseFlags.event, "event", "", "Event name (required)")
	forecastCloseCmd.Flags().IntVar(&forecastCloseFlags.outcome, "outcome", -1, "Outcome 0 or 1 (required)")
	_ = forecastCloseCmd.MarkFlagRequired("event")
	_ = forecastCloseCmd.MarkFlagRequired("outcome")

	forecastCalibrationCmd.Flags().IntVar(&forecastCalibrationFlags.buckets, "buckets", 5, "Number of probability bands")

	forecastCmd.AddCommand(forecastAddCmd, forecastCloseCmd, forecastListCmd, forecastPendingCmd, forecastCalibrationCmd)
}

func runForecastAdd(cmd *cobra.Command, _ []string) error {
	due, err := model.ParseDate(forecastAddFlags.dueDate)
	if err != nil {
		return err
	}
	ev := model.ForecastEvent{
		Event:       forecastAddFlags.event,
		DueDate:     due,
		Probability: forecastAddFlags.probability,
		Rationale:   forecastAddFlags.rationale,
	}
	if err := ev.Validate(); err != nil {
		return err
	}

	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.AddForecast(ev); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged forecast '%s' at p=%g\n", ev.Event, ev.Probability)
	return nil
}

func runForecastClose(cmd *cobra.Command, _ []string) error {
	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	ev, err := a.FinalizeForecast(forecastCloseFlags.event, forecastCloseFlags.outcome)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Finalized %s with outcome %d (Brier %.3f)\n", ev.Event, *ev.Outcome, *ev.Brier)
	return nil
}

func runForecastList(cmd *cobra.Command, _ []string) error {
	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	tb := newTable()
	tb.Header("Event", "Due", "p", "Outcome", "Brier")
	tb.Columns(
		format.ColumnConfig{Number: 1, MaxWidth: 50},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 5, Align: format.AlignRight},
	)
	for _, r := range a.ForecastRows() {
		tb.Row(r.Event, r.DueDate, r.Probability, r.Outcome, r.Brier)
	}
	if score, ok := a.AggregateBrier(); ok {
		tb.Footer("MEAN BRIER", "", "", "", fmt.Sprintf("%.3f", score))
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}

func runForecastPending(cmd *cobra.Command, _ []string) error {
	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	pending := a.PendingForecasts()
	overdue := a.OverdueForecasts()
	if len(pending)+len(overdue) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No unresolved forecasts.")
		return nil
	}
	tb := newTable()
	tb.Header("Event", "Due", "p", "State")
	tb.Columns(format.ColumnConfig{Number: 1, MaxWidth: 50}, format.ColumnConfig{Number: 3, Align: format.AlignRight})
	for _, ev := range overdue {
		tb.Row(ev.Event, ev.DueDate.String(), fmt.Sprintf("%.2f", ev.Probability), "OVERDUE")
	}
	for _, ev := range pending {
		tb.Row(ev.Event, ev.DueDate.String(), fmt.Sprintf("%.2f", ev.Probability), "pending")
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}

func runForecastCalibration(cmd *cobra.Command, _ []string) error {
	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	buckets, err := a.Reliability(forecastCalibrationFlags.buckets)
	if err != nil {
		return err
	}
	if len(buckets) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No resolved forecasts yet.")
		return nil
	}
	tb := newTable()
	tb.Header("Band", "Count", "Mean p", "Observed")
	tb.Columns(
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
	)
	for _, b := range buckets {
		tb.Row(fmt.Sprintf("%.2f-%.2f", b.Lower, b.Upper), b.Count, fmt.Sprintf("%.2f", b.MeanForecast), fmt.Sprintf("%.2f", b.ObservedRate))
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}
