package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"GeoSentinel/internal/format"
	"GeoSentinel/internal/model"
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Indicator panel operations",
}

var panelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List current panel values",
	Args:  cobra.NoArgs,
	RunE:  runPanelList,
}

var panelUpdateFlags struct {
	key        string
	value      string
	direction  string
	color      string
	confidence string
	note       string
	query      string
	sourceURL  string
}

var panelUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update an indicator, optionally attaching web evidence",
	Args:  cobra.NoArgs,
	RunE:  runPanelUpdate,
}

var panelExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export the panel to CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runPanelExport,
}

var panelScoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the panel by dimension and map it to a risk tier",
	Args:  cobra.NoArgs,
	RunE:  runPanelScore,
}

func init() {
	f := panelUpdateCmd.Flags()
	f.StringVar(&panelUpdateFlags.key, "key", "", "Indicator template key (required)")
	f.StringVar(&panelUpdateFlags.value, "value", "", "Latest value (required)")
	f.StringVar(&panelUpdateFlags.direction, "direction", "", "Direction of travel")
	f.StringVar(&panelUpdateFlags.color, "color", "yellow", "green, yellow or red")
	f.StringVar(&panelUpdateFlags.confidence, "confidence", model.QualityMedium, "Confidence H, M or L")
	f.StringVar(&panelUpdateFlags.note, "note", "", "Analyst note")
	f.StringVar(&panelUpdateFlags.query, "query", "", "Search query; the best hit is attached as evidence")
	f.StringVar(&panelUpdateFlags.sourceURL, "source-url", "", "Source URL when no query is given")
	_ = panelUpdateCmd.MarkFlagRequired("key")
	_ = panelUpdateCmd.MarkFlagRequired("value")

	panelCmd.AddCommand(panelListCmd, panelUpdateCmd, panelExportCmd, panelScoreCmd)
}

func runPanelList(cmd *cobra.Command, _ []string) error {
	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	rows := a.PanelRows()
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No panel entries yet. Run `panel update` first.")
		return nil
	}
	tb := newTable()
	tb.Header("Dimension", "Indicator", "Latest", "Dir", "Color", "Confidence", "Date")
	tb.Columns(format.ColumnConfig{Number: 2, MaxWidth: 40}, format.ColumnConfig{Number: 3, MaxWidth: 30})
	for _, r := range rows {
		tb.Row(r.Dimension, r.Indicator, dash(r.LatestValue), dash(r.Direction), format.ColorMark(model.Status(r.Color)), dash(r.Confidence), dash(r.Date))
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}

func runPanelUpdate(cmd *cobra.Command, _ []string) error {
	color, err := model.ParseStatus(panelUpdateFlags.color)
	if err != nil {
		return err
	}
	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	u := model.IndicatorUpdate{
		LatestValue: panelUpdateFlags.value,
		Direction:   panelUpdateFlags.direction,
		SourceURL:   panelUpdateFlags.sourceURL,
		Color:       color,
		Confidence:  panelUpdateFlags.confidence,
		AnalystNote: panelUpdateFlags.note,
	}
	var rec model.IndicatorRecord
	if panelUpdateFlags.query != "" {
		rec, err = a.CollectIndicatorFromWeb(cmd.Context(), panelUpdateFlags.key, panelUpdateFlags.query, u)
	} else {
		rec, err = a.UpdateIndicator(panelUpdateFlags.key, u)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s with status %s\n", rec.Indicator, rec.Color)
	return nil
}

func runPanelExport(cmd *cobra.Command, args []string) error {
	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	path, err := a.ExportPanelCSV(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Panel exported to %s\n", path)
	return nil
}

func runPanelScore(cmd *cobra.Command, _ []string) error {
	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	ra := a.Assess()
	tb := newTable()
	tb.Header("Dimension", "Raw", "Weight", "Weighted", "Commentary")
	right := []format.ColumnConfig{
		{Number: 2, Align: format.AlignRight},
		{Number: 3, Align: format.AlignRight},
		{Number: 4, Align: format.AlignRight},
	}
	tb.Columns(right...)
	for _, f := range ra.Factors {
		tb.Row(f.Name, fmt.Sprintf("%+.2f", f.RawScore), fmt.Sprintf("%.2f", f.Weight), fmt.Sprintf("%+.3f", f.Weighted), f.Commentary)
	}
	tb.Footer("TOTAL", "", "", fmt.Sprintf("%+.3f", ra.TotalScore), ra.Tier.Label)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tb.String())
	fmt.Fprintf(out, "Tier: %s (%s)\n", ra.Tier.Label, ra.Tier.Action)
	fmt.Fprintf(out, "Red indicators: %d  Never updated: %d\n", ra.RedCount, ra.Stale)
	if ra.WarningMsg != "" {
		fmt.Fprintf(out, "Warning: %s\n", ra.WarningMsg)
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
