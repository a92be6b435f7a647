package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"GeoSentinel/internal/format"
)

var achCmd = &cobra.Command{
	Use:   "ach",
	Short: "Analysis of competing hypotheses",
}

var achAddFlags struct {
	hypothesis string
	query      string
	kind       string
}

var achAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Search the web and file the best hit as supporting or refuting evidence",
	Args:  cobra.NoArgs,
	RunE:  runACHAdd,
}

var achShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the hypothesis table",
	Args:  cobra.NoArgs,
	RunE:  runACHShow,
}

var achListFlags struct {
	hypothesis string
	items      []string
}

var achGapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Replace the key intelligence gaps of a hypothesis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runACHList(cmd, "gaps")
	},
}

var achNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Replace the next collection tasks of a hypothesis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runACHList(cmd, "next")
	},
}

func init() {
	achAddCmd.Flags().StringVar(&achAddFlags.hypothesis, "hypothesis", "", "Hypothesis text (required)")
	achAddCmd.Flags().StringVar(&achAddFlags.query, "query", "", "Search query (required)")
	achAddCmd.Flags().StringVar(&achAddFlags.kind, "kind", "", "support or refute (required)")
	_ = achAddCmd.MarkFlagRequired("hypothesis")
	_ = achAddCmd.MarkFlagRequired("query")
	_ = achAddCmd.MarkFlagRequired("kind")

	for _, c := range []*cobra.Command{achGapsCmd, achNextCmd} {
		c.Flags().StringVar(&achListFlags.hypothesis, "hypothesis", "", "Hypothesis text (required)")
		c.Flags().StringArrayVar(&achListFlags.items, "item", nil, "Entry; repeat for several, omit to clear")
		_ = c.MarkFlagRequired("hypothesis")
	}

	achCmd.AddCommand(achAddCmd, achShowCmd, achGapsCmd, achNextCmd)
}

func runACHAdd(cmd *cobra.Command, _ []string) error {
	var supports bool
	switch achAddFlags.kind {
	case "support":
		supports = true
	case "refute":
	default:
		return fmt.Errorf("--kind must be support or refute, got %q", achAddFlags.kind)
	}

	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	ev, err := a.AddEvidenceFromWeb(cmd.Context(), achAddFlags.hypothesis, achAddFlags.query, supports)
	if err != nil {
		return err
	}
	if ev == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No evidence returned from web search")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged evidence %s\n", ev.Title)
	return nil
}

func runACHShow(cmd *cobra.Command, _ []string) error {
	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	table := a.ACHTable()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Question: %s\n\n", table.Question)

	tb := newTable()
	tb.Header("Hypothesis", "Support", "Refute", "Net", "Confidence", "Gaps", "Next")
	tb.Columns(
		format.ColumnConfig{Number: 1, MaxWidth: 40},
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
		format.ColumnConfig{Number: 6, MaxWidth: 30},
		format.ColumnConfig{Number: 7, MaxWidth: 30},
	)
	for _, e := range table.Entries {
		tb.Row(e.Hypothesis, len(e.Supports), len(e.Refutes), fmt.Sprintf("%+d", e.NetAssessment), e.Confidence,
			dash(strings.Join(e.KeyGaps, "\n")), dash(strings.Join(e.NextCollection, "\n")))
	}
	fmt.Fprintln(out, tb.String())
	return nil
}

func runACHList(cmd *cobra.Command, which string) error {
	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	switch which {
	case "gaps":
		err = a.SetGaps(achListFlags.hypothesis, achListFlags.items)
	case "next":
		err = a.SetNextCollection(achListFlags.hypothesis, achListFlags.items)
	default:
		err = errors.New("unknown ach list " + which)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %d %s entries on %q\n", len(achListFlags.items), which, achListFlags.hypothesis)
	return nil
}
