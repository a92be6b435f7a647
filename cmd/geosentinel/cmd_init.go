package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"GeoSentinel/internal/catalog"
	"GeoSentinel/internal/format"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Show indicator templates and entrapment signals and check the data stores load",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}
	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Indicator templates")
	tb := newTable()
	tb.Header("Key", "Dimension", "Indicator", "Weight")
	tb.Columns(format.ColumnConfig{Number: 4, Align: format.AlignRight})
	for _, t := range cat.Indicators {
		tb.Row(t.Key, string(t.Dimension), t.Indicator, t.DefaultWeight)
	}
	fmt.Fprintln(out, tb.String())

	fmt.Fprintln(out, "\nEntrapment signals")
	st := newTable()
	st.Header("Key", "Description", "Sources")
	st.Columns(format.ColumnConfig{Number: 2, MaxWidth: 60})
	for _, s := range cat.Signals {
		st.Row(s.Key, s.Description, strings.Join(s.PrimarySources, "\n"))
	}
	fmt.Fprintln(out, st.String())

	fmt.Fprintf(out, "\nACH question: %s\n", cat.ACH.Question)
	fmt.Fprintf(out, "Data stores under %s\n", cfg.DataDir)
	return nil
}
