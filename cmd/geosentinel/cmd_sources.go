package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"GeoSentinel/internal/format"
	"GeoSentinel/internal/prompts"
	"GeoSentinel/internal/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Whitelisted primary data sources",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the source whitelist",
	Args:  cobra.NoArgs,
	RunE:  runSourcesList,
}

var sourcesAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report prompt default sources missing from the whitelist",
	Args:  cobra.NoArgs,
	RunE:  runSourcesAudit,
}

var sourcesCheckFlags struct {
	parallel int
	timeout  time.Duration
}

var sourcesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every whitelisted URL for reachability",
	Args:  cobra.NoArgs,
	RunE:  runSourcesCheck,
}

func init() {
	sourcesCheckCmd.Flags().IntVar(&sourcesCheckFlags.parallel, "parallel", 4, "Requests in flight and per second")
	sourcesCheckCmd.Flags().DurationVar(&sourcesCheckFlags.timeout, "timeout", 15*time.Second, "Per-request timeout")

	sourcesCmd.AddCommand(sourcesListCmd, sourcesAuditCmd, sourcesCheckCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	list, err := sources.Load(cfg.SourcesFile)
	if err != nil {
		return err
	}
	tb := newTable()
	tb.Header("Name", "Category", "URL", "Tags")
	tb.Columns(format.ColumnConfig{Number: 1, MaxWidth: 40})
	for _, s := range list {
		tb.Row(s.Name, s.Category, s.URL, dash(strings.Join(s.Tags, ", ")))
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}

func runSourcesAudit(cmd *cobra.Command, _ []string) error {
	list, err := sources.Load(cfg.SourcesFile)
	if err != nil {
		return err
	}
	cat, err := prompts.Default()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	missing := sources.MissingPromptSources(list, cat.List())
	if len(missing) == 0 {
		fmt.Fprintln(out, "All prompt default sources are covered by the whitelist.")
		return nil
	}
	fmt.Fprintf(out, "The following prompt sources are not yet in %s:\n", cfg.SourcesFile)
	for _, u := range missing {
		fmt.Fprintf(out, "- %s\n", u)
	}
	return nil
}

func runSourcesCheck(cmd *cobra.Command, _ []string) error {
	list, err := sources.Load(cfg.SourcesFile)
	if err != nil {
		return err
	}
	transport := &http.Transport{}
	if cfg.Proxy != "" {
		if u, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client := &http.Client{Timeout: sourcesCheckFlags.timeout, Transport: transport}

	results, err := sources.Check(cmd.Context(), client, list, sourcesCheckFlags.parallel)
	if err != nil {
		return err
	}

	tb := newTable()
	tb.Header("Name", "Status", "Latency", "OK")
	tb.Columns(
		format.ColumnConfig{Number: 1, MaxWidth: 40},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignCenter},
	)
	failed := 0
	for _, r := range results {
		status := fmt.Sprintf("%d", r.Status)
		if r.Err != nil {
			status = format.Truncate(r.Err.Error(), 40)
		}
		if !r.OK() {
			failed++
		}
		tb.Row(r.Source.Name, status, r.Latency.Round(time.Millisecond).String(), format.BoolMark(r.OK()))
	}
	tb.Footer("", "", "", fmt.Sprintf("%d/%d", len(results)-failed, len(results)))
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}
