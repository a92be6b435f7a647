package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"GeoSentinel/internal/agent"
	"GeoSentinel/internal/format"
)

var searchFlags struct {
	limit int
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a web search and list the hits",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchFlags.limit, "limit", 3, "Maximum hits to show")
}

func runSearch(cmd *cobra.Command, args []string) error {
	s := agent.NewSearcher(cfg)
	results, err := s.Search(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if searchFlags.limit > 0 && len(results) > searchFlags.limit {
		results = results[:searchFlags.limit]
	}
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results.")
		return nil
	}

	tb := newTable()
	tb.Header("Title", "URL", "Source")
	tb.Columns(format.ColumnConfig{Number: 1, MaxWidth: 50})
	for _, r := range results {
		src := r.Source
		if src == "" {
			src = "web"
		}
		tb.Row(r.Title, r.URL, src)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}
