package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"GeoSentinel/internal/format"
	"GeoSentinel/internal/prompts"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "LLM prompt templates for collection tasks",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	Args:  cobra.NoArgs,
	RunE:  runPromptsList,
}

var promptsShowFlags struct {
	key     string
	sources []string
	json    bool
}

var promptsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Render one template with its system prompt",
	Args:  cobra.NoArgs,
	RunE:  runPromptsShow,
}

func init() {
	f := promptsShowCmd.Flags()
	f.StringVar(&promptsShowFlags.key, "key", "", "Template key (required)")
	f.StringSliceVar(&promptsShowFlags.sources, "sources", nil, "Override the source URL list")
	f.BoolVar(&promptsShowFlags.json, "json", false, "Print the rendered messages as JSON")
	_ = promptsShowCmd.MarkFlagRequired("key")

	promptsCmd.AddCommand(promptsListCmd, promptsShowCmd)
}

func runPromptsList(cmd *cobra.Command, _ []string) error {
	cat, err := prompts.Default()
	if err != nil {
		return err
	}
	tb := newTable()
	tb.Header("Key", "Title", "Description", "Default Sources")
	tb.Columns(format.ColumnConfig{Number: 3, MaxWidth: 50}, format.ColumnConfig{Number: 4, MaxWidth: 60})
	for _, t := range cat.List() {
		preview := "-"
		if n := len(t.DefaultSources); n > 0 {
			preview = strings.Join(t.DefaultSources[:min(n, 2)], ", ")
			if n > 2 {
				preview += ", …"
			}
		}
		tb.Row(t.Key, t.Title, format.Truncate(t.Description, 120), preview)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}

func runPromptsShow(cmd *cobra.Command, _ []string) error {
	cat, err := prompts.Default()
	if err != nil {
		return err
	}
	msg, err := cat.Messages(promptsShowFlags.key, promptsShowFlags.sources)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if promptsShowFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(msg)
	}
	fmt.Fprintf(out, "== %s ==\n%s\n\n", msg.Title, msg.Description)
	fmt.Fprintf(out, "System\n%s\n\n", msg.System)
	fmt.Fprintf(out, "User\n%s\n\n", msg.User)
	fmt.Fprintf(out, "Output Schema\n%s\n\n", msg.OutputSchema)
	fmt.Fprintln(out, "Default Sources")
	for _, u := range msg.DefaultSources {
		fmt.Fprintf(out, "- %s\n", u)
	}
	return nil
}
