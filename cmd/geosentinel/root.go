// geosentinel tracks geopolitical risk indicators, competing hypotheses,
// calibrated forecasts and entrapment red-line signals.
//
// Usage:
//
//	geosentinel init
//	geosentinel panel update --key=<key> --value=<v> [--color=red] [--query=<q>]
//	geosentinel forecast add --event=<name> --due-date=YYYY-MM-DD --probability=0.3
//	geosentinel alert set --key=<key> --active
//	geosentinel run
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"GeoSentinel/internal/agent"
	"GeoSentinel/internal/config"
	"GeoSentinel/internal/format"
	"GeoSentinel/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	format     string
}

// cfg is loaded once per invocation by the root pre-run hook.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "geosentinel",
	Short: "Geopolitical risk panel, ACH ledger, forecasts and red-line alerts",
	Long: "GeoSentinel keeps an indicator panel, an analysis-of-competing-hypotheses table,\n" +
		"a calibrated forecast ledger and an entrapment red-line monitor in local JSON stores.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", defaultConfig, "Path to YAML config")
	rootCmd.PersistentFlags().StringVar(&rootFlags.format, "format", "ascii", "Table format: ascii or markdown")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(panelCmd)
	rootCmd.AddCommand(achCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(alertCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.Version = version
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(rootFlags.configPath)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	logging.Init(c.Log.Level, c.Log.Format, cmd.ErrOrStderr())
	cfg = c
	return nil
}

// openAgent creates the data directory and wires an agent over it.
func openAgent() (*agent.Agent, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return agent.Open(cfg)
}

func newTable() format.TableBuilder {
	return format.NewTable(format.ParseMode(rootFlags.format))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
