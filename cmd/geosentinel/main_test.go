package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI against a throwaway data directory and returns stdout.
func execute(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GEOSENTINEL_DATA_DIR", dataDir)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("SQLITE_PATH", "")

	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dataDir, "missing.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestForecastWorkflow(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "forecast", "add", "--event", "snap election", "--due-date", "2020-01-01", "--probability", "0.3")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged forecast 'snap election' at p=0.3")

	_, err = execute(t, dir, "forecast", "add", "--event", "joint HQ launch", "--due-date", "2099-01-01", "--probability", "0.6")
	require.NoError(t, err)

	out, err = execute(t, dir, "forecast", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "OVERDUE")
	assert.Contains(t, out, "joint HQ launch")

	out, err = execute(t, dir, "forecast", "close", "--event", "snap election", "--outcome", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Brier 0.090")

	out, err = execute(t, dir, "forecast", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "MEAN BRIER")
	assert.Contains(t, out, "0.090")

	out, err = execute(t, dir, "forecast", "calibration", "--buckets", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "0.20-0.40")
}

func TestForecastRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, dir, "forecast", "add", "--event", "x", "--due-date", "2026-13-01", "--probability", "0.5")
	assert.Error(t, err)

	_, err = execute(t, dir, "forecast", "add", "--event", "x", "--due-date", "2026-12-01", "--probability", "1.5")
	assert.Error(t, err)

	_, err = execute(t, dir, "forecast", "close", "--event", "missing", "--outcome", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPanelUpdateListExport(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "panel", "update", "--key", "institution_article9", "--value", "draft tabled", "--color", "red", "--source-url", "https://www.kantei.go.jp/")
	require.NoError(t, err)
	assert.Contains(t, out, "with status red")

	out, err = execute(t, dir, "panel", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "draft tabled")
	assert.Contains(t, out, "RED")

	out, err = execute(t, dir, "panel", "score")
	require.NoError(t, err)
	assert.Contains(t, out, "Tier:")
	assert.Contains(t, out, "Red indicators: 1")

	path := filepath.Join(dir, "out", "panel.csv")
	out, err = execute(t, dir, "panel", "export", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "dimension,indicator,latest_value"))
	assert.Contains(t, string(data), "draft tabled")
}

func TestPanelUpdateRejectsUnknownKeyAndColor(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, dir, "panel", "update", "--key", "nope", "--value", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nope"`)

	_, err = execute(t, dir, "panel", "update", "--key", "institution_article9", "--value", "v", "--color", "purple")
	assert.Error(t, err)
}

func TestAlertSetReachesRedLine(t *testing.T) {
	dir := t.TempDir()

	for _, key := range []string{"trilateral_packaging", "joint_command_upgrade"} {
		out, err := execute(t, dir, "alert", "set", "--key", key, "--active")
		require.NoError(t, err)
		assert.Contains(t, out, "=> ACTIVE")
		assert.NotContains(t, out, "red-line triggered")
	}

	out, err := execute(t, dir, "alert", "set", "--key", "counterstrike_narrative_shift", "--active", "--notes", "white paper wording")
	require.NoError(t, err)
	assert.Contains(t, out, "Entrapment red-line triggered!")

	out, err = execute(t, dir, "alert", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "RED LINE")
	assert.Contains(t, out, "white paper wording")

	out, err = execute(t, dir, "alert", "set", "--key", "joint_command_upgrade", "--inactive")
	require.NoError(t, err)
	assert.Contains(t, out, "=> inactive")
	assert.NotContains(t, out, "red-line triggered")
}

func TestAlertSetNeedsExactlyOneState(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, dir, "alert", "set", "--key", "trilateral_packaging")
	assert.Error(t, err)

	_, err = execute(t, dir, "alert", "set", "--key", "trilateral_packaging", "--active", "--inactive")
	assert.Error(t, err)
}

func TestACHGapsAndShow(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "ach", "gaps", "--hypothesis", "H2 同盟拖拽", "--item", "command relationship text", "--item", "budget line")
	require.NoError(t, err)
	assert.Contains(t, out, "Set 2 gaps entries")

	out, err = execute(t, dir, "ach", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "H1 同盟内正常化")
	assert.Contains(t, out, "budget line")

	_, err = execute(t, dir, "ach", "next", "--hypothesis", "H9 unknown", "--item", "x")
	assert.Error(t, err)
}

func TestPrompts(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "prompts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "institution_line")

	out, err = execute(t, dir, "prompts", "show", "--key", "institution_line", "--sources", "https://example.org/a")
	require.NoError(t, err)
	assert.Contains(t, out, `["https://example.org/a"]`)

	_, err = execute(t, dir, "prompts", "show", "--key", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown prompt key")
}

func TestSourcesListAndAudit(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SOURCES_FILE", filepath.Join("..", "..", "data", "source_whitelist.json"))

	out, err := execute(t, dir, "sources", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "https://")

	out, err = execute(t, dir, "sources", "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "not yet in")
}

func TestSourcesMissingWhitelist(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SOURCES_FILE", filepath.Join(dir, "absent.json"))

	_, err := execute(t, dir, "sources", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source whitelist not found")
}
