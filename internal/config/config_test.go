package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"GEOSENTINEL_DATA_DIR", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTPS_PROXY",
		"CRON_DIGEST", "SQLITE_PATH", "LOG_LEVEL", "SOURCES_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, filepath.Join("data", "source_whitelist.json"), cfg.SourcesFile)
	assert.Equal(t, "jp-jp", cfg.Search.Region)
	assert.Equal(t, "moderate", cfg.Search.SafeSearch)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, 30*time.Second, cfg.Search.Timeout)
	assert.Equal(t, "0 0 8 * * 1", cfg.Schedule.DigestCron)
	assert.Empty(t, cfg.Database.SQLitePath)
	require.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateNotifier())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /var/lib/geo
telegram:
  bot_token: file-token
  chat_id: "42"
search:
  region: us-en
  max_results: 8
  timeout: 10s
log:
  format: json
`), 0644))

	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("SQLITE_PATH", "/tmp/h.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/geo", cfg.DataDir)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "us-en", cfg.Search.Region)
	assert.Equal(t, 8, cfg.Search.MaxResults)
	assert.Equal(t, 10*time.Second, cfg.Search.Timeout)
	assert.Equal(t, "/tmp/h.db", cfg.Database.SQLitePath)
	assert.Equal(t, "json", cfg.Log.Format)
	require.NoError(t, cfg.ValidateNotifier())

	p := cfg.Paths()
	assert.Equal(t, "/var/lib/geo/indicator_panel.json", p.Panel)
	assert.Equal(t, "/var/lib/geo/evidence_log.jsonl", p.Evidence)
	assert.Equal(t, "/var/lib/geo/alert_state.json", p.Alerts)
}

func TestLoad_DataDirFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEOSENTINEL_DATA_DIR", "/srv/geo")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/geo/ach_table.json", cfg.Paths().ACH)
	assert.Equal(t, "/srv/geo/source_whitelist.json", cfg.SourcesFile)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: ["), 0644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate_Rejects(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Search.SafeSearch = "maybe"
	assert.ErrorContains(t, cfg.Validate(), "safesearch")

	cfg.Search.SafeSearch = "off"
	cfg.Log.Format = "xml"
	assert.ErrorContains(t, cfg.Validate(), "log.format")
}
