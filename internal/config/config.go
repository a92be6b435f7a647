package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataDir     string `yaml:"data_dir"`
	CatalogFile string `yaml:"catalog_file"`
	SourcesFile string `yaml:"sources_file"`
	Telegram    struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Search struct {
		Region        string        `yaml:"region"`
		SafeSearch    string        `yaml:"safesearch"`
		MaxResults    int           `yaml:"max_results"`
		RatePerSecond float64       `yaml:"rate_per_second"`
		Timeout       time.Duration `yaml:"timeout"`
	} `yaml:"search"`
	Schedule struct {
		DigestCron  string `yaml:"digest_cron"`
		RedLineCron string `yaml:"redline_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Paths are the store files under DataDir.
type Paths struct {
	Evidence  string
	Panel     string
	Forecasts string
	ACH       string
	Alerts    string
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("GEOSENTINEL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DIGEST"); v != "" {
		cfg.Schedule.DigestCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SOURCES_FILE"); v != "" {
		cfg.SourcesFile = v
	}

	// Defaults
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.SourcesFile == "" {
		cfg.SourcesFile = filepath.Join(cfg.DataDir, "source_whitelist.json")
	}
	if cfg.Search.Region == "" {
		cfg.Search.Region = "jp-jp"
	}
	if cfg.Search.SafeSearch == "" {
		cfg.Search.SafeSearch = "moderate"
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.Search.RatePerSecond == 0 {
		cfg.Search.RatePerSecond = 1
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 30 * time.Second
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 0 8 * * 1"
	}
	if cfg.Schedule.RedLineCron == "" {
		cfg.Schedule.RedLineCron = "0 0 */6 * * *"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	return cfg, nil
}

// Paths derives the store file locations from DataDir.
func (c *Config) Paths() Paths {
	return Paths{
		Evidence:  filepath.Join(c.DataDir, "evidence_log.jsonl"),
		Panel:     filepath.Join(c.DataDir, "indicator_panel.json"),
		Forecasts: filepath.Join(c.DataDir, "forecast_ledger.json"),
		ACH:       filepath.Join(c.DataDir, "ach_table.json"),
		Alerts:    filepath.Join(c.DataDir, "alert_state.json"),
	}
}

// Validate checks the fields every command depends on.
func (c *Config) Validate() error {
	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must not be negative")
	}
	if c.Search.RatePerSecond < 0 {
		return fmt.Errorf("search.rate_per_second must not be negative")
	}
	switch c.Search.SafeSearch {
	case "strict", "moderate", "off":
	default:
		return fmt.Errorf("search.safesearch must be strict, moderate or off, got %q", c.Search.SafeSearch)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// ValidateNotifier checks the fields the daemon needs to reach Telegram.
func (c *Config) ValidateNotifier() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}
