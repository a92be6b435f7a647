package agent

import (
	"fmt"

	"GeoSentinel/internal/ach"
	"GeoSentinel/internal/alert"
	"GeoSentinel/internal/catalog"
	"GeoSentinel/internal/collector"
	"GeoSentinel/internal/config"
	"GeoSentinel/internal/forecast"
	"GeoSentinel/internal/logging"
	"GeoSentinel/internal/notifier"
	"GeoSentinel/internal/panel"
	"GeoSentinel/internal/recorder"
	"GeoSentinel/internal/sources"
	"GeoSentinel/internal/storage"
)

// StoreLoader returns a Loader reading the JSON stores at paths.
func StoreLoader(paths config.Paths, cat *catalog.Catalog) Loader {
	return func() (Pipelines, error) {
		evidence, err := storage.NewEvidenceLog(paths.Evidence)
		if err != nil {
			return Pipelines{}, err
		}
		panelStore, err := storage.NewPanelStore(paths.Panel)
		if err != nil {
			return Pipelines{}, err
		}
		achStore, err := storage.NewACHStore(paths.ACH, cat.ACH.Question, cat.ACH.Hypotheses)
		if err != nil {
			return Pipelines{}, err
		}
		forecastStore, err := storage.NewForecastStore(paths.Forecasts)
		if err != nil {
			return Pipelines{}, err
		}
		alertStore, err := storage.NewAlertStore(paths.Alerts)
		if err != nil {
			return Pipelines{}, err
		}

		var p Pipelines
		if p.Panel, err = panel.New(cat.Indicators, panelStore, evidence); err != nil {
			return Pipelines{}, err
		}
		if p.ACH, err = ach.NewLedger(achStore); err != nil {
			return Pipelines{}, err
		}
		if p.Forecasts, err = forecast.NewTracker(forecastStore); err != nil {
			return Pipelines{}, err
		}
		if p.Alerts, err = alert.NewMonitor(cat.Signals, alert.WithStore(alertStore)); err != nil {
			return Pipelines{}, err
		}
		return p, nil
	}
}

// Open wires an Agent from configuration: JSON stores, DuckDuckGo search,
// SQLite history when a path is set, and Telegram when credentials are set.
// A missing source whitelist is logged and leaves search ranking unfiltered.
func Open(cfg *config.Config) (*Agent, error) {
	logger := logging.New("agent")

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	list, err := sources.Load(cfg.SourcesFile)
	if err != nil {
		logger.Warn().Err(err).Msg("source whitelist unavailable")
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}

	var note notifier.Notifier = notifier.NoopNotifier{}
	if cfg.ValidateNotifier() == nil {
		note = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	a, err := New(Options{
		Loader:   StoreLoader(cfg.Paths(), cat),
		Searcher: NewSearcher(cfg),
		Recorder: rec,
		Notifier: note,
		Sources:  list,
	})
	if err != nil {
		rec.Close()
		return nil, fmt.Errorf("open agent: %w", err)
	}
	return a, nil
}

// NewSearcher builds the DuckDuckGo backend from the search settings.
func NewSearcher(cfg *config.Config) *collector.DuckDuckGoSearcher {
	return collector.NewDuckDuckGoSearcher(collector.DuckDuckGoOptions{
		Region:        cfg.Search.Region,
		SafeSearch:    cfg.Search.SafeSearch,
		MaxResults:    cfg.Search.MaxResults,
		RatePerSecond: cfg.Search.RatePerSecond,
		Timeout:       cfg.Search.Timeout,
		Proxy:         cfg.Proxy,
	})
}
