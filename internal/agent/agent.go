// Package agent is the single entry point the CLI and the daemon use to drive
// the indicator panel, ACH ledger, forecast tracker and alert monitor. Every
// method holds one lock, so the underlying pipelines see a single writer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"GeoSentinel/internal/ach"
	"GeoSentinel/internal/alert"
	"GeoSentinel/internal/calculator"
	"GeoSentinel/internal/collector"
	"GeoSentinel/internal/forecast"
	"GeoSentinel/internal/logging"
	"GeoSentinel/internal/model"
	"GeoSentinel/internal/notifier"
	"GeoSentinel/internal/panel"
	"GeoSentinel/internal/prompts"
	"GeoSentinel/internal/recorder"
	"GeoSentinel/internal/sources"
	"GeoSentinel/internal/strategy"
)

// ErrNoSearcher is returned by web operations when no search backend is configured.
var ErrNoSearcher = errors.New("no search backend configured")

const notifyRetries = 3

// Pipelines are the four stateful trackers.
type Pipelines struct {
	Panel     *panel.Panel
	ACH       *ach.Ledger
	Forecasts *forecast.Tracker
	Alerts    *alert.Monitor
}

// Loader builds the pipelines from their stores. Reload calls it again to pick
// up changes written by another process.
type Loader func() (Pipelines, error)

// Options wires an Agent. Loader is required; nil collaborators fall back to no-ops.
type Options struct {
	Loader   Loader
	Searcher collector.Searcher
	Recorder recorder.Recorder
	Notifier notifier.Notifier
	Prompts  *prompts.Catalog
	Sources  []sources.Source
	Now      func() time.Time
}

// Agent composes the trackers with search, history, notification and prompts.
type Agent struct {
	mu       sync.Mutex
	p        Pipelines
	load     Loader
	searcher collector.Searcher
	recorder recorder.Recorder
	notifier notifier.Notifier
	prompts  *prompts.Catalog
	hosts    map[string]struct{}
	lastRed  bool
	now      func() time.Time
	logger   zerolog.Logger
}

// New loads the pipelines and returns a ready Agent.
func New(opts Options) (*Agent, error) {
	if opts.Loader == nil {
		return nil, fmt.Errorf("agent: loader is required: %w", model.ErrInvalid)
	}
	a := &Agent{
		load:     opts.Loader,
		searcher: opts.Searcher,
		recorder: opts.Recorder,
		notifier: opts.Notifier,
		prompts:  opts.Prompts,
		now:      opts.Now,
		logger:   logging.New("agent"),
	}
	if a.recorder == nil {
		a.recorder = recorder.NewNoopRecorder()
	}
	if a.notifier == nil {
		a.notifier = notifier.NoopNotifier{}
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.prompts == nil {
		cat, err := prompts.Default()
		if err != nil {
			return nil, err
		}
		a.prompts = cat
	}
	a.setSources(opts.Sources)

	p, err := a.load()
	if err != nil {
		return nil, err
	}
	a.p = p
	a.lastRed = p.Alerts.IsRed()
	return a, nil
}

// Reload rebuilds the pipelines from their stores.
func (a *Agent) Reload() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reload()
}

func (a *Agent) reload() error {
	p, err := a.load()
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	a.p = p
	return nil
}

// SetSources replaces the whitelist used to rank search hits.
func (a *Agent) SetSources(list []sources.Source) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setSources(list)
}

func (a *Agent) setSources(list []sources.Source) {
	a.hosts = make(map[string]struct{}, len(list))
	for _, s := range list {
		if u, err := url.Parse(s.URL); err == nil && u.Host != "" {
			a.hosts[u.Host] = struct{}{}
		}
	}
}

// Close releases the history recorder.
func (a *Agent) Close() error {
	return a.recorder.Close()
}

// searchEvidence returns the best hit for query: the first whitelisted one,
// else the first one. ok is false when the search found nothing usable.
func (a *Agent) searchEvidence(ctx context.Context, query, quality string) (model.Evidence, bool, error) {
	if a.searcher == nil {
		return model.Evidence{}, false, ErrNoSearcher
	}
	list, err := collector.SearchAsEvidence(ctx, a.searcher, query, quality)
	if err != nil {
		return model.Evidence{}, false, err
	}
	if len(list) == 0 {
		return model.Evidence{}, false, nil
	}
	for _, ev := range list {
		if u, err := url.Parse(ev.URL); err == nil {
			if _, ok := a.hosts[u.Host]; ok {
				return ev, true, nil
			}
		}
	}
	a.logger.Debug().Str("query", query).Str("url", list[0].URL).Msg("no whitelisted hit, using first result")
	return list[0], true, nil
}

// CollectIndicatorFromWeb searches query, attaches the best hit as evidence and
// source URL, then updates the indicator. With no hit the update proceeds
// without evidence and keeps u.SourceURL.
func (a *Agent) CollectIndicatorFromWeb(ctx context.Context, key, query string, u model.IndicatorUpdate) (model.IndicatorRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ev, ok, err := a.searchEvidence(ctx, query, "")
	if err != nil {
		return model.IndicatorRecord{}, err
	}
	if ok {
		u.Evidence = &ev
		u.SourceURL = ev.URL
	}
	return a.updateIndicator(key, u)
}

// UpdateIndicator overwrites an indicator reading.
func (a *Agent) UpdateIndicator(key string, u model.IndicatorUpdate) (model.IndicatorRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.updateIndicator(key, u)
}

func (a *Agent) updateIndicator(key string, u model.IndicatorUpdate) (model.IndicatorRecord, error) {
	rec, err := a.p.Panel.Update(key, u)
	if err != nil {
		return rec, err
	}
	if err := a.recorder.RecordIndicator(rec); err != nil {
		a.logger.Error().Err(err).Msg("record indicator")
	}
	return rec, nil
}

// PanelRecords returns every indicator record.
func (a *Agent) PanelRecords() []model.IndicatorRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.p.Panel.Records()
}

// PanelRows returns the tabular view of the panel.
func (a *Agent) PanelRows() []panel.Row {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.p.Panel.Rows()
}

// ExportPanelCSV writes the panel to path and returns the written path.
func (a *Agent) ExportPanelCSV(path string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.p.Panel.ExportCSV(path)
}

// Assess scores the current panel.
func (a *Agent) Assess() *model.RiskAssessment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return strategy.Evaluate(a.p.Panel.Records())
}

// AddEvidenceFromWeb searches query and files the best hit under hypothesis.
// It returns nil evidence when nothing was found.
func (a *Agent) AddEvidenceFromWeb(ctx context.Context, hypothesis, query string, supports bool) (*model.Evidence, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ev, ok, err := a.searchEvidence(ctx, query, "")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if _, err := a.addEvidence(hypothesis, ev, supports); err != nil {
		return nil, err
	}
	return &ev, nil
}

// AddEvidence files ev under hypothesis. added is false for a duplicate.
func (a *Agent) AddEvidence(hypothesis string, ev model.Evidence, supports bool) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addEvidence(hypothesis, ev, supports)
}

func (a *Agent) addEvidence(hypothesis string, ev model.Evidence, supports bool) (bool, error) {
	if supports {
		return a.p.ACH.AddSupport(hypothesis, ev)
	}
	return a.p.ACH.AddRefute(hypothesis, ev)
}

// SetGaps replaces the key gaps of hypothesis.
func (a *Agent) SetGaps(hypothesis string, gaps []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.p.ACH.SetGaps(hypothesis, gaps)
}

// SetNextCollection replaces the collection tasks of hypothesis.
func (a *Agent) SetNextCollection(hypothesis string, tasks []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.p.ACH.SetNextCollection(hypothesis, tasks)
}

// ACHTable returns a copy of the hypothesis table.
func (a *Agent) ACHTable() model.ACHTable {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.p.ACH.Table()
}

// AddForecast appends a forecast to the ledger.
func (a *Agent) AddForecast(ev model.ForecastEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	stored, err := a.p.Forecasts.Add(ev)
	if err != nil {
		return err
	}
	if err := a.recorder.RecordForecast(stored, recorder.ForecastAdded); err != nil {
		a.logger.Error().Err(err).Msg("record forecast")
	}
	return nil
}

// FinalizeForecast records the outcome of the named forecast.
func (a *Agent) FinalizeForecast(name string, outcome int) (model.ForecastEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ev, err := a.p.Forecasts.Finalize(name, outcome)
	if err != nil {
		return ev, err
	}
	if err := a.recorder.RecordForecast(ev, recorder.ForecastFinalized); err != nil {
		a.logger.Error().Err(err).Msg("record forecast")
	}
	return ev, nil
}

// Forecasts returns every ledger entry.
func (a *Agent) Forecasts() []model.ForecastEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.p.Forecasts.Events()
}

// ForecastRows returns the tabular view of the ledger.
func (a *Agent) ForecastRows() []forecast.Row {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.p.Forecasts.Rows()
}

// PendingForecasts returns unresolved forecasts not yet due.
func (a *Agent) PendingForecasts() []model.ForecastEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Collect(a.p.Forecasts.Pending())
}

// OverdueForecasts returns unresolved forecasts past their due date.
func (a *Agent) OverdueForecasts() []model.ForecastEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Collect(a.p.Forecasts.Overdue())
}

// AggregateBrier returns the mean Brier score; ok is false with no resolved forecast.
func (a *Agent) AggregateBrier() (float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.p.Forecasts.AggregateBrier()
}

// Reliability buckets resolved forecasts into n probability bands.
func (a *Agent) Reliability(n int) ([]calculator.Bucket, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.p.Forecasts.Reliability(n)
}

// SetAlertState flips a signal without attaching evidence.
func (a *Agent) SetAlertState(ctx context.Context, key string, active bool, notes string) (model.SignalStatus, error) {
	return a.UpdateAlert(ctx, key, active, nil, notes)
}

// UpdateAlert updates a signal, records it and notifies when the red line flips.
func (a *Agent) UpdateAlert(ctx context.Context, key string, active bool, evidence []model.Evidence, notes string) (model.SignalStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, err := a.p.Alerts.Update(key, active, evidence, notes)
	if err != nil {
		return st, err
	}
	if err := a.recorder.RecordAlert(st); err != nil {
		a.logger.Error().Err(err).Msg("record alert")
	}
	a.observeRedLine(ctx, key)
	return st, nil
}

// CheckRedLine reloads state written elsewhere and notifies on a red-line flip.
// It reports the current state and whether it changed since the last check.
func (a *Agent) CheckRedLine(ctx context.Context) (red, changed bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.reload(); err != nil {
		return a.lastRed, false, err
	}
	changed = a.observeRedLine(ctx, "")
	return a.lastRed, changed, nil
}

func (a *Agent) observeRedLine(ctx context.Context, trigger string) bool {
	red := a.p.Alerts.IsRed()
	if red == a.lastRed {
		return false
	}
	a.lastRed = red

	summary := a.p.Alerts.Summary()
	active := 0
	for _, s := range summary {
		if s.Active {
			active++
		}
	}
	if err := a.recorder.RecordRedLine(&recorder.RedLineEvent{Red: red, Trigger: trigger, ActiveSignals: active}); err != nil {
		a.logger.Error().Err(err).Msg("record red line")
	}
	if err := a.notifier.SendWithRetry(ctx, notifier.FormatRedLine(red, trigger, summary), notifyRetries); err != nil {
		a.logger.Error().Err(err).Msg("send red-line notification")
	}
	return true
}

// RedAlert reports whether every entrapment signal is active.
func (a *Agent) RedAlert() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.p.Alerts.IsRed()
}

// AlertSummary returns one row per defined signal.
func (a *Agent) AlertSummary() []model.SignalSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.p.Alerts.Summary()
}

// Prompts returns the prompt catalog.
func (a *Agent) Prompts() []prompts.Template {
	return a.prompts.List()
}

// PromptMessages renders the system and user prompts for key.
func (a *Agent) PromptMessages(key string, urls []string) (prompts.Messages, error) {
	return a.prompts.Messages(key, urls)
}

// Digest summarizes the panel score, forecast ledger and signal board.
func (a *Agent) Digest() *model.Digest {
	a.mu.Lock()
	defer a.mu.Unlock()

	d := &model.Digest{
		GeneratedAt: a.now(),
		Assessment:  strategy.Evaluate(a.p.Panel.Records()),
		Pending:     slices.Collect(a.p.Forecasts.Pending()),
		Overdue:     slices.Collect(a.p.Forecasts.Overdue()),
		Alerts:      a.p.Alerts.Summary(),
		Red:         a.p.Alerts.IsRed(),
	}
	d.Brier, d.BrierOK = a.p.Forecasts.AggregateBrier()
	if err := a.recorder.RecordAssessment(d.Assessment); err != nil {
		a.logger.Error().Err(err).Msg("record assessment")
	}
	return d
}

// SendDigest reloads state, builds the digest and pushes it to the notifier.
func (a *Agent) SendDigest(ctx context.Context) (*model.Digest, error) {
	if err := a.Reload(); err != nil {
		return nil, err
	}
	d := a.Digest()
	if err := a.notifier.SendWithRetry(ctx, notifier.FormatDigest(d), notifyRetries); err != nil {
		return d, fmt.Errorf("send digest: %w", err)
	}
	return d, nil
}
