package panel

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"GeoSentinel/internal/logging"
	"GeoSentinel/internal/model"
)

// Store persists the whole panel.
type Store interface {
	Load() ([]model.IndicatorRecord, error)
	Save(records []model.IndicatorRecord) error
}

// EvidenceLog receives evidence attached to indicator updates.
type EvidenceLog interface {
	Append(ev model.Evidence) error
}

// Option customizes a Panel.
type Option func(*Panel)

// WithClock overrides the update timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Panel) { p.now = now }
}

// Panel holds the current reading of every configured indicator.
type Panel struct {
	templates map[string]model.IndicatorTemplate
	records   map[string]*model.IndicatorRecord
	order     []string
	store     Store
	evidence  EvidenceLog
	now       func() time.Time
	logger    zerolog.Logger
}

// New builds default records from templates, then overlays persisted records by key.
// Persisted records with no matching template are carried along but cannot be updated.
func New(templates []model.IndicatorTemplate, store Store, evidence EvidenceLog, opts ...Option) (*Panel, error) {
	p := &Panel{
		templates: make(map[string]model.IndicatorTemplate, len(templates)),
		records:   make(map[string]*model.IndicatorRecord, len(templates)),
		store:     store,
		evidence:  evidence,
		now:       time.Now,
		logger:    logging.New("panel"),
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, t := range templates {
		rec := t.Record()
		p.templates[t.Key] = t
		p.records[t.Key] = &rec
		p.order = append(p.order, t.Key)
	}

	existing, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load panel: %w", err)
	}
	for i := range existing {
		rec := existing[i]
		if _, ok := p.records[rec.TemplateKey]; !ok {
			p.logger.Warn().Str("key", rec.TemplateKey).Msg("persisted indicator has no template, keeping read-only")
			p.order = append(p.order, rec.TemplateKey)
		}
		p.records[rec.TemplateKey] = &rec
	}
	p.logger.Debug().Int("records", len(p.order)).Int("persisted", len(existing)).Msg("panel loaded")
	return p, nil
}

// Update overwrites the mutable fields of the indicator key and saves the panel.
// Evidence, when given, is appended to the evidence log before the record changes.
func (p *Panel) Update(key string, u model.IndicatorUpdate) (model.IndicatorRecord, error) {
	if _, ok := p.templates[key]; !ok {
		return model.IndicatorRecord{}, fmt.Errorf("unknown indicator key %q: %w", key, model.ErrNotFound)
	}
	color, err := model.ParseStatus(string(u.Color))
	if err != nil {
		return model.IndicatorRecord{}, fmt.Errorf("indicator %q: %w", key, err)
	}
	confidence := u.Confidence
	if confidence == "" {
		confidence = model.QualityMedium
	}

	if u.Evidence != nil {
		if err := p.evidence.Append(*u.Evidence); err != nil {
			return model.IndicatorRecord{}, fmt.Errorf("append evidence: %w", err)
		}
	}

	rec := p.records[key]
	now := p.now().UTC()
	rec.LatestValue = u.LatestValue
	rec.Direction = u.Direction
	rec.SourceURL = u.SourceURL
	rec.Color = color
	rec.Confidence = confidence
	rec.AnalystNote = u.AnalystNote
	rec.Date = &now

	if err := p.store.Save(p.Records()); err != nil {
		return *rec, fmt.Errorf("save panel: %w", err)
	}
	p.logger.Info().Str("key", key).Str("color", string(color)).Msg("indicator updated")
	return *rec, nil
}

// Record returns the current record for key.
func (p *Panel) Record(key string) (model.IndicatorRecord, bool) {
	rec, ok := p.records[key]
	if !ok {
		return model.IndicatorRecord{}, false
	}
	return *rec, true
}

// Records returns a copy of every record, catalog order first.
func (p *Panel) Records() []model.IndicatorRecord {
	out := make([]model.IndicatorRecord, 0, len(p.order))
	for _, key := range p.order {
		out = append(out, *p.records[key])
	}
	return out
}

// Templates returns the configured templates in catalog order.
func (p *Panel) Templates() []model.IndicatorTemplate {
	out := make([]model.IndicatorTemplate, 0, len(p.templates))
	for _, key := range p.order {
		if t, ok := p.templates[key]; ok {
			out = append(out, t)
		}
	}
	return out
}
