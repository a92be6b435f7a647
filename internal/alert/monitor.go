// Package alert tracks the entrapment signals and derives the red-line condition.
package alert

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"GeoSentinel/internal/logging"
	"GeoSentinel/internal/model"
)

// Store persists signal statuses. A Monitor without a store keeps state in memory only.
type Store interface {
	Load() ([]model.SignalStatus, error)
	Save(statuses []model.SignalStatus) error
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithClock overrides the last-checked timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithStore persists statuses after every update.
func WithStore(store Store) Option {
	return func(m *Monitor) { m.store = store }
}

// Monitor holds one status per defined signal.
type Monitor struct {
	definitions []model.SignalDefinition
	status      map[string]*model.SignalStatus
	orphans     []model.SignalStatus
	store       Store
	now         func() time.Time
	logger      zerolog.Logger
}

// NewMonitor creates a status for each definition, then overlays any persisted statuses.
// The definition set must not be empty.
func NewMonitor(definitions []model.SignalDefinition, opts ...Option) (*Monitor, error) {
	if len(definitions) == 0 {
		return nil, fmt.Errorf("alert monitor needs at least one signal definition: %w", model.ErrInvalid)
	}
	m := &Monitor{
		definitions: append([]model.SignalDefinition{}, definitions...),
		status:      make(map[string]*model.SignalStatus, len(definitions)),
		now:         time.Now,
		logger:      logging.New("alert"),
	}
	for _, opt := range opts {
		opt(m)
	}

	created := m.now().UTC()
	for _, d := range m.definitions {
		m.status[d.Key] = &model.SignalStatus{Key: d.Key, Evidence: []model.Evidence{}, LastChecked: created}
	}

	if m.store != nil {
		persisted, err := m.store.Load()
		if err != nil {
			return nil, fmt.Errorf("load alert state: %w", err)
		}
		for i := range persisted {
			st := persisted[i]
			if _, ok := m.status[st.Key]; !ok {
				m.logger.Warn().Str("key", st.Key).Msg("persisted signal has no definition, ignoring for red-line")
				m.orphans = append(m.orphans, st)
				continue
			}
			if st.Evidence == nil {
				st.Evidence = []model.Evidence{}
			}
			m.status[st.Key] = &st
		}
	}
	return m, nil
}

// Update sets the active flag and notes of signal key, stamps the check time and
// extends its evidence. Evidence whose fingerprint is already attached is skipped.
func (m *Monitor) Update(key string, active bool, evidence []model.Evidence, notes string) (model.SignalStatus, error) {
	st, ok := m.status[key]
	if !ok {
		return model.SignalStatus{}, fmt.Errorf("unknown signal %q: %w", key, model.ErrNotFound)
	}
	wasRed := m.IsRed()

	st.Active = active
	st.LastChecked = m.now().UTC()
	st.Notes = notes
	for _, ev := range evidence {
		if model.ContainsEvidence(st.Evidence, ev) {
			continue
		}
		st.Evidence = append(st.Evidence, ev)
	}

	if m.store != nil {
		if err := m.store.Save(m.snapshot()); err != nil {
			return *st, fmt.Errorf("save alert state: %w", err)
		}
	}

	m.logger.Info().Str("key", key).Bool("active", active).Int("evidence", len(st.Evidence)).Msg("signal updated")
	if red := m.IsRed(); red != wasRed {
		m.logger.Warn().Bool("red", red).Str("trigger", key).Msg("red-line state changed")
	}
	return *st, nil
}

// IsRed reports whether every defined signal is currently active.
func (m *Monitor) IsRed() bool {
	for _, d := range m.definitions {
		if !m.status[d.Key].Active {
			return false
		}
	}
	return true
}

// Status returns the current status of key.
func (m *Monitor) Status(key string) (model.SignalStatus, bool) {
	st, ok := m.status[key]
	if !ok {
		return model.SignalStatus{}, false
	}
	return *st, true
}

// Definitions returns the signal definitions in their configured order.
func (m *Monitor) Definitions() []model.SignalDefinition {
	return append([]model.SignalDefinition{}, m.definitions...)
}

// Summary returns one row per definition, in definition order.
func (m *Monitor) Summary() []model.SignalSummary {
	rows := make([]model.SignalSummary, 0, len(m.definitions))
	for _, d := range m.definitions {
		st := m.status[d.Key]
		rows = append(rows, model.SignalSummary{
			Key:           d.Key,
			Description:   d.Description,
			Active:        st.Active,
			EvidenceCount: len(st.Evidence),
			LastChecked:   st.LastChecked,
			Notes:         st.Notes,
		})
	}
	return rows
}

func (m *Monitor) snapshot() []model.SignalStatus {
	out := make([]model.SignalStatus, 0, len(m.definitions)+len(m.orphans))
	for _, d := range m.definitions {
		out = append(out, *m.status[d.Key])
	}
	return append(out, m.orphans...)
}
