// Package forecast keeps the ledger of dated probability forecasts and scores
// them once outcomes are known.
package forecast

import (
	"fmt"
	"iter"
	"time"

	"github.com/rs/zerolog"

	"GeoSentinel/internal/calculator"
	"GeoSentinel/internal/logging"
	"GeoSentinel/internal/model"
)

// Store persists the whole ledger.
type Store interface {
	Load() ([]model.ForecastEvent, error)
	Save(events []model.ForecastEvent) error
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock overrides the source of "today" used by Pending.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// Tracker owns the forecast ledger.
type Tracker struct {
	events []model.ForecastEvent
	store  Store
	now    func() time.Time
	logger zerolog.Logger
}

// NewTracker loads the ledger from store.
func NewTracker(store Store, opts ...Option) (*Tracker, error) {
	events, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load forecast ledger: %w", err)
	}
	t := &Tracker{events: events, store: store, now: time.Now, logger: logging.New("forecast")}
	for _, opt := range opts {
		opt(t)
	}
	t.logger.Debug().Int("events", len(events)).Msg("forecast ledger loaded")
	return t, nil
}

// Add appends a forecast, saves the ledger and returns the stored event with its
// Brier score set when an outcome was given. Event names are not required to be
// unique. A failed save leaves the ledger as it was.
func (t *Tracker) Add(ev model.ForecastEvent) (model.ForecastEvent, error) {
	if err := ev.Validate(); err != nil {
		return model.ForecastEvent{}, err
	}
	if ev.Outcome != nil {
		b := calculator.Brier(ev.Probability, *ev.Outcome)
		ev.Brier = &b
	} else {
		ev.Brier = nil
	}
	t.events = append(t.events, ev)
	if err := t.save(); err != nil {
		t.events = t.events[:len(t.events)-1]
		return model.ForecastEvent{}, err
	}
	t.logger.Info().Str("event", ev.Event).Float64("p", ev.Probability).Str("due", ev.DueDate.String()).Msg("forecast added")
	return ev, nil
}

// Finalize records outcome on the first event named name and stores its Brier score.
// Finalizing an already finalized event overwrites the earlier outcome. A failed
// save leaves the event unresolved.
func (t *Tracker) Finalize(name string, outcome int) (model.ForecastEvent, error) {
	if outcome != 0 && outcome != 1 {
		return model.ForecastEvent{}, fmt.Errorf("forecast %q outcome %d not in {0,1}: %w", name, outcome, model.ErrInvalid)
	}
	for i := range t.events {
		ev := &t.events[i]
		if ev.Event != name {
			continue
		}
		if ev.Finalized() {
			t.logger.Warn().Str("event", name).Int("previous", *ev.Outcome).Int("outcome", outcome).Msg("overwriting finalized forecast")
		}
		prev := *ev
		o := outcome
		b := calculator.Brier(ev.Probability, outcome)
		ev.Outcome = &o
		ev.Brier = &b
		if err := t.save(); err != nil {
			*ev = prev
			return model.ForecastEvent{}, err
		}
		t.logger.Info().Str("event", name).Int("outcome", outcome).Float64("brier", b).Msg("forecast finalized")
		return *ev, nil
	}
	return model.ForecastEvent{}, fmt.Errorf("unknown forecast event %q: %w", name, model.ErrNotFound)
}

// Pending yields unresolved events whose due date is today or later. The filter
// is evaluated against the clock each time the sequence is ranged over.
func (t *Tracker) Pending() iter.Seq[model.ForecastEvent] {
	return func(yield func(model.ForecastEvent) bool) {
		today := model.NewDate(t.now())
		for _, ev := range t.events {
			if ev.Finalized() || ev.DueDate.Before(today) {
				continue
			}
			if !yield(ev) {
				return
			}
		}
	}
}

// Overdue yields unresolved events whose due date has passed.
func (t *Tracker) Overdue() iter.Seq[model.ForecastEvent] {
	return func(yield func(model.ForecastEvent) bool) {
		today := model.NewDate(t.now())
		for _, ev := range t.events {
			if ev.Finalized() || !ev.DueDate.Before(today) {
				continue
			}
			if !yield(ev) {
				return
			}
		}
	}
}

// AggregateBrier returns the mean Brier score of finalized events. ok is false
// when nothing has been finalized.
func (t *Tracker) AggregateBrier() (score float64, ok bool) {
	var scored []float64
	for _, ev := range t.events {
		if ev.Brier != nil {
			scored = append(scored, *ev.Brier)
		}
	}
	mean, err := calculator.Mean(scored)
	if err != nil {
		return 0, false
	}
	return mean, true
}

// Reliability buckets finalized events into n probability bands.
func (t *Tracker) Reliability(n int) ([]calculator.Bucket, error) {
	var probs []float64
	var outcomes []int
	for _, ev := range t.events {
		if ev.Finalized() {
			probs = append(probs, ev.Probability)
			outcomes = append(outcomes, *ev.Outcome)
		}
	}
	return calculator.Reliability(probs, outcomes, n)
}

// Events returns a copy of the ledger in insertion order.
func (t *Tracker) Events() []model.ForecastEvent {
	return append([]model.ForecastEvent{}, t.events...)
}

func (t *Tracker) save() error {
	if err := t.store.Save(t.events); err != nil {
		return fmt.Errorf("save forecast ledger: %w", err)
	}
	return nil
}
