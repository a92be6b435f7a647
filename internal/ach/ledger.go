// Package ach maintains the analysis-of-competing-hypotheses table.
package ach

import (
	"fmt"

	"github.com/rs/zerolog"

	"GeoSentinel/internal/logging"
	"GeoSentinel/internal/model"
)

// Store persists the whole table.
type Store interface {
	Load() (model.ACHTable, error)
	Save(table model.ACHTable) error
}

// Ledger owns the ACH table. Hypotheses are fixed when the table is bootstrapped;
// evidence only accumulates.
type Ledger struct {
	table  model.ACHTable
	store  Store
	logger zerolog.Logger
}

// NewLedger loads the table from store.
func NewLedger(store Store) (*Ledger, error) {
	table, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load ach table: %w", err)
	}
	for i := range table.Entries {
		table.Entries[i].Recompute()
	}
	l := &Ledger{table: table, store: store, logger: logging.New("ach")}
	l.logger.Debug().Int("hypotheses", len(table.Entries)).Msg("ach table loaded")
	return l, nil
}

// Table returns a deep copy of the current table.
func (l *Ledger) Table() model.ACHTable {
	out := model.ACHTable{Question: l.table.Question, Entries: make([]model.ACHEntry, len(l.table.Entries))}
	for i, e := range l.table.Entries {
		e.Supports = append([]model.Evidence{}, e.Supports...)
		e.Refutes = append([]model.Evidence{}, e.Refutes...)
		e.KeyGaps = append([]string{}, e.KeyGaps...)
		e.NextCollection = append([]string{}, e.NextCollection...)
		out.Entries[i] = e
	}
	return out
}

// Entry returns a copy of the entry for hypothesis.
func (l *Ledger) Entry(hypothesis string) (model.ACHEntry, error) {
	e, err := l.entry(hypothesis)
	if err != nil {
		return model.ACHEntry{}, err
	}
	return *e, nil
}

func (l *Ledger) entry(hypothesis string) (*model.ACHEntry, error) {
	for i := range l.table.Entries {
		if l.table.Entries[i].Hypothesis == hypothesis {
			return &l.table.Entries[i], nil
		}
	}
	return nil, fmt.Errorf("unknown hypothesis %q: %w", hypothesis, model.ErrNotFound)
}

// AddSupport records evidence supporting hypothesis. It reports false, without
// saving, when the same fingerprint is already listed as support.
func (l *Ledger) AddSupport(hypothesis string, ev model.Evidence) (bool, error) {
	return l.add(hypothesis, ev, true)
}

// AddRefute records evidence refuting hypothesis. It reports false, without
// saving, when the same fingerprint is already listed as refuting.
func (l *Ledger) AddRefute(hypothesis string, ev model.Evidence) (bool, error) {
	return l.add(hypothesis, ev, false)
}

func (l *Ledger) add(hypothesis string, ev model.Evidence, supports bool) (bool, error) {
	e, err := l.entry(hypothesis)
	if err != nil {
		return false, err
	}
	list := &e.Refutes
	kind := "refute"
	if supports {
		list = &e.Supports
		kind = "support"
	}
	if model.ContainsEvidence(*list, ev) {
		l.logger.Debug().Str("hypothesis", hypothesis).Str("hash", ev.Key()).Msg("duplicate evidence skipped")
		return false, nil
	}
	*list = append(*list, ev)
	e.Recompute()
	if err := l.save(); err != nil {
		return true, err
	}
	l.logger.Info().Str("hypothesis", hypothesis).Str("kind", kind).Int("net", e.NetAssessment).Msg("evidence added")
	return true, nil
}

// SetGaps replaces the analytical gaps of hypothesis.
func (l *Ledger) SetGaps(hypothesis string, gaps []string) error {
	e, err := l.entry(hypothesis)
	if err != nil {
		return err
	}
	e.KeyGaps = append([]string{}, gaps...)
	return l.save()
}

// SetNextCollection replaces the collection tasks of hypothesis.
func (l *Ledger) SetNextCollection(hypothesis string, tasks []string) error {
	e, err := l.entry(hypothesis)
	if err != nil {
		return err
	}
	e.NextCollection = append([]string{}, tasks...)
	return l.save()
}

func (l *Ledger) save() error {
	if err := l.store.Save(l.table); err != nil {
		return fmt.Errorf("save ach table: %w", err)
	}
	return nil
}
