package model

import "time"

// SignalStatus is the live state of one entrapment signal.
type SignalStatus struct {
	Key         string     `json:"key"`
	Active      bool       `json:"active"`
	Evidence    []Evidence `json:"evidence"`
	LastChecked time.Time  `json:"last_checked"`
	Notes       string     `json:"notes,omitempty"`
}

// SignalSummary joins a signal definition with its current status.
type SignalSummary struct {
	Key           string    `json:"key"`
	Description   string    `json:"description"`
	Active        bool      `json:"active"`
	EvidenceCount int       `json:"evidence_count"`
	LastChecked   time.Time `json:"last_checked"`
	Notes         string    `json:"notes,omitempty"`
}
