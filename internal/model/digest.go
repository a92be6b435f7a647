package model

import "time"

// Digest is the periodic summary pushed to analysts.
type Digest struct {
	GeneratedAt time.Time
	Assessment  *RiskAssessment
	Pending     []ForecastEvent
	Overdue     []ForecastEvent
	Brier       float64
	BrierOK     bool
	Alerts      []SignalSummary
	Red         bool
}
