package recorder

import "GeoSentinel/internal/model"

// ForecastAction labels a forecast ledger change.
type ForecastAction string

const (
	ForecastAdded     ForecastAction = "ADDED"
	ForecastFinalized ForecastAction = "FINALIZED"
)

// RedLineEvent records a change of the overall red-line state.
type RedLineEvent struct {
	Red           bool
	Trigger       string // signal key whose update caused the change
	ActiveSignals int
}

// Recorder persists history for later analysis. Working state lives in the
// JSON stores; this is an append-only audit trail.
type Recorder interface {
	RecordIndicator(rec model.IndicatorRecord) error
	RecordForecast(ev model.ForecastEvent, action ForecastAction) error
	RecordAlert(st model.SignalStatus) error
	RecordRedLine(evt *RedLineEvent) error
	RecordAssessment(a *model.RiskAssessment) error
	Close() error
}
