package recorder

import "GeoSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordIndicator(_ model.IndicatorRecord) error                { return nil }
func (n *NoopRecorder) RecordForecast(_ model.ForecastEvent, _ ForecastAction) error { return nil }
func (n *NoopRecorder) RecordAlert(_ model.SignalStatus) error                       { return nil }
func (n *NoopRecorder) RecordRedLine(_ *RedLineEvent) error                          { return nil }
func (n *NoopRecorder) RecordAssessment(_ *model.RiskAssessment) error               { return nil }
func (n *NoopRecorder) Close() error                                                 { return nil }
