package storage

import "GeoSentinel/internal/model"

// ForecastStore holds the forecast ledger as a JSON array.
type ForecastStore struct {
	path string
}

func NewForecastStore(path string) (*ForecastStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &ForecastStore{path: path}, nil
}

func (s *ForecastStore) Path() string { return s.path }

// Load returns the persisted events, or none if the file does not exist.
func (s *ForecastStore) Load() ([]model.ForecastEvent, error) {
	events := []model.ForecastEvent{}
	if _, err := readJSON(s.path, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Save overwrites the file with events.
func (s *ForecastStore) Save(events []model.ForecastEvent) error {
	if events == nil {
		events = []model.ForecastEvent{}
	}
	return writeJSON(s.path, events)
}
