package storage

import "GeoSentinel/internal/model"

// PanelStore holds the indicator panel as a JSON array.
type PanelStore struct {
	path string
}

func NewPanelStore(path string) (*PanelStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &PanelStore{path: path}, nil
}

func (s *PanelStore) Path() string { return s.path }

// Load returns the persisted records, or none if the file does not exist.
func (s *PanelStore) Load() ([]model.IndicatorRecord, error) {
	records := []model.IndicatorRecord{}
	if _, err := readJSON(s.path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Save overwrites the file with records.
func (s *PanelStore) Save(records []model.IndicatorRecord) error {
	if records == nil {
		records = []model.IndicatorRecord{}
	}
	return writeJSON(s.path, records)
}
