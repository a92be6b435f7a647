package storage

import "GeoSentinel/internal/model"

// AlertStore holds entrapment signal statuses as a JSON array.
type AlertStore struct {
	path string
}

func NewAlertStore(path string) (*AlertStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &AlertStore{path: path}, nil
}

func (s *AlertStore) Path() string { return s.path }

// Load returns the persisted statuses, or none if the file does not exist.
func (s *AlertStore) Load() ([]model.SignalStatus, error) {
	statuses := []model.SignalStatus{}
	if _, err := readJSON(s.path, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// Save overwrites the file with statuses.
func (s *AlertStore) Save(statuses []model.SignalStatus) error {
	if statuses == nil {
		statuses = []model.SignalStatus{}
	}
	return writeJSON(s.path, statuses)
}
