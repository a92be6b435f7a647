package storage

import "GeoSentinel/internal/model"

// ACHStore holds the ACH table as a JSON object.
type ACHStore struct {
	path       string
	question   string
	hypotheses []string
}

// NewACHStore returns a store that bootstraps from question and hypotheses when no file exists.
func NewACHStore(path, question string, hypotheses []string) (*ACHStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &ACHStore{path: path, question: question, hypotheses: hypotheses}, nil
}

func (s *ACHStore) Path() string { return s.path }

// Load returns the persisted table, or a freshly bootstrapped one if the file does not exist.
func (s *ACHStore) Load() (model.ACHTable, error) {
	var table model.ACHTable
	found, err := readJSON(s.path, &table)
	if err != nil {
		return model.ACHTable{}, err
	}
	if !found {
		return model.BootstrapACH(s.question, s.hypotheses), nil
	}
	return table, nil
}

// Save overwrites the file with table.
func (s *ACHStore) Save(table model.ACHTable) error {
	return writeJSON(s.path, table)
}
