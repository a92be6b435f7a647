package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"GeoSentinel/internal/model"
)

// EvidenceLog is an append-only JSON-lines file of evidence records.
type EvidenceLog struct {
	path string
}

// NewEvidenceLog creates the log's directory and returns the store.
func NewEvidenceLog(path string) (*EvidenceLog, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &EvidenceLog{path: path}, nil
}

// Path returns the backing file.
func (s *EvidenceLog) Path() string { return s.path }

// Append writes one record as a single line.
func (s *EvidenceLog) Append(ev model.Evidence) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode evidence: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append %s: %w", s.path, err)
	}
	return nil
}

// Load replays every record in file order. A missing file yields an empty slice.
func (s *EvidenceLog) Load() ([]model.Evidence, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Evidence{}, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	records := []model.Evidence{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var ev model.Evidence
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("decode %s line %d: %w", s.path, line, err)
		}
		records = append(records, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.path, err)
	}
	return records, nil
}
