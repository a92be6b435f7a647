package panel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"GeoSentinel/internal/model"
)

// CSVHeader is the fixed column order of the panel export.
var CSVHeader = []string{
	"dimension",
	"indicator",
	"latest_value",
	"direction",
	"date",
	"source_url",
	"confidence",
	"weight",
	"color",
	"analyst_note",
}

// Row is one indicator flattened for display or export.
type Row struct {
	Dimension   string
	Indicator   string
	LatestValue string
	Direction   string
	Date        string
	SourceURL   string
	Confidence  string
	Weight      int
	Color       string
	AnalystNote string
}

// Strings returns the row in CSVHeader order.
func (r Row) Strings() []string {
	return []string{
		r.Dimension,
		r.Indicator,
		r.LatestValue,
		r.Direction,
		r.Date,
		r.SourceURL,
		r.Confidence,
		strconv.Itoa(r.Weight),
		r.Color,
		r.AnalystNote,
	}
}

func toRow(rec model.IndicatorRecord) Row {
	row := Row{
		Dimension:   string(rec.Dimension),
		Indicator:   rec.Indicator,
		LatestValue: rec.LatestValue,
		Direction:   rec.Direction,
		SourceURL:   rec.SourceURL,
		Confidence:  rec.Confidence,
		Weight:      rec.Weight,
		Color:       string(rec.Color),
		AnalystNote: rec.AnalystNote,
	}
	if rec.Date != nil {
		row.Date = rec.Date.UTC().Format(time.RFC3339)
	}
	return row
}

// Rows returns one row per indicator, whether or not it was ever updated.
func (p *Panel) Rows() []Row {
	records := p.Records()
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, toRow(rec))
	}
	return rows
}

// ExportCSV writes the panel to path, creating parent directories, and returns the path.
func (p *Panel) ExportCSV(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range p.Rows() {
		if err := w.Write(row.Strings()); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush export: %w", err)
	}
	p.logger.Info().Str("path", path).Int("rows", len(p.order)).Msg("panel exported")
	return path, nil
}
