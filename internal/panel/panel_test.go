package panel

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GeoSentinel/internal/model"
	"GeoSentinel/internal/storage"
)

var fixedNow = time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

var testTemplates = []model.IndicatorTemplate{
	{Key: "institution_article9", Dimension: model.DimensionInstitution, Indicator: "Article 9", DefaultWeight: 4},
	{Key: "capability_joint_hq", Dimension: model.DimensionCapability, Indicator: "Joint HQ"},
	{Key: "funds_gpif_principles", Dimension: model.DimensionFunds, Indicator: "GPIF"},
}

type fixture struct {
	dir      string
	store    *storage.PanelStore
	evidence *storage.EvidenceLog
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewPanelStore(filepath.Join(dir, "indicator_panel.json"))
	require.NoError(t, err)
	ev, err := storage.NewEvidenceLog(filepath.Join(dir, "evidence_log.jsonl"))
	require.NoError(t, err)
	return fixture{dir: dir, store: store, evidence: ev}
}

func (f fixture) open(t *testing.T) *Panel {
	t.Helper()
	p, err := New(testTemplates, f.store, f.evidence, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return p
}

func TestNew_DefaultsFromTemplates(t *testing.T) {
	p := newFixture(t).open(t)

	records := p.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "institution_article9", records[0].TemplateKey)
	assert.Equal(t, 4, records[0].Weight)
	assert.Equal(t, 3, records[1].Weight)
	for _, rec := range records {
		assert.Equal(t, model.StatusYellow, rec.Color)
		assert.Nil(t, rec.Date)
	}
}

func TestNew_OverlaysPersistedRecords(t *testing.T) {
	f := newFixture(t)
	persisted := testTemplates[1].Record()
	persisted.LatestValue = "staffed at 240"
	persisted.Color = model.StatusRed
	orphan := model.IndicatorRecord{TemplateKey: "retired_key", Dimension: model.DimensionFunds, Indicator: "Old", Weight: 1, Color: model.StatusGreen}
	require.NoError(t, f.store.Save([]model.IndicatorRecord{persisted, orphan}))

	p := f.open(t)
	rec, ok := p.Record("capability_joint_hq")
	require.True(t, ok)
	assert.Equal(t, "staffed at 240", rec.LatestValue)
	assert.Equal(t, model.StatusRed, rec.Color)

	records := p.Records()
	require.Len(t, records, 4)
	assert.Equal(t, "retired_key", records[3].TemplateKey)
	assert.Len(t, p.Templates(), 3)

	_, err := p.Update("retired_key", model.IndicatorUpdate{Color: model.StatusRed})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdate_PersistsAndLogsEvidence(t *testing.T) {
	f := newFixture(t)
	p := f.open(t)

	ev := model.NewEvidence("NSS text", "cas", "pre-emption", "https://www.cas.go.jp/nss.pdf", model.QualityHigh, nil, fixedNow)
	rec, err := p.Update("institution_article9", model.IndicatorUpdate{
		LatestValue: "definition widened",
		Direction:   "up",
		SourceURL:   ev.URL,
		Color:       model.StatusRed,
		Confidence:  model.QualityHigh,
		AnalystNote: "watch cabinet",
		Evidence:    &ev,
	})
	require.NoError(t, err)
	require.NotNil(t, rec.Date)
	assert.True(t, rec.Date.Equal(fixedNow))
	assert.Equal(t, model.StatusRed, rec.Color)

	logged, err := f.evidence.Load()
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, ev.Hash, logged[0].Hash)

	reopened := f.open(t)
	got, ok := reopened.Record("institution_article9")
	require.True(t, ok)
	assert.Equal(t, "definition widened", got.LatestValue)
	assert.Equal(t, "watch cabinet", got.AnalystNote)
	assert.True(t, got.Date.Equal(fixedNow))
}

func TestUpdate_DefaultsConfidence(t *testing.T) {
	p := newFixture(t).open(t)
	rec, err := p.Update("funds_gpif_principles", model.IndicatorUpdate{LatestValue: "no change", Color: model.StatusGreen})
	require.NoError(t, err)
	assert.Equal(t, model.QualityMedium, rec.Confidence)
}

func TestUpdate_RejectionLeavesFilesUntouched(t *testing.T) {
	f := newFixture(t)
	p := f.open(t)
	_, err := p.Update("capability_joint_hq", model.IndicatorUpdate{LatestValue: "v1", Color: model.StatusGreen})
	require.NoError(t, err)

	before, err := os.ReadFile(f.store.Path())
	require.NoError(t, err)

	ev := model.NewEvidence("t", "s", "q", "https://x", "", nil, fixedNow)
	_, err = p.Update("nonexistent_key", model.IndicatorUpdate{Color: model.StatusRed, Evidence: &ev})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
	assert.Contains(t, err.Error(), "nonexistent_key")

	_, err = p.Update("capability_joint_hq", model.IndicatorUpdate{Color: "amber", Evidence: &ev})
	assert.ErrorIs(t, err, model.ErrInvalid)

	after, err := os.ReadFile(f.store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, err = os.Stat(f.evidence.Path())
	assert.True(t, os.IsNotExist(err), "evidence log must not be created by rejected updates")
}

func TestNew_MalformedPanelFails(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.store.Path(), []byte("[{]"), 0o644))
	_, err := New(testTemplates, f.store, f.evidence)
	assert.Error(t, err)
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	p := f.open(t)
	_, err := p.Update("capability_joint_hq", model.IndicatorUpdate{
		LatestValue: "IOC", Direction: "up", SourceURL: "https://www.mod.go.jp/", Color: model.StatusRed, AnalystNote: "a, b",
	})
	require.NoError(t, err)

	out := filepath.Join(f.dir, "exports", "deep", "panel.csv")
	path, err := p.ExportCSV(out)
	require.NoError(t, err)
	assert.Equal(t, out, path)

	fh, err := os.Open(out)
	require.NoError(t, err)
	defer fh.Close()
	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"institution", "Article 9", "", "", "", "", "M", "4", "yellow", ""}, rows[1])
	assert.Equal(t, []string{"capability", "Joint HQ", "IOC", "up", "2025-09-01T08:00:00Z", "https://www.mod.go.jp/", "M", "3", "red", "a, b"}, rows[2])
}
