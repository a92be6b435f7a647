package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"GeoSentinel/internal/logging"
	"GeoSentinel/internal/model"
)

// SQLiteRecorder persists history to a SQLite database. Each process gets a
// session id so rows from one CLI run or daemon lifetime can be grouped.
type SQLiteRecorder struct {
	db      *sql.DB
	mu      sync.Mutex
	session string
	logger  zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets readers query history while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, session: uuid.NewString(), logger: logging.New("recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Str("session", r.session).Msg("sqlite recorder opened")
	return r, nil
}

// Session returns the id stamped on every row written by this recorder.
func (r *SQLiteRecorder) Session() string { return r.session }

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS indicator_history (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			session_id   TEXT NOT NULL,
			template_key TEXT NOT NULL,
			dimension    TEXT,
			latest_value TEXT,
			direction    TEXT,
			color        TEXT,
			confidence   TEXT,
			weight       INTEGER,
			source_url   TEXT,
			analyst_note TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_indicator_key_ts ON indicator_history(template_key, timestamp)`,

		`CREATE TABLE IF NOT EXISTS forecast_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			session_id  TEXT NOT NULL,
			action      TEXT NOT NULL,
			event       TEXT NOT NULL,
			due_date    TEXT,
			probability REAL,
			outcome     INTEGER,
			brier       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecast_ts ON forecast_history(timestamp)`,

		`CREATE TABLE IF NOT EXISTS alert_history (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			session_id     TEXT NOT NULL,
			signal_key     TEXT NOT NULL,
			active         INTEGER NOT NULL,
			evidence_count INTEGER,
			notes          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alert_ts ON alert_history(timestamp)`,

		`CREATE TABLE IF NOT EXISTS redline_events (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			session_id     TEXT NOT NULL,
			red            INTEGER NOT NULL,
			trigger_key    TEXT,
			active_signals INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS risk_assessments (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			session_id  TEXT NOT NULL,
			total_score REAL,
			tier_label  TEXT,
			red_count   INTEGER,
			stale_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_risk_ts ON risk_assessments(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordIndicator(rec model.IndicatorRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO indicator_history
		(timestamp, session_id, template_key, dimension, latest_value, direction,
		 color, confidence, weight, source_url, analyst_note)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), r.session, rec.TemplateKey, string(rec.Dimension),
		rec.LatestValue, rec.Direction, string(rec.Color), rec.Confidence,
		rec.Weight, rec.SourceURL, rec.AnalystNote,
	)
	return err
}

func (r *SQLiteRecorder) RecordForecast(ev model.ForecastEvent, action ForecastAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var outcome, brier any
	if ev.Outcome != nil {
		outcome = *ev.Outcome
	}
	if ev.Brier != nil {
		brier = *ev.Brier
	}
	_, err := r.db.Exec(`INSERT INTO forecast_history
		(timestamp, session_id, action, event, due_date, probability, outcome, brier)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), r.session, string(action), ev.Event,
		ev.DueDate.String(), ev.Probability, outcome, brier,
	)
	return err
}

func (r *SQLiteRecorder) RecordAlert(st model.SignalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO alert_history
		(timestamp, session_id, signal_key, active, evidence_count, notes)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), r.session, st.Key, st.Active, len(st.Evidence), st.Notes,
	)
	return err
}

func (r *SQLiteRecorder) RecordRedLine(evt *RedLineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO redline_events
		(timestamp, session_id, red, trigger_key, active_signals)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), r.session, evt.Red, evt.Trigger, evt.ActiveSignals,
	)
	return err
}

func (r *SQLiteRecorder) RecordAssessment(a *model.RiskAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO risk_assessments
		(timestamp, session_id, total_score, tier_label, red_count, stale_count)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), r.session, a.TotalScore, a.Tier.Label, a.RedCount, a.Stale,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
