package metrics

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteSink stores metrics in a SQLite database, one run per sink. The
// schema is migrated on open.
type SQLiteSink struct {
	db    *sql.DB
	runID uuid.UUID
}

// OpenSQLite opens (creating if needed) the database at path, migrates it and
// registers a new run.
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000; PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteSink{db: db, runID: uuid.New()}
	if err := s.register(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSink) register() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs (run_id) VALUES (?)`, s.runID.String()); err != nil {
		return fmt.Errorf("failed to register run: %w", err)
	}
	for _, d := range Definitions {
		_, err := tx.Exec(`INSERT OR IGNORE INTO metric_definitions (definition_id, name, description) VALUES (?, ?, ?)`,
			d.ID.String(), d.Name, d.Description)
		if err != nil {
			return fmt.Errorf("failed to register definition %s: %w", d.Name, err)
		}
	}
	return tx.Commit()
}

// RunID identifies the rows this sink writes.
func (s *SQLiteSink) RunID() uuid.UUID { return s.runID }

// SchemaVersion reports the applied migration version.
func (s *SQLiteSink) SchemaVersion() (uint, error) {
	v, dirty, err := schemaVersion(s.db)
	if err != nil {
		return 0, err
	}
	if dirty {
		return v, fmt.Errorf("schema version %d is dirty", v)
	}
	return v, nil
}

func (s *SQLiteSink) Report(m Metric) error {
	value, err := json.Marshal(m.Value)
	if err != nil {
		return fmt.Errorf("encode metric value: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO metrics (run_id, definition_id, frame, value) VALUES (?, ?, ?, ?)`,
		s.runID.String(), m.Definition.String(), m.Frame, string(value))
	return err
}

func (s *SQLiteSink) RecordFrame(f FrameSummary) error {
	_, err := s.db.Exec(`
		INSERT INTO frames (run_id, frame, scale_index, foreground, distractors, occluders, background, background_expected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID.String(), f.Frame, f.ScaleIndex, f.Foreground, f.Distractors, f.Occluders, f.Background, f.BackgroundExpected)
	return err
}

// Frames returns this run's frame summaries in frame order.
func (s *SQLiteSink) Frames() ([]FrameSummary, error) {
	rows, err := s.db.Query(`
		SELECT frame, scale_index, foreground, distractors, occluders, background, background_expected
		FROM frames WHERE run_id = ? ORDER BY frame`, s.runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FrameSummary
	for rows.Next() {
		var f FrameSummary
		if err := rows.Scan(&f.Frame, &f.ScaleIndex, &f.Foreground, &f.Distractors, &f.Occluders, &f.Background, &f.BackgroundExpected); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Values returns the raw JSON values this run reported against a
// definition, in insertion order.
func (s *SQLiteSink) Values(def uuid.UUID) ([]json.RawMessage, error) {
	rows, err := s.db.Query(`SELECT value FROM metrics WHERE run_id = ? AND definition_id = ? ORDER BY metric_id`,
		s.runID.String(), def.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(v))
	}
	return out, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
