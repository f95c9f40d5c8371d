// Package history persists the append-only analysis log and computes
// analytics over it: trends, recurring weaknesses, improvement streaks, and
// a predicted next score.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/promptlens/promptlens/internal/model"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Store defines the only two storage operations the engine needs. Records
// are immutable once appended; ReadAll returns them in ascending timestamp
// order.
type Store interface {
	Append(record *model.AnalysisRecord) error
	ReadAll() ([]model.AnalysisRecord, error)
}

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	prompt_text     TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	overall_score   INTEGER NOT NULL,
	grade           TEXT NOT NULL,
	golden_json     TEXT NOT NULL,
	issues_json     TEXT NOT NULL DEFAULT '[]',
	improved_prompt TEXT NOT NULL DEFAULT '',
	project_path    TEXT NOT NULL DEFAULT '',
	intent          TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
CREATE INDEX IF NOT EXISTS idx_analyses_project ON analyses(project_path);
`

// NewSQLiteStore opens (creating if needed) the analysis log at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	// Single writer; the CLI is short-lived but WAL keeps concurrent readers
	// cheap when a resolve and a persist overlap.
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure history db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append writes one record and fills in its assigned ID. Loading placeholder
// state is never persisted, so issues and candidates arrive already final.
func (s *SQLiteStore) Append(record *model.AnalysisRecord) error {
	goldenJSON, err := json.Marshal(record.Golden)
	if err != nil {
		return fmt.Errorf("marshal golden scores: %w", err)
	}
	issuesJSON, err := json.Marshal(record.Issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}

	ts := record.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
		record.Timestamp = ts
	}

	res, err := s.db.Exec(`
		INSERT INTO analyses
			(prompt_text, created_at, overall_score, grade, golden_json, issues_json,
			 improved_prompt, project_path, intent, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.PromptText,
		ts.UTC().Format(time.RFC3339Nano),
		record.OverallScore,
		string(record.Grade),
		string(goldenJSON),
		string(issuesJSON),
		record.ImprovedPrompt,
		record.ProjectPath,
		record.Intent,
		record.Category,
	)
	if err != nil {
		return fmt.Errorf("append analysis: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		record.ID = id
	}
	return nil
}

// ReadAll returns every record in ascending timestamp order.
func (s *SQLiteStore) ReadAll() ([]model.AnalysisRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, prompt_text, created_at, overall_score, grade, golden_json,
		       issues_json, improved_prompt, project_path, intent, category
		FROM analyses
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("read analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.AnalysisRecord
	for rows.Next() {
		var (
			rec        model.AnalysisRecord
			createdAt  string
			grade      string
			goldenJSON string
			issuesJSON string
		)
		if err := rows.Scan(&rec.ID, &rec.PromptText, &createdAt, &rec.OverallScore,
			&grade, &goldenJSON, &issuesJSON, &rec.ImprovedPrompt,
			&rec.ProjectPath, &rec.Intent, &rec.Category); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", createdAt, err)
		}
		rec.Timestamp = ts
		rec.Grade = model.Grade(grade)

		if err := json.Unmarshal([]byte(goldenJSON), &rec.Golden); err != nil {
			return nil, fmt.Errorf("parse golden scores for record %d: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(issuesJSON), &rec.Issues); err != nil {
			return nil, fmt.Errorf("parse issues for record %d: %w", rec.ID, err)
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return records, nil
}
