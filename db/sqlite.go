package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/stance"
)

// Store is a SQLite-backed corpus store. All writes are transactional so a
// partially failed batch never leaves a half-written corpus behind.
type Store struct {
	database *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the schema.
func Open(path string) (*Store, error) {
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS labeled_texts (
        id TEXT PRIMARY KEY,
        text TEXT NOT NULL,
        label TEXT NOT NULL,
        platform TEXT NOT NULL,
        created_at DATETIME
    );
    CREATE TABLE IF NOT EXISTS unlabeled_texts (
        id TEXT PRIMARY KEY,
        text TEXT NOT NULL,
        subreddit TEXT NOT NULL,
        matched_keywords TEXT NOT NULL DEFAULT '[]',
        created_at DATETIME,
        predicted_label TEXT NOT NULL DEFAULT ''
    );
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        text_id TEXT NOT NULL,
        label TEXT NOT NULL,
        predicted_at DATETIME,
        UNIQUE(run_id, text_id)
    );
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        model_kind TEXT NOT NULL,
        seed INTEGER,
        accuracy REAL,
        macro_f1 REAL,
        selected INTEGER DEFAULT 0,
        data_points INTEGER,
        trained_at DATETIME
    );
    `

	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{database: database}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s.database == nil {
		return nil
	}
	return s.database.Close()
}

// SaveLabeledTexts upserts a batch of training records.
func (s *Store) SaveLabeledTexts(texts []stance.LabeledText) error {
	if s.database == nil {
		return errors.New("database not initialized")
	}
	if len(texts) == 0 {
		return nil
	}

	tx, err := s.database.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
        INSERT OR REPLACE INTO labeled_texts (id, text, label, platform, created_at)
        VALUES (?, ?, ?, ?, ?)
    `)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, text := range texts {
		if _, err := stmt.Exec(text.ID, text.Text, string(text.Label), string(text.Platform), text.CreatedAt); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SaveUnlabeledTexts inserts collected posts, silently skipping IDs already
// present. Posts are immutable once collected, so re-collection is a no-op
// and never clobbers an existing prediction.
func (s *Store) SaveUnlabeledTexts(texts []*stance.UnlabeledText) error {
	if s.database == nil {
		return errors.New("database not initialized")
	}
	if len(texts) == 0 {
		return nil
	}

	tx, err := s.database.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
        INSERT OR IGNORE INTO unlabeled_texts (id, text, subreddit, matched_keywords, created_at)
        VALUES (?, ?, ?, ?, ?)
    `)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, text := range texts {
		keywords, err := json.Marshal(text.MatchedKeywords)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := stmt.Exec(text.ID, text.Text, text.Subreddit, string(keywords), text.CreatedAt); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// FetchLabeledTexts returns the training corpus for a platform, oldest first.
func (s *Store) FetchLabeledTexts(platform stance.Platform) ([]stance.LabeledText, error) {
	if s.database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := s.database.Query(`
        SELECT id, text, label, platform, created_at
        FROM labeled_texts
        WHERE platform = ?
        ORDER BY created_at, id
    `, string(platform))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []stance.LabeledText
	for rows.Next() {
		var text stance.LabeledText
		var label, plat string
		if err := rows.Scan(&text.ID, &text.Text, &label, &plat, &text.CreatedAt); err != nil {
			return nil, err
		}
		text.Label = stance.Stance(label)
		text.Platform = stance.Platform(plat)
		texts = append(texts, text)
	}
	return texts, rows.Err()
}

// FetchUnlabeledTexts returns collected posts matching the filters, oldest
// first. The keyword filter matches posts whose matched-keyword list
// contains the exact term.
func (s *Store) FetchUnlabeledTexts(filters stance.Filters) ([]*stance.UnlabeledText, error) {
	if s.database == nil {
		return nil, errors.New("database not initialized")
	}

	query := `
        SELECT id, text, subreddit, matched_keywords, created_at, predicted_label
        FROM unlabeled_texts
    `
	var clauses []string
	var args []interface{}
	if filters.Subreddit != "" {
		clauses = append(clauses, "subreddit = ?")
		args = append(args, filters.Subreddit)
	}
	if filters.Keyword != "" {
		// Match the JSON-encoded element exactly, with LIKE metacharacters
		// escaped so keywords like "100%" don't turn into wildcards.
		encoded, err := json.Marshal(filters.Keyword)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, `matched_keywords LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(string(encoded))+"%")
	}
	if !filters.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filters.Since)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.database.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []*stance.UnlabeledText
	for rows.Next() {
		var text stance.UnlabeledText
		var keywords, label string
		if err := rows.Scan(&text.ID, &text.Text, &text.Subreddit, &keywords, &text.CreatedAt, &label); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(keywords), &text.MatchedKeywords); err != nil {
			return nil, fmt.Errorf("decode matched keywords for %s: %w", text.ID, err)
		}
		text.PredictedLabel = stance.Stance(label)
		texts = append(texts, &text)
	}
	return texts, rows.Err()
}

// escapeLike backslash-escapes the LIKE wildcards so the pattern matches
// them literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// PersistPredictions records a run's predictions and writes each label back
// onto its unlabeled text. Re-running the same run ID replaces the audit
// rows rather than duplicating them.
func (s *Store) PersistPredictions(runID string, predictions []stance.Prediction) error {
	if s.database == nil {
		return errors.New("database not initialized")
	}
	if runID == "" {
		return errors.New("run id required")
	}
	if len(predictions) == 0 {
		return nil
	}

	tx, err := s.database.Begin()
	if err != nil {
		return err
	}

	audit, err := tx.Prepare(`
        INSERT OR REPLACE INTO predictions (run_id, text_id, label, predicted_at)
        VALUES (?, ?, ?, ?)
    `)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer audit.Close()

	update, err := tx.Prepare(`
        UPDATE unlabeled_texts SET predicted_label = ? WHERE id = ?
    `)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer update.Close()

	now := time.Now().UTC()
	for _, prediction := range predictions {
		if _, err := audit.Exec(runID, prediction.ID, string(prediction.Label), now); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := update.Exec(string(prediction.Label), prediction.ID); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// TrainingLog is one trained model's scoreboard entry for a run.
type TrainingLog struct {
	RunID      string    `json:"run_id"`
	ModelKind  string    `json:"model_kind"`
	Seed       int64     `json:"seed"`
	Accuracy   float64   `json:"accuracy"`
	MacroF1    float64   `json:"macro_f1"`
	Selected   bool      `json:"selected"`
	DataPoints int       `json:"data_points"`
	TrainedAt  time.Time `json:"trained_at"`
}

// SaveTrainingLog appends scoreboard entries for a run.
func (s *Store) SaveTrainingLog(logs []TrainingLog) error {
	if s.database == nil {
		return errors.New("database not initialized")
	}
	if len(logs) == 0 {
		return nil
	}

	tx, err := s.database.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
        INSERT INTO training_log (run_id, model_kind, seed, accuracy, macro_f1, selected, data_points, trained_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, log := range logs {
		if _, err := stmt.Exec(log.RunID, log.ModelKind, log.Seed, log.Accuracy, log.MacroF1, log.Selected, log.DataPoints, log.TrainedAt); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadTrainingLog returns all scoreboard entries, newest first.
func (s *Store) LoadTrainingLog() ([]TrainingLog, error) {
	if s.database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := s.database.Query(`
        SELECT run_id, model_kind, seed, accuracy, macro_f1, selected, data_points, trained_at
        FROM training_log
        ORDER BY trained_at DESC, id DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var log TrainingLog
		if err := rows.Scan(&log.RunID, &log.ModelKind, &log.Seed, &log.Accuracy, &log.MacroF1, &log.Selected, &log.DataPoints, &log.TrainedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
