// Package db stores prediction and training history in SQLite.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS predictions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    features TEXT NOT NULL,
    predicted_price REAL NOT NULL,
    price_min REAL NOT NULL,
    price_max REAL NOT NULL,
    created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS training_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model_name VARCHAR(50) NOT NULL,
    model_path TEXT NOT NULL,
    r2 REAL NOT NULL,
    holdout_r2 REAL,
    data_points INTEGER NOT NULL,
    seed INTEGER NOT NULL,
    trained_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
`

// Store wraps the SQLite database.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Connect("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database failed: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables failed: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// PredictionRecord is one served prediction.
type PredictionRecord struct {
	ID             int64     `db:"id" json:"id"`
	Features       []float64 `db:"-" json:"features"`
	PredictedPrice float64   `db:"predicted_price" json:"predicted_price"`
	PriceMin       float64   `db:"price_min" json:"price_min"`
	PriceMax       float64   `db:"price_max" json:"price_max"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

func (s *Store) SavePrediction(ctx context.Context, record PredictionRecord) error {
	features, err := json.Marshal(record.Features)
	if err != nil {
		return err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO predictions (features, predicted_price, price_min, price_max, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		string(features), record.PredictedPrice, record.PriceMin, record.PriceMax, record.CreatedAt)
	return err
}

// RecentPredictions returns up to limit predictions, newest first.
func (s *Store) RecentPredictions(ctx context.Context, limit int) ([]PredictionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []struct {
		PredictionRecord
		FeaturesJSON string `db:"features"`
	}
	err := s.db.SelectContext(ctx, &rows, `
        SELECT id, features, predicted_price, price_min, price_max, created_at
        FROM predictions
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	records := make([]PredictionRecord, 0, len(rows))
	for _, row := range rows {
		record := row.PredictionRecord
		if err := json.Unmarshal([]byte(row.FeaturesJSON), &record.Features); err != nil {
			return nil, fmt.Errorf("prediction %d: %w", record.ID, err)
		}
		records = append(records, record)
	}
	return records, nil
}

type TrainingLog struct {
	ID         int64           `db:"id" json:"id"`
	ModelName  string          `db:"model_name" json:"model_name"`
	ModelPath  string          `db:"model_path" json:"model_path"`
	R2         float64         `db:"r2" json:"r2"`
	HoldoutR2  sql.NullFloat64 `db:"holdout_r2" json:"-"`
	DataPoints int             `db:"data_points" json:"data_points"`
	Seed       int64           `db:"seed" json:"seed"`
	TrainedAt  time.Time       `db:"trained_at" json:"trained_at"`
}

func (s *Store) SaveTrainingLog(ctx context.Context, entry TrainingLog) error {
	if entry.TrainedAt.IsZero() {
		entry.TrainedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
        INSERT INTO training_log (model_name, model_path, r2, holdout_r2, data_points, seed, trained_at)
        VALUES (:model_name, :model_path, :r2, :holdout_r2, :data_points, :seed, :trained_at)`, entry)
	return err
}

// LoadTrainingLog returns up to limit training runs, newest first.
func (s *Store) LoadTrainingLog(ctx context.Context, limit int) ([]TrainingLog, error) {
	if limit <= 0 {
		limit = 100
	}
	logs := make([]TrainingLog, 0)
	err := s.db.SelectContext(ctx, &logs, `
        SELECT id, model_name, model_path, r2, holdout_r2, data_points, seed, trained_at
        FROM training_log
        ORDER BY trained_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return logs, nil
}
