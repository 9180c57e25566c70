package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "houseprice.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadPredictions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.SavePrediction(ctx, PredictionRecord{
			Features:       []float64{100 + float64(i), 2, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0},
			PredictedPrice: 1000 * float64(i+1),
			PriceMin:       850 * float64(i+1),
			PriceMax:       1150 * float64(i+1),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	records, err := store.RecentPredictions(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].PredictedPrice != 3000 || records[0].Features[0] != 102 {
		t.Fatalf("expected newest first, got %+v", records[0])
	}
	if len(records[1].Features) != 12 {
		t.Fatalf("expected 12 stored features, got %d", len(records[1].Features))
	}
}

func TestTrainingLog(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	empty, err := store.LoadTrainingLog(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no entries, got %d", len(empty))
	}

	first := TrainingLog{
		ModelName:  "linear_regression",
		ModelPath:  "house_price_model.json",
		R2:         0.94,
		DataPoints: 500,
		Seed:       42,
		TrainedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	second := first
	second.R2 = 0.95
	second.HoldoutR2 = sql.NullFloat64{Float64: 0.93, Valid: true}
	second.TrainedAt = first.TrainedAt.Add(time.Hour)

	for _, entry := range []TrainingLog{first, second} {
		if err := store.SaveTrainingLog(ctx, entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	logs, err := store.LoadTrainingLog(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}
	if logs[1].HoldoutR2.Valid {
		t.Fatalf("expected no holdout score on first run")
	}

	latest := logs[0]
	if latest.R2 != 0.95 || !latest.HoldoutR2.Valid || latest.HoldoutR2.Float64 != 0.93 {
		t.Fatalf("unexpected latest entry: %+v", latest)
	}

	limited, err := store.LoadTrainingLog(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != latest.ID {
		t.Fatalf("expected only the latest entry, got %+v", limited)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error")
	}
}
