package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"houseprice/db"
	"houseprice/logger"
	"houseprice/ml"
)

func main() {
	modelPath := flag.String("model_path", "house_price_model.json", "model output path")
	samples := flag.Int("samples", 500, "number of synthetic samples")
	seed := flag.Uint64("seed", 42, "random seed for data generation and the holdout split")
	testRatio := flag.Float64("test_ratio", 0, "fraction of samples held out for evaluation")
	dataPath := flag.String("data", "", "housing CSV to train on instead of synthetic data")
	dbPath := flag.String("db", "", "SQLite database to append the training log to")
	logLevel := flag.String("log_level", "info", "log level")
	flag.Parse()

	logCfg := logger.DefaultConfig()
	logCfg.Level = *logLevel
	logCfg.Format = "console"
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	data, err := buildTrainingData(*dataPath, *samples, *seed)
	if err != nil {
		log.Fatal("failed to build training data", zap.Error(err))
	}
	log.Info("training data ready", zap.Int("samples", data.Len()), zap.String("source", sourceName(*dataPath)))

	train, test := ml.SplitDataset(data, *testRatio, *seed)
	model, err := ml.TrainLinearModel(train)
	if err != nil {
		log.Fatal("failed to train model", zap.Error(err))
	}

	r2, err := model.Score(train.Matrix(), train.Prices)
	if err != nil {
		log.Fatal("failed to score model", zap.Error(err))
	}
	var holdout sql.NullFloat64
	if test.Len() > 0 {
		score, err := model.Score(test.Matrix(), test.Prices)
		if err != nil {
			log.Fatal("failed to score holdout", zap.Error(err))
		}
		holdout = sql.NullFloat64{Float64: score, Valid: true}
		log.Info("holdout evaluated", zap.Int("samples", test.Len()), zap.Float64("r2", score))
	}

	if err := model.Save(*modelPath); err != nil {
		log.Fatal("failed to save model", zap.String("path", *modelPath), zap.Error(err))
	}

	if *dbPath != "" {
		if err := saveTrainingLog(*dbPath, db.TrainingLog{
			ModelName:  ml.ModelTypeLinearRegression,
			ModelPath:  *modelPath,
			R2:         r2,
			HoldoutR2:  holdout,
			DataPoints: train.Len(),
			Seed:       int64(*seed),
		}); err != nil {
			log.Fatal("failed to record training run", zap.String("db", *dbPath), zap.Error(err))
		}
	}

	fmt.Printf("model trained with R² score: %.4f\n", r2)
	if holdout.Valid {
		fmt.Printf("holdout R² score: %.4f\n", holdout.Float64)
	}
	fmt.Printf("features: %s\n", strings.Join(model.FeatureNames(), ", "))
	fmt.Printf("model saved to %s\n", *modelPath)
}

func buildTrainingData(dataPath string, samples int, seed uint64) (ml.Dataset, error) {
	if dataPath != "" {
		return ml.LoadHousingFile(dataPath)
	}
	return ml.GenerateSyntheticDataset(samples, seed)
}

func sourceName(dataPath string) string {
	if dataPath == "" {
		return "synthetic"
	}
	return dataPath
}

func saveTrainingLog(path string, entry db.TrainingLog) error {
	store, err := db.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveTrainingLog(context.Background(), entry)
}
