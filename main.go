package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"houseprice/config"
	"houseprice/db"
	phttp "houseprice/http"
	"houseprice/logger"
	"houseprice/ml"
	"houseprice/monitoring"
	"houseprice/pricing"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 2. Load model; the service still starts without one
	var model ml.Regressor
	if loaded, err := ml.LoadModel(cfg.ML.ModelType, cfg.ML.ModelPath); err != nil {
		log.Warn("model not loaded, serving in degraded mode",
			zap.String("model_path", cfg.ML.ModelPath), zap.Error(err))
	} else {
		model = loaded
		log.Info("model loaded",
			zap.String("model_path", cfg.ML.ModelPath),
			zap.Strings("features", loaded.FeatureNames()))
	}
	estimator := pricing.NewEstimator(model, pricing.Options{
		CacheSize:        cfg.Predict.CacheSize,
		StrictFurnishing: cfg.Predict.StrictFurnishing,
	})

	// 3. Initialize database
	var store phttp.PredictionStore
	if cfg.Database.Path != "" {
		s, err := db.Open(cfg.Database.Path)
		if err != nil {
			log.Fatal("failed to initialize database", zap.String("path", cfg.Database.Path), zap.Error(err))
		}
		defer s.Close()
		store = s
		log.Info("database initialized", zap.String("path", cfg.Database.Path))
	}

	metrics := monitoring.NewMetricsCollector()
	if cfg.ML.WatchArtifact {
		metrics.Describe("model_artifact_changes_total", "Changes to the model artifact seen since startup")
		watcher, err := monitoring.WatchArtifact(cfg.ML.ModelPath, log, func(op fsnotify.Op) {
			metrics.IncrCounter("model_artifact_changes_total", 1, map[string]string{"op": op.String()})
		})
		if err != nil {
			log.Warn("artifact watcher disabled", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	// 4. Start HTTP server
	api := phttp.NewAPI(estimator, store, metrics, log)
	server := phttp.NewServer(phttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
	}, api, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", zap.Stringer("signal", sig))
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}

	if err := server.Stop(); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("exiting")
}
