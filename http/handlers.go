package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"houseprice/db"
	"houseprice/ml"
	"houseprice/monitoring"
	"houseprice/pricing"
)

// PredictionStore records served predictions and exposes the training
// history. Implemented by *db.Store.
type PredictionStore interface {
	SavePrediction(ctx context.Context, record db.PredictionRecord) error
	RecentPredictions(ctx context.Context, limit int) ([]db.PredictionRecord, error)
	LoadTrainingLog(ctx context.Context, limit int) ([]db.TrainingLog, error)
}

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// trainingHistoryLimit bounds the runs listed by GET /model.
const trainingHistoryLimit = 20

// API serves the prediction endpoints from one estimator. All fields are set
// at construction and never reassigned.
type API struct {
	estimator *pricing.Estimator
	store     PredictionStore
	metrics   *monitoring.MetricsCollector
	log       *zap.Logger
	upgrader  websocket.Upgrader
}

// NewAPI builds the handlers. store may be nil to disable prediction logging.
func NewAPI(estimator *pricing.Estimator, store PredictionStore, metrics *monitoring.MetricsCollector, log *zap.Logger) *API {
	if metrics == nil {
		metrics = monitoring.NewMetricsCollector()
	}
	if log == nil {
		log = zap.NewNop()
	}

	metrics.Describe("http_requests_total", "HTTP requests by status class")
	metrics.Describe("predictions_total", "Prediction requests by outcome")
	metrics.Describe("model_loaded", "1 when a model artifact was loaded at startup")
	metrics.Describe("prediction_cache_hits", "Estimates served from the prediction cache")
	loaded := 0.0
	if estimator.Ready() {
		loaded = 1
	}
	metrics.SetGauge("model_loaded", loaded, nil)
	metrics.GaugeFunc("prediction_cache_hits", func() float64 {
		return float64(estimator.CacheHits())
	})

	return &API{
		estimator: estimator,
		store:     store,
		metrics:   metrics,
		log:       log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("POST /predict", a.handlePredict)
	mux.HandleFunc("GET /model", a.handleModel)
	mux.HandleFunc("GET /predictions", a.handlePredictions)
	mux.HandleFunc("GET /metrics", a.handleMetrics)
	mux.HandleFunc("GET /ws/predict", a.handlePredictStream)
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		ModelLoaded: a.estimator.Ready(),
	})
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	if !a.estimator.Ready() {
		a.recordOutcome(pricing.ErrModelUnavailable)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Model not loaded"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		a.recordOutcome(err)
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	status, result, err := a.predict(r.Context(), body)
	if err != nil {
		writeJSON(w, status, errorResponse{Error: errorMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// predict runs one request body through decode, estimate and logging. It
// returns the HTTP status matching the outcome.
func (a *API) predict(ctx context.Context, body []byte) (int, pricing.Estimate, error) {
	features, result, err := a.estimate(ctx, body)
	a.recordOutcome(err)
	if err != nil {
		if pricing.Classify(err) == "other" {
			a.log.Warn("prediction failed", zap.String("request_id", GetRequestID(ctx)), zap.Error(err))
		}
		return statusFor(err), pricing.Estimate{}, err
	}
	a.savePrediction(ctx, features, result)
	return http.StatusOK, result, nil
}

func (a *API) estimate(ctx context.Context, body []byte) (ml.HouseFeatures, pricing.Estimate, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return ml.HouseFeatures{}, pricing.Estimate{}, err
	}
	features, err := a.estimator.Encode(raw)
	if err != nil {
		return ml.HouseFeatures{}, pricing.Estimate{}, err
	}
	result, err := a.estimator.EstimateFeatures(ctx, features)
	return features, result, err
}

func (a *API) savePrediction(ctx context.Context, features ml.HouseFeatures, result pricing.Estimate) {
	if a.store == nil {
		return
	}
	err := a.store.SavePrediction(ctx, db.PredictionRecord{
		Features:       ml.FeatureVector(features),
		PredictedPrice: result.PredictedPrice,
		PriceMin:       result.PriceRange.Min,
		PriceMax:       result.PriceRange.Max,
	})
	if err != nil {
		a.log.Error("failed to save prediction", zap.String("request_id", GetRequestID(ctx)), zap.Error(err))
	}
}

func (a *API) recordOutcome(err error) {
	outcome := "ok"
	if err != nil {
		outcome = pricing.Classify(err)
	}
	a.metrics.IncrCounter("predictions_total", 1, map[string]string{"result": outcome})
}

type modelResponse struct {
	pricing.ModelInfo
	Training *trainingInfo  `json:"training,omitempty"`
	History  []trainingInfo `json:"history,omitempty"`
}

type trainingInfo struct {
	ModelName  string    `json:"model_name"`
	ModelPath  string    `json:"model_path"`
	R2         float64   `json:"r2"`
	HoldoutR2  *float64  `json:"holdout_r2,omitempty"`
	DataPoints int       `json:"data_points"`
	Seed       int64     `json:"seed"`
	TrainedAt  time.Time `json:"trained_at"`
}

func newTrainingInfo(entry db.TrainingLog) trainingInfo {
	info := trainingInfo{
		ModelName:  entry.ModelName,
		ModelPath:  entry.ModelPath,
		R2:         entry.R2,
		DataPoints: entry.DataPoints,
		Seed:       entry.Seed,
		TrainedAt:  entry.TrainedAt,
	}
	if entry.HoldoutR2.Valid {
		holdout := entry.HoldoutR2.Float64
		info.HoldoutR2 = &holdout
	}
	return info
}

// handleModel reports the loaded model and, when a store is configured, the
// latest training run followed by the recent history, newest first.
func (a *API) handleModel(w http.ResponseWriter, r *http.Request) {
	info, err := a.estimator.ModelInfo()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Model not loaded"})
		return
	}

	response := modelResponse{ModelInfo: info}
	if a.store != nil {
		entries, err := a.store.LoadTrainingLog(r.Context(), trainingHistoryLimit)
		if err != nil {
			a.log.Error("failed to load training log", zap.Error(err))
		}
		for _, entry := range entries {
			response.History = append(response.History, newTrainingInfo(entry))
		}
		if len(response.History) > 0 {
			latest := response.History[0]
			response.Training = &latest
		}
	}
	writeJSON(w, http.StatusOK, response)
}

type predictionsResponse struct {
	Predictions []db.PredictionRecord `json:"predictions"`
	Count       int                   `json:"count"`
}

// handlePredictions lists logged predictions, newest first.
func (a *API) handlePredictions(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "prediction log disabled"})
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxListLimit {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: fmt.Sprintf("invalid limit %q: must be an integer between 1 and %d", raw, maxListLimit),
			})
			return
		}
		limit = n
	}

	records, err := a.store.RecentPredictions(r.Context(), limit)
	if err != nil {
		a.log.Error("failed to load predictions", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load predictions"})
		return
	}
	if records == nil {
		records = []db.PredictionRecord{}
	}
	writeJSON(w, http.StatusOK, predictionsResponse{Predictions: records, Count: len(records)})
}

func (a *API) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	if err := a.metrics.ExportPrometheus(w); err != nil {
		a.log.Error("failed to export metrics", zap.Error(err))
	}
}

// decodeObject parses a request body that must be a JSON object. An empty
// body is an empty object.
func decodeObject(body []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]interface{}{}, nil
	}
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &pricing.CoercionError{Field: "body", Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	raw, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, &pricing.CoercionError{Field: "body", Reason: "must be a JSON object"}
	}
	return raw, nil
}

// statusFor maps estimate failures onto HTTP statuses: a missing model is a
// server error, everything else in the encode/predict path is the client's.
func statusFor(err error) int {
	if errors.Is(err, pricing.ErrModelUnavailable) {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func errorMessage(err error) string {
	if errors.Is(err, pricing.ErrModelUnavailable) {
		return "Model not loaded"
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
