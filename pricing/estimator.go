// Package pricing turns loosely typed property descriptions into price
// estimates with a heuristic confidence band.
package pricing

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"houseprice/ml"
)

const (
	// IntervalMargin is the relative half-width of the confidence band.
	IntervalMargin = 0.15
	// ConfidenceLabel is fixed; it is not derived from any error metric.
	ConfidenceLabel = "good"
	Currency        = "TND"
)

// PriceRange is the confidence band around a point estimate.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Estimate is the result of a single prediction.
type Estimate struct {
	PredictedPrice float64    `json:"predicted_price"`
	PriceRange     PriceRange `json:"price_range"`
	Confidence     string     `json:"confidence"`
	Currency       string     `json:"currency"`
}

// Options configures an Estimator.
type Options struct {
	// CacheSize bounds the number of memoized feature vectors; 0 disables
	// the cache.
	CacheSize        int
	StrictFurnishing bool
}

// ModelInfo describes the loaded model.
type ModelInfo struct {
	FeatureNames []string  `json:"feature_names"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

type featureKey [ml.FeatureCount]float64

// Estimator serves predictions from one immutable model. It is either ready
// or permanently unavailable, depending on whether a model was supplied.
// Safe for concurrent use.
type Estimator struct {
	model     ml.Regressor
	opts      Options
	cache     *lru.Cache[featureKey, Estimate]
	cacheHits atomic.Int64
}

// NewEstimator builds an estimator around model. A nil model yields an
// estimator that reports ErrModelUnavailable for every request.
func NewEstimator(model ml.Regressor, opts Options) *Estimator {
	e := &Estimator{model: model, opts: opts}
	if model != nil && opts.CacheSize > 0 {
		if cache, err := lru.New[featureKey, Estimate](opts.CacheSize); err == nil {
			e.cache = cache
		}
	}
	return e
}

func (e *Estimator) Ready() bool {
	return e.model != nil
}

// Estimate encodes raw and prices it.
func (e *Estimator) Estimate(ctx context.Context, raw map[string]interface{}) (Estimate, error) {
	features, err := e.Encode(raw)
	if err != nil {
		return Estimate{}, err
	}
	return e.EstimateFeatures(ctx, features)
}

// Encode applies the estimator's encoding options to raw. The model is
// checked first so an unavailable estimator never reports input errors.
func (e *Estimator) Encode(raw map[string]interface{}) (ml.HouseFeatures, error) {
	if !e.Ready() {
		return ml.HouseFeatures{}, ErrModelUnavailable
	}
	return EncodeRequest(raw, EncodeOptions{StrictFurnishing: e.opts.StrictFurnishing})
}

// EstimateFeatures prices already encoded features.
func (e *Estimator) EstimateFeatures(ctx context.Context, features ml.HouseFeatures) (Estimate, error) {
	if !e.Ready() {
		return Estimate{}, ErrModelUnavailable
	}
	if err := ctx.Err(); err != nil {
		return Estimate{}, err
	}

	vector := ml.FeatureVector(features)
	var key featureKey
	copy(key[:], vector)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			e.cacheHits.Add(1)
			return cached, nil
		}
	}

	point, err := e.model.Predict(vector)
	if err != nil {
		return Estimate{}, &ModelError{Err: err}
	}
	if math.IsNaN(point) || math.IsInf(point, 0) {
		return Estimate{}, &ModelError{Err: errors.New("model returned a non-finite price")}
	}

	result := NewEstimate(point)
	if e.cache != nil {
		e.cache.Add(key, result)
	}
	return result, nil
}

// NewEstimate builds the rounded result for a raw model output. Negative
// outputs are floored at zero so the band always contains the point.
func NewEstimate(point float64) Estimate {
	point = math.Max(0, point)
	band := PriceInterval(point)
	return Estimate{
		PredictedPrice: round2(point),
		PriceRange: PriceRange{
			Min: round2(band.Min),
			Max: round2(band.Max),
		},
		Confidence: ConfidenceLabel,
		Currency:   Currency,
	}
}

// PriceInterval returns point ± IntervalMargin·point with the lower bound
// clamped to zero.
func PriceInterval(point float64) PriceRange {
	margin := point * IntervalMargin
	return PriceRange{
		Min: math.Max(0, point-margin),
		Max: point + margin,
	}
}

// round2 rounds the exact binary value of v to 2 decimals, breaking exact
// ties to even.
func round2(v float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}

// CacheHits reports how many estimates were served from the cache.
func (e *Estimator) CacheHits() int64 {
	return e.cacheHits.Load()
}

func (e *Estimator) ModelInfo() (ModelInfo, error) {
	if !e.Ready() {
		return ModelInfo{}, ErrModelUnavailable
	}
	return ModelInfo{
		FeatureNames: e.model.FeatureNames(),
		Coefficients: e.model.Coef(),
		Intercept:    e.model.Intercept(),
	}, nil
}
