package ml

// Regressor is a fitted model mapping a feature vector to a price.
type Regressor interface {
	Predict(features []float64) (float64, error)
	Intercept() float64
	Coef() []float64
	FeatureNames() []string
}

// Model is a Regressor that can also be fitted and persisted.
type Model interface {
	Regressor
	Fit(x [][]float64, y []float64) error
	Score(x [][]float64, y []float64) (float64, error)
	Save(path string) error
	Load(path string) error
}
