package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrNotFitted = errors.New("model not fitted")

// LinearRegression is an ordinary least squares model with an intercept.
type LinearRegression struct {
	featureNames []string
	coefficients []float64
	intercept    float64
}

type linearArtifact struct {
	ModelType    string    `json:"model_type"`
	FeatureNames []string  `json:"feature_names"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func NewLinearRegression(featureNames []string) *LinearRegression {
	return &LinearRegression{featureNames: append([]string(nil), featureNames...)}
}

// Fit solves min ||[1 X]b - y||² by QR least squares.
func (lr *LinearRegression) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(y) == 0 {
		return errors.New("features or targets empty")
	}
	if len(x) != len(y) {
		return fmt.Errorf("features and targets size mismatch: %d vs %d", len(x), len(y))
	}
	cols := len(lr.featureNames)
	if cols == 0 {
		return errors.New("feature names required")
	}
	if len(x) <= cols {
		return fmt.Errorf("need more than %d samples to fit %d features, got %d", cols, cols, len(x))
	}

	design := mat.NewDense(len(x), cols+1, nil)
	for i, row := range x {
		if len(row) != cols {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(row), cols)
		}
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}
	target := mat.NewVecDense(len(y), append([]float64(nil), y...))

	var beta mat.VecDense
	if err := beta.SolveVec(design, target); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return fmt.Errorf("design matrix is rank deficient (condition number %g)", float64(cond))
		}
		return fmt.Errorf("solve least squares: %w", err)
	}

	lr.intercept = beta.AtVec(0)
	lr.coefficients = make([]float64, cols)
	for j := range lr.coefficients {
		lr.coefficients[j] = beta.AtVec(j + 1)
	}
	return nil
}

func (lr *LinearRegression) Predict(features []float64) (float64, error) {
	if len(lr.coefficients) == 0 {
		return 0, ErrNotFitted
	}
	if len(features) != len(lr.coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(lr.coefficients), len(features))
	}
	return lr.intercept + floats.Dot(lr.coefficients, features), nil
}

// Score returns the coefficient of determination R² on (x, y).
func (lr *LinearRegression) Score(x [][]float64, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("features and targets size mismatch: %d vs %d", len(x), len(y))
	}
	if len(y) == 0 {
		return 0, errors.New("features or targets empty")
	}
	estimates := make([]float64, len(x))
	for i, row := range x {
		v, err := lr.Predict(row)
		if err != nil {
			return 0, err
		}
		estimates[i] = v
	}
	return stat.RSquaredFrom(estimates, y, nil), nil
}

func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept
}

func (lr *LinearRegression) Coef() []float64 {
	return append([]float64(nil), lr.coefficients...)
}

func (lr *LinearRegression) FeatureNames() []string {
	return append([]string(nil), lr.featureNames...)
}

func (lr *LinearRegression) Save(path string) error {
	if len(lr.coefficients) == 0 {
		return ErrNotFitted
	}
	payload, err := json.MarshalIndent(linearArtifact{
		ModelType:    ModelTypeLinearRegression,
		FeatureNames: lr.featureNames,
		Coefficients: lr.coefficients,
		Intercept:    lr.intercept,
	}, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, payload, 0o644)
}

func (lr *LinearRegression) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var artifact linearArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return fmt.Errorf("decode model artifact: %w", err)
	}
	if artifact.ModelType != ModelTypeLinearRegression {
		return fmt.Errorf("artifact model type %q is not %s", artifact.ModelType, ModelTypeLinearRegression)
	}
	if len(artifact.Coefficients) == 0 {
		return errors.New("artifact has no coefficients")
	}
	if len(artifact.Coefficients) != len(artifact.FeatureNames) {
		return fmt.Errorf("artifact has %d coefficients for %d features",
			len(artifact.Coefficients), len(artifact.FeatureNames))
	}
	for i, c := range artifact.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("coefficient %d is not finite", i)
		}
	}
	if math.IsNaN(artifact.Intercept) || math.IsInf(artifact.Intercept, 0) {
		return errors.New("intercept is not finite")
	}

	lr.featureNames = artifact.FeatureNames
	lr.coefficients = artifact.Coefficients
	lr.intercept = artifact.Intercept
	return nil
}
