package ml

import (
	"fmt"
)

// ModelTypeLinearRegression identifies the OLS artifact format.
const ModelTypeLinearRegression = "linear_regression"

// LoadModel reads the artifact at path and checks that it was fitted on the
// house feature layout returned by FeatureNames.
func LoadModel(modelType, path string) (Model, error) {
	var model Model
	switch modelType {
	case ModelTypeLinearRegression, "":
		model = &LinearRegression{}
	default:
		return nil, fmt.Errorf("unsupported model type %q", modelType)
	}
	if err := model.Load(path); err != nil {
		return nil, err
	}
	if err := checkFeatureNames(model.FeatureNames()); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return model, nil
}
