package pricing

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable is returned by every estimate of an estimator built
// without a model. It is permanent for the life of the estimator.
var ErrModelUnavailable = errors.New("model not loaded")

// CoercionError reports a request field that could not be encoded.
type CoercionError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *CoercionError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// ModelError wraps a failure of the model's predict call.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	return "prediction failed: " + e.Err.Error()
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// Classify maps an estimate error to its failure category name.
func Classify(err error) string {
	var coercion *CoercionError
	var model *ModelError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	case errors.As(err, &coercion):
		return "coercion"
	case errors.As(err, &model):
		return "model"
	default:
		return "other"
	}
}
