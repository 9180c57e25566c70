package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"houseprice/ml"
)

// Request field defaults.
const (
	DefaultArea             = 100.0
	DefaultBedrooms         = 2
	DefaultBathrooms        = 1
	DefaultStories          = 1
	DefaultParking          = 0
	DefaultFurnishingStatus = "unfurnished"
)

// EncodeOptions tunes request encoding.
type EncodeOptions struct {
	// StrictFurnishing rejects unknown furnishingstatus values instead of
	// encoding them as unfurnished.
	StrictFurnishing bool
}

// EncodeRequest converts a decoded JSON object into house features. Missing
// fields take their defaults; a present field that cannot be coerced is a
// *CoercionError.
func EncodeRequest(raw map[string]interface{}, opts EncodeOptions) (ml.HouseFeatures, error) {
	var (
		f   ml.HouseFeatures
		err error
	)
	if f.Area, err = floatField(raw, "area", DefaultArea); err != nil {
		return f, err
	}
	if f.Bedrooms, err = intField(raw, "bedrooms", DefaultBedrooms); err != nil {
		return f, err
	}
	if f.Bathrooms, err = intField(raw, "bathrooms", DefaultBathrooms); err != nil {
		return f, err
	}
	if f.Stories, err = intField(raw, "stories", DefaultStories); err != nil {
		return f, err
	}
	if f.Parking, err = intField(raw, "parking", DefaultParking); err != nil {
		return f, err
	}

	f.MainRoad = flagField(raw, "mainroad")
	f.GuestRoom = flagField(raw, "guestroom")
	f.Basement = flagField(raw, "basement")
	f.HotWaterHeating = flagField(raw, "hotwaterheating")
	f.AirConditioning = flagField(raw, "airconditioning")
	f.PrefArea = flagField(raw, "prefarea")

	if f.FurnishingStatus, err = furnishingField(raw, opts.StrictFurnishing); err != nil {
		return f, err
	}
	return f, nil
}

func floatField(raw map[string]interface{}, name string, def float64) (float64, error) {
	v, ok := raw[name]
	if !ok {
		return def, nil
	}
	var n float64
	switch value := v.(type) {
	case float64:
		n = value
	case bool:
		n = boolToFloat(value)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, &CoercionError{Field: name, Value: value, Reason: "could not convert string to float"}
		}
		n = parsed
	case nil:
		return 0, &CoercionError{Field: name, Reason: "must be a number, not null"}
	default:
		return 0, &CoercionError{Field: name, Reason: fmt.Sprintf("must be a number, not %s", jsonKind(v))}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, &CoercionError{Field: name, Value: v, Reason: "must be finite"}
	}
	return n, nil
}

// intField truncates JSON numbers toward zero and accepts integer literals in
// strings. Either form must fit in an int32.
func intField(raw map[string]interface{}, name string, def int) (int, error) {
	v, ok := raw[name]
	if !ok {
		return def, nil
	}
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) || math.Abs(value) > math.MaxInt32 {
			return 0, &CoercionError{Field: name, Value: value, Reason: "out of range"}
		}
		return int(math.Trunc(value)), nil
	case bool:
		return int(boolToFloat(value)), nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
		if errors.Is(err, strconv.ErrRange) {
			return 0, &CoercionError{Field: name, Value: value, Reason: "out of range"}
		}
		if err != nil {
			return 0, &CoercionError{Field: name, Value: value, Reason: "invalid literal for int"}
		}
		return int(parsed), nil
	case nil:
		return 0, &CoercionError{Field: name, Reason: "must be an integer, not null"}
	default:
		return 0, &CoercionError{Field: name, Reason: fmt.Sprintf("must be an integer, not %s", jsonKind(v))}
	}
}

func flagField(raw map[string]interface{}, name string) int {
	if truthy(raw[name]) {
		return 1
	}
	return 0
}

func furnishingField(raw map[string]interface{}, strict bool) (int, error) {
	const name = "furnishingstatus"
	status := DefaultFurnishingStatus
	if v, ok := raw[name]; ok {
		s, isString := v.(string)
		if !isString {
			return 0, &CoercionError{Field: name, Reason: fmt.Sprintf("must be a string, not %s", jsonKind(v))}
		}
		status = s
	}
	level, ok := ml.FurnishingLevel(ml.NormalizeFurnishing(status))
	if !ok {
		if strict {
			return 0, &CoercionError{Field: name, Value: status,
				Reason: "expected unfurnished, semi-furnished or furnished"}
		}
		return ml.Unfurnished, nil
	}
	return level, nil
}

// truthy follows JSON truthiness: false, 0, "", null and empty containers
// are false.
func truthy(v interface{}) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case float64:
		return value != 0
	case string:
		return value != ""
	case []interface{}:
		return len(value) > 0
	case map[string]interface{}:
		return len(value) > 0
	default:
		return true
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
