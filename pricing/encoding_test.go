package pricing

import (
	"errors"
	"testing"

	"houseprice/ml"
)

func TestEncodeRequestDefaults(t *testing.T) {
	f, err := EncodeRequest(map[string]interface{}{}, EncodeOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []float64{100, 2, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0}
	vector := ml.FeatureVector(f)
	if len(vector) != len(expected) {
		t.Fatalf("expected %d features, got %d", len(expected), len(vector))
	}
	for i := range expected {
		if vector[i] != expected[i] {
			t.Fatalf("feature %s: expected %v, got %v", ml.FeatureNames()[i], expected[i], vector[i])
		}
	}
}

func TestEncodeRequestFullRecord(t *testing.T) {
	raw := map[string]interface{}{
		"area":             "150.5",
		"bedrooms":         3.0,
		"bathrooms":        "2",
		"stories":          2.9,
		"mainroad":         true,
		"guestroom":        false,
		"basement":         1.0,
		"hotwaterheating":  "",
		"airconditioning":  "yes",
		"parking":          true,
		"prefarea":         nil,
		"furnishingstatus": "Semi-Furnished",
	}
	f, err := EncodeRequest(raw, EncodeOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []float64{150.5, 3, 2, 2, 1, 0, 1, 0, 1, 1, 0, 1}
	vector := ml.FeatureVector(f)
	for i := range expected {
		if vector[i] != expected[i] {
			t.Fatalf("feature %s: expected %v, got %v", ml.FeatureNames()[i], expected[i], vector[i])
		}
	}
}

func TestEncodeRequestCoercion(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]interface{}
		field   string
		wantErr bool
	}{
		{name: "non numeric area", raw: map[string]interface{}{"area": "abc"}, field: "area", wantErr: true},
		{name: "null area", raw: map[string]interface{}{"area": nil}, field: "area", wantErr: true},
		{name: "object area", raw: map[string]interface{}{"area": map[string]interface{}{}}, field: "area", wantErr: true},
		{name: "infinite area", raw: map[string]interface{}{"area": "inf"}, field: "area", wantErr: true},
		{name: "fractional string bedrooms", raw: map[string]interface{}{"bedrooms": "3.5"}, field: "bedrooms", wantErr: true},
		{name: "array parking", raw: map[string]interface{}{"parking": []interface{}{1.0}}, field: "parking", wantErr: true},
		{name: "huge stories", raw: map[string]interface{}{"stories": 1e300}, field: "stories", wantErr: true},
		{name: "out of range string bedrooms", raw: map[string]interface{}{"bedrooms": "10000000000"}, field: "bedrooms", wantErr: true},
		{name: "out of range negative string parking", raw: map[string]interface{}{"parking": "-3000000000"}, field: "parking", wantErr: true},
		{name: "int32 max string bedrooms", raw: map[string]interface{}{"bedrooms": "2147483647"}},
		{name: "numeric furnishing", raw: map[string]interface{}{"furnishingstatus": 2.0}, field: "furnishingstatus", wantErr: true},
		{name: "padded numbers", raw: map[string]interface{}{"area": " 80 ", "bedrooms": " 4 "}},
		{name: "negative fraction truncates", raw: map[string]interface{}{"bedrooms": -1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeRequest(tt.raw, EncodeOptions{})
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var coercion *CoercionError
			if !errors.As(err, &coercion) {
				t.Fatalf("expected *CoercionError, got %v", err)
			}
			if coercion.Field != tt.field {
				t.Fatalf("expected field %s, got %s", tt.field, coercion.Field)
			}
			if coercion.Error() == "" {
				t.Fatal("expected a descriptive message")
			}
		})
	}
}

func TestEncodeRequestIntegerRangeMatchesAcrossTypes(t *testing.T) {
	for _, v := range []interface{}{1e10, "10000000000"} {
		_, err := EncodeRequest(map[string]interface{}{"bedrooms": v}, EncodeOptions{})
		var coercion *CoercionError
		if !errors.As(err, &coercion) {
			t.Fatalf("expected *CoercionError for %#v, got %v", v, err)
		}
		if coercion.Reason != "out of range" {
			t.Fatalf("expected out of range for %#v, got %q", v, coercion.Reason)
		}
	}
}

func TestEncodeRequestIntegerTruncation(t *testing.T) {
	f, err := EncodeRequest(map[string]interface{}{"bedrooms": 2.7, "parking": -1.5}, EncodeOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Bedrooms != 2 || f.Parking != -1 {
		t.Fatalf("expected truncation toward zero, got bedrooms=%d parking=%d", f.Bedrooms, f.Parking)
	}
}

func TestEncodeRequestTruthiness(t *testing.T) {
	tests := []struct {
		value interface{}
		want  int
	}{
		{nil, 0},
		{false, 0},
		{true, 1},
		{0.0, 0},
		{2.0, 1},
		{"", 0},
		{"no", 1},
		{[]interface{}{}, 0},
		{[]interface{}{false}, 1},
		{map[string]interface{}{}, 0},
		{map[string]interface{}{"a": 1.0}, 1},
	}
	for _, tt := range tests {
		f, err := EncodeRequest(map[string]interface{}{"basement": tt.value}, EncodeOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Basement != tt.want {
			t.Errorf("basement=%#v: expected %d, got %d", tt.value, tt.want, f.Basement)
		}
	}
}

func TestEncodeRequestFurnishing(t *testing.T) {
	tests := []struct {
		status  string
		strict  bool
		want    int
		wantErr bool
	}{
		{status: "unfurnished", want: ml.Unfurnished},
		{status: "semi-furnished", want: ml.SemiFurnished},
		{status: "FURNISHED", want: ml.Furnished},
		{status: "palace", want: ml.Unfurnished},
		{status: "", want: ml.Unfurnished},
		{status: "palace", strict: true, wantErr: true},
		{status: "Furnished", strict: true, want: ml.Furnished},
	}
	for _, tt := range tests {
		f, err := EncodeRequest(map[string]interface{}{"furnishingstatus": tt.status}, EncodeOptions{StrictFurnishing: tt.strict})
		if tt.wantErr {
			var coercion *CoercionError
			if !errors.As(err, &coercion) {
				t.Errorf("%q strict=%v: expected *CoercionError, got %v", tt.status, tt.strict, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.status, err)
		}
		if f.FurnishingStatus != tt.want {
			t.Errorf("%q: expected %d, got %d", tt.status, tt.want, f.FurnishingStatus)
		}
	}
}
