package ml

import "testing"

func TestFeatureVectorOrder(t *testing.T) {
	f := HouseFeatures{
		Area:             120.5,
		Bedrooms:         3,
		Bathrooms:        2,
		Stories:          2,
		MainRoad:         1,
		GuestRoom:        0,
		Basement:         1,
		HotWaterHeating:  0,
		AirConditioning:  1,
		Parking:          2,
		PrefArea:         1,
		FurnishingStatus: SemiFurnished,
	}
	expected := []float64{120.5, 3, 2, 2, 1, 0, 1, 0, 1, 2, 1, 1}

	vector := FeatureVector(f)
	if len(vector) != FeatureCount {
		t.Fatalf("expected %d features, got %d", FeatureCount, len(vector))
	}
	for i := range expected {
		if vector[i] != expected[i] {
			t.Fatalf("feature %d (%s): expected %v, got %v", i, FeatureNames()[i], expected[i], vector[i])
		}
	}
	if len(FeatureNames()) != FeatureCount {
		t.Fatalf("expected %d feature names, got %d", FeatureCount, len(FeatureNames()))
	}
}

func TestFurnishingLevel(t *testing.T) {
	tests := []struct {
		status string
		level  int
		ok     bool
	}{
		{"unfurnished", Unfurnished, true},
		{"semi-furnished", SemiFurnished, true},
		{"furnished", Furnished, true},
		{"palace", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		level, ok := FurnishingLevel(tt.status)
		if level != tt.level || ok != tt.ok {
			t.Errorf("FurnishingLevel(%q) = %d, %v; want %d, %v", tt.status, level, ok, tt.level, tt.ok)
		}
	}
}

func TestNormalizeFurnishing(t *testing.T) {
	if got := NormalizeFurnishing("Semi-Furnished"); got != "semi-furnished" {
		t.Fatalf("unexpected normalization: %q", got)
	}
	if got := NormalizeFurnishing("FURNISHED"); got != "furnished" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}
