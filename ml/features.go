package ml

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FeatureCount is the length of every feature vector the model is fitted on.
const FeatureCount = 12

// HouseFeatures holds one property's encoded attributes.
type HouseFeatures struct {
	Area             float64
	Bedrooms         int
	Bathrooms        int
	Stories          int
	MainRoad         int
	GuestRoom        int
	Basement         int
	HotWaterHeating  int
	AirConditioning  int
	Parking          int
	PrefArea         int
	FurnishingStatus int
}

// FeatureVector flattens f in the column order the model was fitted with.
// Training and serving must both go through this function.
func FeatureVector(f HouseFeatures) []float64 {
	return []float64{
		f.Area,
		float64(f.Bedrooms),
		float64(f.Bathrooms),
		float64(f.Stories),
		float64(f.MainRoad),
		float64(f.GuestRoom),
		float64(f.Basement),
		float64(f.HotWaterHeating),
		float64(f.AirConditioning),
		float64(f.Parking),
		float64(f.PrefArea),
		float64(f.FurnishingStatus),
	}
}

func FeatureNames() []string {
	return []string{
		"area",
		"bedrooms",
		"bathrooms",
		"stories",
		"mainroad",
		"guestroom",
		"basement",
		"hotwaterheating",
		"airconditioning",
		"parking",
		"prefarea",
		"furnishingstatus",
	}
}

// Ordinal encoding of furnishingstatus.
const (
	Unfurnished   = 0
	SemiFurnished = 1
	Furnished     = 2
)

var furnishingLevels = map[string]int{
	"unfurnished":    Unfurnished,
	"semi-furnished": SemiFurnished,
	"furnished":      Furnished,
}

// NormalizeFurnishing lower-cases a furnishing status with Unicode case
// folding rules. A Caser is stateful, so one is built per call.
func NormalizeFurnishing(status string) string {
	return cases.Lower(language.Und).String(status)
}

// FurnishingLevel maps an already lower-cased furnishing status to its ordinal.
func FurnishingLevel(status string) (int, bool) {
	level, ok := furnishingLevels[status]
	return level, ok
}

func checkFeatureNames(names []string) error {
	expected := FeatureNames()
	if len(names) != len(expected) {
		return fmt.Errorf("expected %d features, artifact has %d", len(expected), len(names))
	}
	for i := range expected {
		if names[i] != expected[i] {
			return fmt.Errorf("feature order mismatch at %d: expected %s, got %s (artifact order: %s)",
				i, expected[i], names[i], strings.Join(names, ","))
		}
	}
	return nil
}
