package ml

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Synthetic price signal, in TND.
const (
	SyntheticBasePrice   = 50000.0
	SyntheticNoiseStdDev = 30000.0
)

// SyntheticPriceWeights are the per-feature price contributions used to
// generate targets, aligned with FeatureNames.
var SyntheticPriceWeights = []float64{
	800,   // area, per m²
	30000, // bedrooms
	20000, // bathrooms
	0,     // stories
	30000, // mainroad
	25000, // guestroom
	40000, // basement
	0,     // hotwaterheating
	20000, // airconditioning
	15000, // parking
	50000, // prefarea
	25000, // furnishingstatus, per level
}

// Dataset is a labelled set of properties.
type Dataset struct {
	Features []HouseFeatures
	Prices   []float64
}

func (d Dataset) Len() int {
	return len(d.Prices)
}

// Matrix returns the feature vectors of every sample.
func (d Dataset) Matrix() [][]float64 {
	rows := make([][]float64, len(d.Features))
	for i, f := range d.Features {
		rows[i] = FeatureVector(f)
	}
	return rows
}

// GenerateSyntheticDataset draws n properties from independent uniform
// ranges and prices them with SyntheticPriceWeights plus Gaussian noise.
// The same seed always yields the same dataset.
func GenerateSyntheticDataset(n int, seed uint64) (Dataset, error) {
	if n <= 0 {
		return Dataset{}, errors.New("sample count must be positive")
	}
	rnd := rand.New(rand.NewPCG(seed, seed))
	ints := func(low, high int) []int {
		values := make([]int, n)
		for i := range values {
			values[i] = low + rnd.IntN(high-low)
		}
		return values
	}

	area := ints(50, 500)
	bedrooms := ints(1, 6)
	bathrooms := ints(1, 4)
	stories := ints(1, 4)
	mainroad := ints(0, 2)
	guestroom := ints(0, 2)
	basement := ints(0, 2)
	hotwater := ints(0, 2)
	aircon := ints(0, 2)
	parking := ints(0, 4)
	prefarea := ints(0, 2)
	furnishing := ints(0, 3)

	noise := distuv.Normal{Mu: 0, Sigma: SyntheticNoiseStdDev}
	data := Dataset{
		Features: make([]HouseFeatures, n),
		Prices:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		f := HouseFeatures{
			Area:             float64(area[i]),
			Bedrooms:         bedrooms[i],
			Bathrooms:        bathrooms[i],
			Stories:          stories[i],
			MainRoad:         mainroad[i],
			GuestRoom:        guestroom[i],
			Basement:         basement[i],
			HotWaterHeating:  hotwater[i],
			AirConditioning:  aircon[i],
			Parking:          parking[i],
			PrefArea:         prefarea[i],
			FurnishingStatus: furnishing[i],
		}
		data.Features[i] = f
		data.Prices[i] = SyntheticPrice(f) + noise.Quantile(openUnit(rnd))
	}
	return data, nil
}

// SyntheticPrice is the noise-free price of f.
func SyntheticPrice(f HouseFeatures) float64 {
	price := SyntheticBasePrice
	for i, v := range FeatureVector(f) {
		price += SyntheticPriceWeights[i] * v
	}
	return price
}

// openUnit draws from (0, 1) so the normal quantile stays finite.
func openUnit(rnd *rand.Rand) float64 {
	for {
		if u := rnd.Float64(); u > 0 {
			return u
		}
	}
}

// SplitDataset shuffles with seed and holds out testRatio of the samples.
// A ratio outside (0, 1) returns everything as training data.
func SplitDataset(data Dataset, testRatio float64, seed uint64) (train, test Dataset) {
	if testRatio <= 0 || testRatio >= 1 {
		return data, Dataset{}
	}
	rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	indices := rnd.Perm(data.Len())

	split := int(float64(data.Len()) * (1 - testRatio))
	for i, idx := range indices {
		if i < split {
			train.Features = append(train.Features, data.Features[idx])
			train.Prices = append(train.Prices, data.Prices[idx])
		} else {
			test.Features = append(test.Features, data.Features[idx])
			test.Prices = append(test.Prices, data.Prices[idx])
		}
	}
	return train, test
}

// TrainLinearModel fits an OLS model on data using the house feature layout.
func TrainLinearModel(data Dataset) (*LinearRegression, error) {
	if data.Len() != len(data.Features) {
		return nil, fmt.Errorf("dataset has %d prices for %d samples", data.Len(), len(data.Features))
	}
	model := NewLinearRegression(FeatureNames())
	if err := model.Fit(data.Matrix(), data.Prices); err != nil {
		return nil, err
	}
	return model, nil
}
