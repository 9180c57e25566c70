package ml

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadHousingFile reads a housing CSV from path. See LoadHousingCSV.
func LoadHousingFile(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, err
	}
	defer file.Close()
	return LoadHousingCSV(file)
}

// LoadHousingCSV reads the public housing dataset layout: a header row with a
// price column plus the twelve feature columns in any order, yes/no flags and
// furnishing status strings.
func LoadHousingCSV(r io.Reader) (Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Dataset{}, errors.New("housing csv is empty")
		}
		return Dataset{}, err
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range append([]string{"price"}, FeatureNames()...) {
		if _, ok := columns[name]; !ok {
			return Dataset{}, fmt.Errorf("housing csv missing column %q", name)
		}
	}

	var data Dataset
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Dataset{}, err
		}
		row := housingRow{record: record, columns: columns}
		f := HouseFeatures{
			Area:             row.number("area"),
			Bedrooms:         row.count("bedrooms"),
			Bathrooms:        row.count("bathrooms"),
			Stories:          row.count("stories"),
			MainRoad:         row.flag("mainroad"),
			GuestRoom:        row.flag("guestroom"),
			Basement:         row.flag("basement"),
			HotWaterHeating:  row.flag("hotwaterheating"),
			AirConditioning:  row.flag("airconditioning"),
			Parking:          row.count("parking"),
			PrefArea:         row.flag("prefarea"),
			FurnishingStatus: row.furnishing("furnishingstatus"),
		}
		price := row.number("price")
		if row.err != nil {
			return Dataset{}, fmt.Errorf("line %d: %w", line, row.err)
		}
		data.Features = append(data.Features, f)
		data.Prices = append(data.Prices, price)
	}
	if data.Len() == 0 {
		return Dataset{}, errors.New("housing csv has no rows")
	}
	return data, nil
}

// housingRow parses columns of one record, keeping the first error.
type housingRow struct {
	record  []string
	columns map[string]int
	err     error
}

func (r *housingRow) value(name string) string {
	idx := r.columns[name]
	if idx >= len(r.record) {
		r.fail(fmt.Errorf("column %s missing", name))
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r *housingRow) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *housingRow) number(name string) float64 {
	v, err := strconv.ParseFloat(r.value(name), 64)
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", name, err))
	}
	return v
}

func (r *housingRow) count(name string) int {
	v, err := strconv.Atoi(r.value(name))
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", name, err))
	}
	return v
}

func (r *housingRow) flag(name string) int {
	switch strings.ToLower(r.value(name)) {
	case "yes", "1", "true":
		return 1
	case "no", "0", "false":
		return 0
	default:
		r.fail(fmt.Errorf("%s: expected yes or no", name))
		return 0
	}
}

func (r *housingRow) furnishing(name string) int {
	status := r.value(name)
	level, ok := FurnishingLevel(NormalizeFurnishing(status))
	if !ok {
		r.fail(fmt.Errorf("%s: unknown furnishing status %q", name, status))
	}
	return level
}
