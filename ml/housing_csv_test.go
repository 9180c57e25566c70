package ml

import (
	"strings"
	"testing"
)

const housingSample = `price,area,bedrooms,bathrooms,stories,mainroad,guestroom,basement,hotwaterheating,airconditioning,parking,prefarea,furnishingstatus
13300000,7420,4,2,3,yes,no,no,no,yes,2,yes,furnished
12250000,8960,4,4,4,yes,no,no,no,yes,3,no,Furnished
12215000,9960,3,2,2,yes,no,yes,no,no,2,yes,semi-furnished
`

func TestLoadHousingCSV(t *testing.T) {
	data, err := LoadHousingCSV(strings.NewReader(housingSample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", data.Len())
	}
	first := data.Features[0]
	if first.Area != 7420 || first.Bedrooms != 4 || first.MainRoad != 1 || first.GuestRoom != 0 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.FurnishingStatus != Furnished || data.Features[1].FurnishingStatus != Furnished {
		t.Fatalf("expected furnished rows, got %+v", data.Features[:2])
	}
	if data.Features[2].FurnishingStatus != SemiFurnished || data.Features[2].Basement != 1 {
		t.Fatalf("unexpected third row: %+v", data.Features[2])
	}
	if data.Prices[2] != 12215000 {
		t.Fatalf("unexpected price: %v", data.Prices[2])
	}
}

func TestLoadHousingCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing column", "price,area\n1,2\n"},
		{"header only", strings.SplitN(housingSample, "\n", 2)[0] + "\n"},
		{"bad flag", strings.Replace(housingSample, "yes,no,no,no,yes,2,yes,furnished", "maybe,no,no,no,yes,2,yes,furnished", 1)},
		{"bad furnishing", strings.Replace(housingSample, "semi-furnished", "palace", 1)},
		{"bad number", strings.Replace(housingSample, "7420", "big", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadHousingCSV(strings.NewReader(tt.input)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
