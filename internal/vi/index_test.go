package vi

import (
	"errors"
	"math"
	"testing"
	"time"
)

func allValidMask() []bool {
	mask := make([]bool, testGridSize*testGridSize)
	for i := range mask {
		mask[i] = true
	}
	return mask
}

func TestComputeIndexNDVI(t *testing.T) {
	scene := uniformScene(day(2024, time.June, 1), map[string]float64{
		BandNIR: 0.5,
		BandRed: 0.1,
	}, 0, 4)

	raster, err := ComputeIndex(scene, NDVI, allValidMask(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, ok := raster.At(3, 7)
	if !ok {
		t.Fatal("expected valid pixel")
	}
	if math.Abs(v-0.6667) > 1e-4 {
		t.Fatalf("NDVI = %f, want 0.6667", v)
	}
}

func TestComputeIndexFormulas(t *testing.T) {
	bands := map[string]float64{
		BandBlue:  0.05,
		BandGreen: 0.25,
		BandRed:   0.1,
		BandNIR:   0.5,
	}
	scene := uniformScene(day(2024, time.June, 1), bands, 0, 4)

	cases := []struct {
		vi   VIType
		want float64
	}{
		{EVI, 2.5 * 0.4 / (0.5 + 0.6 - 0.375 + 1)},
		{GNDVI, 0.25 / 0.75},
		{NDWI, -0.25 / 0.75},
		{SAVI, 1.5 * 0.4 / 1.1},
	}
	for _, tc := range cases {
		raster, err := ComputeIndex(scene, tc.vi, allValidMask(), nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.vi, err)
		}
		v, ok := raster.At(0, 0)
		if !ok {
			t.Fatalf("%s: expected valid pixel", tc.vi)
		}
		if math.Abs(v-tc.want) > 1e-6 {
			t.Fatalf("%s = %f, want %f", tc.vi, v, tc.want)
		}
	}
}

func TestComputeIndexZeroDenominator(t *testing.T) {
	scene := uniformScene(day(2024, time.June, 1), map[string]float64{
		BandNIR: 0,
		BandRed: 0,
	}, 0, 4)

	raster, err := ComputeIndex(scene, NDVI, allValidMask(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raster.At(5, 5); ok {
		t.Fatal("zero denominator must produce no data, not a value")
	}
}

func TestComputeIndexAppliesMask(t *testing.T) {
	scene := uniformScene(day(2024, time.June, 1), map[string]float64{
		BandNIR: 0.5,
		BandRed: 0.1,
	}, 0, 4)

	mask := allValidMask()
	mask[0] = false // pixel (0,0)

	raster, err := ComputeIndex(scene, NDVI, mask, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raster.At(0, 0); ok {
		t.Fatal("masked pixel must be no data regardless of formula result")
	}
	if _, ok := raster.At(1, 0); !ok {
		t.Fatal("unmasked pixel should carry data")
	}
}

func TestComputeIndexMissingBand(t *testing.T) {
	scene := uniformScene(day(2024, time.June, 1), map[string]float64{
		BandNIR: 0.5,
		BandRed: 0.1,
	}, 0, 4)

	if _, err := ComputeIndex(scene, EVI, allValidMask(), nil); err == nil {
		t.Fatal("EVI without a blue band must fail")
	}
}

func TestComputeIndexVCI(t *testing.T) {
	scene := uniformScene(day(2024, time.June, 1), map[string]float64{
		BandNIR: 0.5,
		BandRed: 0.1,
	}, 0, 4)
	base := mapBaseline{time.June: {Min: 0.2, Max: 0.8}}

	raster, err := ComputeIndex(scene, VCI, allValidMask(), base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := raster.At(0, 0)
	if !ok {
		t.Fatal("expected valid pixel")
	}
	want := 100 * (0.4/0.6 - 0.2) / 0.6
	if math.Abs(v-want) > 1e-4 {
		t.Fatalf("VCI = %f, want %f", v, want)
	}
}

func TestComputeIndexVCIWithoutBaseline(t *testing.T) {
	scene := uniformScene(day(2024, time.June, 1), map[string]float64{
		BandNIR: 0.5,
		BandRed: 0.1,
	}, 0, 4)

	if _, err := ComputeIndex(scene, VCI, allValidMask(), nil); !errors.Is(err, ErrInsufficientBaseline) {
		t.Fatalf("expected ErrInsufficientBaseline, got %v", err)
	}

	// A baseline that lacks the scene's month is just as insufficient.
	base := mapBaseline{time.July: {Min: 0.2, Max: 0.8}}
	if _, err := ComputeIndex(scene, VCI, allValidMask(), base); !errors.Is(err, ErrInsufficientBaseline) {
		t.Fatalf("expected ErrInsufficientBaseline for missing month, got %v", err)
	}
}
