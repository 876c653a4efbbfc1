package vi

import (
	"fmt"
	"math"
)

// denominators below this magnitude mark the pixel as no data rather than
// producing a huge or infinite ratio; common over water and deep shadow.
const denominatorEpsilon = 1e-12

// ComputeIndex applies the formula for t to the scene's reflectance bands
// and returns a raster on the scene's grid. Pixels invalid per mask, with
// missing band data, or with a degenerate denominator come out as no data.
// VCI additionally needs the parcel's historical NDVI extremes for the
// scene's calendar month; without them it fails with ErrInsufficientBaseline.
func ComputeIndex(scene *Scene, t VIType, mask []bool, baseline BaselineSource) (*Raster, error) {
	for _, name := range t.RequiredBands() {
		if scene.Bands[name] == nil {
			return nil, fmt.Errorf("scene %s: missing band %s", scene.ID, name)
		}
	}

	var base BaselineRange
	if t == VCI {
		if baseline == nil {
			return nil, ErrInsufficientBaseline
		}
		b, ok := baseline.Range(scene.Date.Month())
		if !ok || b.Max <= b.Min {
			return nil, fmt.Errorf("%w: month %s", ErrInsufficientBaseline, scene.Date.Month())
		}
		base = b
	}

	ref := scene.Bands[t.RequiredBands()[0]]
	out := NewRaster(ref.Width, ref.Height, ref.Transform)

	for row := 0; row < ref.Height; row++ {
		for col := 0; col < ref.Width; col++ {
			if mask != nil && !mask[row*ref.Width+col] {
				continue
			}
			v, ok := evaluate(scene, t, col, row, base)
			if ok {
				out.Set(col, row, v)
			}
		}
	}
	return out, nil
}

func evaluate(scene *Scene, t VIType, col, row int, base BaselineRange) (float64, bool) {
	band := func(name string) (float64, bool) {
		return scene.Bands[name].At(col, row)
	}

	switch t {
	case NDVI:
		nir, ok1 := band(BandNIR)
		red, ok2 := band(BandRed)
		if !ok1 || !ok2 {
			return 0, false
		}
		return normalizedDifference(nir, red)

	case EVI:
		nir, ok1 := band(BandNIR)
		red, ok2 := band(BandRed)
		blue, ok3 := band(BandBlue)
		if !ok1 || !ok2 || !ok3 {
			return 0, false
		}
		return safeRatio(2.5*(nir-red), nir+6*red-7.5*blue+1)

	case GNDVI:
		nir, ok1 := band(BandNIR)
		green, ok2 := band(BandGreen)
		if !ok1 || !ok2 {
			return 0, false
		}
		return normalizedDifference(nir, green)

	case NDWI:
		nir, ok1 := band(BandNIR)
		green, ok2 := band(BandGreen)
		if !ok1 || !ok2 {
			return 0, false
		}
		return normalizedDifference(green, nir)

	case SAVI:
		nir, ok1 := band(BandNIR)
		red, ok2 := band(BandRed)
		if !ok1 || !ok2 {
			return 0, false
		}
		return safeRatio(1.5*(nir-red), nir+red+0.5)

	case VCI:
		nir, ok1 := band(BandNIR)
		red, ok2 := band(BandRed)
		if !ok1 || !ok2 {
			return 0, false
		}
		ndvi, ok := normalizedDifference(nir, red)
		if !ok {
			return 0, false
		}
		return 100 * (ndvi - base.Min) / (base.Max - base.Min), true
	}
	return 0, false
}

func normalizedDifference(a, b float64) (float64, bool) {
	return safeRatio(a-b, a+b)
}

func safeRatio(num, den float64) (float64, bool) {
	if math.Abs(den) < denominatorEpsilon {
		return 0, false
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
