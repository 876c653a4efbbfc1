package vi

import (
	"time"

	"github.com/paulmach/orb"
)

const testGridSize = 10

// testTransform places a 10x10 grid at 0.0001-degree pixels with the
// top-left corner at (100.0 E, 14.0 N), north-up.
func testTransform() [6]float64 {
	return [6]float64{100.0, 0.0001, 0, 14.0, 0, -0.0001}
}

// testParcel covers the whole test grid with margin on every side.
func testParcel() orb.Polygon {
	return orb.Polygon{{
		{99.999, 13.998},
		{100.002, 13.998},
		{100.002, 14.001},
		{99.999, 14.001},
		{99.999, 13.998},
	}}
}

func filledRaster(v float64) *Raster {
	r := NewRaster(testGridSize, testGridSize, testTransform())
	for row := 0; row < testGridSize; row++ {
		for col := 0; col < testGridSize; col++ {
			r.Set(col, row, v)
		}
	}
	return r
}

// uniformScene builds a scene whose every pixel carries the given band
// reflectances, cloud probability and scene class.
func uniformScene(date time.Time, bands map[string]float64, cld, scl float64) *Scene {
	s := &Scene{
		ID:    "test-" + date.Format("20060102"),
		Date:  date,
		Bands: make(map[string]*Raster, len(bands)),
	}
	for name, v := range bands {
		s.Bands[name] = filledRaster(v)
	}
	s.CloudProb = filledRaster(cld)
	s.SceneClass = filledRaster(scl)
	return s
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(v float64) *float64 { return &v }

type mapBaseline map[time.Month]BaselineRange

func (m mapBaseline) Range(month time.Month) (BaselineRange, bool) {
	r, ok := m[month]
	return r, ok
}
