package vi

import (
	"github.com/montanaflynn/stats"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Aggregate is the parcel-level reduction of one index raster.
// Mean/Min/Max are nil when no valid pixel fell inside the parcel.
type Aggregate struct {
	Mean          *float64
	Min           *float64
	Max           *float64
	ValidFraction float64
	ValidPixels   int
	TotalPixels   int
}

// AggregateParcel clips the raster to the parcel polygon using the
// pixel-center-in-polygon rule (a pixel belongs to the parcel iff its
// center point lies inside the geometry; deterministic and independent of
// pixel area) and reduces the valid in-polygon values to mean/min/max.
// ValidFraction is valid-in-polygon over total-in-polygon, so a fully
// clouded overlap reports 0 rather than disappearing.
func AggregateParcel(r *Raster, parcel orb.Geometry) Aggregate {
	var agg Aggregate
	values := make([]float64, 0, r.Width*r.Height)

	for row := 0; row < r.Height; row++ {
		for col := 0; col < r.Width; col++ {
			lon, lat := r.CenterLonLat(col, row)
			if !containsPoint(parcel, orb.Point{lon, lat}) {
				continue
			}
			agg.TotalPixels++
			if v, ok := r.At(col, row); ok {
				agg.ValidPixels++
				values = append(values, v)
			}
		}
	}

	if agg.TotalPixels > 0 {
		agg.ValidFraction = float64(agg.ValidPixels) / float64(agg.TotalPixels)
	}
	if len(values) == 0 {
		return agg
	}

	// stats errors only on empty input, which is excluded above.
	mean, _ := stats.Mean(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	agg.Mean = &mean
	agg.Min = &min
	agg.Max = &max
	return agg
}

func containsPoint(g orb.Geometry, p orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, p)
	default:
		return false
	}
}
