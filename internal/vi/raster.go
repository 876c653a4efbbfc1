package vi

import "time"

// Sentinel-2 L2A band identifiers used by the index formulas.
const (
	BandBlue  = "B02"
	BandGreen = "B03"
	BandRed   = "B04"
	BandNIR   = "B08"
)

// Raster is a single-band pixel grid aligned to one scene, stored row-major.
// Valid marks pixels that carry data; the value under an invalid pixel is
// meaningless and must never be read. Zero is a legitimate index value and
// is never used as a no-data sentinel.
type Raster struct {
	Width  int
	Height int
	Values []float64
	Valid  []bool

	// Transform is a GDAL-style geotransform with no rotation terms:
	// lon = Transform[0] + Transform[1]*col, lat = Transform[3] + Transform[5]*row.
	Transform [6]float64
}

func NewRaster(width, height int, transform [6]float64) *Raster {
	return &Raster{
		Width:     width,
		Height:    height,
		Values:    make([]float64, width*height),
		Valid:     make([]bool, width*height),
		Transform: transform,
	}
}

func (r *Raster) index(col, row int) int {
	return row*r.Width + col
}

// At returns the value at (col, row) and whether it carries data.
func (r *Raster) At(col, row int) (float64, bool) {
	i := r.index(col, row)
	if !r.Valid[i] {
		return 0, false
	}
	return r.Values[i], true
}

func (r *Raster) Set(col, row int, v float64) {
	i := r.index(col, row)
	r.Values[i] = v
	r.Valid[i] = true
}

func (r *Raster) SetNoData(col, row int) {
	i := r.index(col, row)
	r.Values[i] = 0
	r.Valid[i] = false
}

// CenterLonLat maps a pixel to the geographic coordinates of its center.
func (r *Raster) CenterLonLat(col, row int) (float64, float64) {
	lon := r.Transform[0] + r.Transform[1]*(float64(col)+0.5)
	lat := r.Transform[3] + r.Transform[5]*(float64(row)+0.5)
	return lon, lat
}

// Scene is one satellite acquisition intersecting the requested parcel.
// Bands, CloudProb and SceneClass share the same grid and geotransform.
// Scenes live only for the duration of a pipeline run.
type Scene struct {
	ID         string
	Date       time.Time // acquisition day, UTC midnight
	CloudCover float64   // archive-reported scene cloud cover, percent

	Bands      map[string]*Raster
	CloudProb  *Raster // per-pixel cloud probability, 0-100
	SceneClass *Raster // Sen2Cor scene classification (SCL)
}

// Grid returns the scene's raster dimensions, taken from any band.
func (s *Scene) Grid() (width, height int) {
	for _, b := range s.Bands {
		return b.Width, b.Height
	}
	if s.CloudProb != nil {
		return s.CloudProb.Width, s.CloudProb.Height
	}
	return 0, 0
}
