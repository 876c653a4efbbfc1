package vi

import (
	"strings"
	"time"
)

// VIType names one of the supported spectral index formulas.
type VIType string

const (
	NDVI  VIType = "NDVI"
	EVI   VIType = "EVI"
	GNDVI VIType = "GNDVI"
	NDWI  VIType = "NDWI"
	SAVI  VIType = "SAVI"
	VCI   VIType = "VCI"
)

// VITypes lists every supported index.
func VITypes() []VIType {
	return []VIType{NDVI, EVI, GNDVI, NDWI, SAVI, VCI}
}

// ParseVIType resolves a case-insensitive index name.
func ParseVIType(s string) (VIType, error) {
	t := VIType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range VITypes() {
		if t == known {
			return t, nil
		}
	}
	return "", &InvalidInputError{Field: "vi_type", Reason: "unknown index " + s}
}

// RequiredBands returns the reflectance bands the formula reads.
func (t VIType) RequiredBands() []string {
	switch t {
	case EVI:
		return []string{BandNIR, BandRed, BandBlue}
	case GNDVI, NDWI:
		return []string{BandNIR, BandGreen}
	default: // NDVI, SAVI, VCI
		return []string{BandNIR, BandRed}
	}
}

// BaselineRange holds the historical NDVI extremes VCI is computed against.
type BaselineRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// BaselineSource provides per-calendar-month NDVI extremes for a parcel.
type BaselineSource interface {
	Range(month time.Month) (BaselineRange, bool)
}

// DateRange is an inclusive pair of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (d DateRange) Validate() error {
	if d.Start.IsZero() || d.End.IsZero() {
		return &InvalidInputError{Field: "date_range", Reason: "start and end are required"}
	}
	if d.End.Before(d.Start) {
		return &InvalidInputError{Field: "date_range", Reason: "start date is after end date"}
	}
	return nil
}

// Contains reports whether day falls within the range, inclusive.
func (d DateRange) Contains(day time.Time) bool {
	day = day.Truncate(24 * time.Hour)
	return !day.Before(d.Start.Truncate(24*time.Hour)) && !day.After(d.End.Truncate(24*time.Hour))
}
