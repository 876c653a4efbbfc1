package vi

import "fmt"

// AnalysisMessage classifies a parcel-mean index value into a short
// agronomic reading. Thresholds follow the field-monitoring classification
// table for paddy crops.
func AnalysisMessage(t VIType, v float64) string {
	switch t {
	case NDVI:
		switch {
		case v < 0.2:
			return "bare soil or water, field not yet planted"
		case v < 0.4:
			return "early growth, tillering just starting"
		case v < 0.6:
			return "moderate canopy, leaves thickening"
		default:
			return "dense healthy canopy, full leaf development"
		}
	case EVI:
		switch {
		case v < 0.2:
			return "not yet emerged or recovering"
		case v < 0.4:
			return "seedling stage, first green leaves"
		case v < 0.6:
			return "active growth, canopy closing"
		default:
			return "vigorous crop approaching heading"
		}
	case GNDVI:
		switch {
		case v < 0.3:
			return "nitrogen deficient, leaves yellowing"
		case v < 0.6:
			return "average greenness, normal growth"
		case v < 0.8:
			return "deep green, healthy foliage"
		default:
			return "very high greenness, dense leaves"
		}
	case NDWI:
		switch {
		case v < 0.0:
			return "dry soil, no standing water"
		case v < 0.2:
			return "low moisture, irrigation may be needed"
		case v < 0.4:
			return "adequate moisture for paddy"
		default:
			return "flooded or saturated, suits early paddy stages"
		}
	case SAVI:
		switch {
		case v < 0.2:
			return "bare soil, no crop cover"
		case v < 0.4:
			return "partial cover, crop starting to shade soil"
		case v < 0.6:
			return "good cover and greenness"
		default:
			return "very dense green cover"
		}
	case VCI:
		switch {
		case v < 20:
			return "severe stress, likely water or nutrient shortage"
		case v < 40:
			return "stressed, below-normal condition"
		case v < 60:
			return "fair condition relative to history"
		case v < 80:
			return "good condition, above historical average"
		default:
			return "excellent condition, near historical best"
		}
	}
	return fmt.Sprintf("mean %s: %.3f", t, v)
}
