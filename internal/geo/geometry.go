package geo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/ricewatch/ricewatch-api/internal/properties"
	"github.com/ricewatch/ricewatch-api/internal/vi"
)

// ParseGeometry decodes a GeoJSON geometry into a parcel polygon.
// Only Polygon and MultiPolygon are accepted, and the result must enclose
// a positive area.
func ParseGeometry(data []byte) (orb.Geometry, error) {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, &vi.InvalidInputError{Field: "geometry", Reason: err.Error()}
	}
	return validateParcel(g.Geometry())
}

func validateParcel(geom orb.Geometry) (orb.Geometry, error) {
	switch geom.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return nil, &vi.InvalidInputError{Field: "geometry", Reason: fmt.Sprintf("unsupported geometry type %s", geom.GeoJSONType())}
	}
	if planar.Area(geom) <= 0 {
		return nil, &vi.InvalidInputError{Field: "geometry", Reason: "parcel encloses no area"}
	}
	return geom, nil
}

// Centroid returns the parcel centroid as (lat, lon).
func Centroid(geom orb.Geometry) (float64, float64, error) {
	centroid, area := planar.CentroidArea(geom)
	if area <= 0 {
		return 0, 0, &vi.InvalidInputError{Field: "geometry", Reason: "cannot take centroid of empty parcel"}
	}
	return centroid.Y(), centroid.X(), nil
}

// LoadField reads the parcel geometry for fieldID from data/geojsons/<farm>.geojson.
// The file is a FeatureCollection whose features carry a field_id property;
// a file with a single unlabeled feature matches any requested id.
func LoadField(farm, fieldID string) (orb.Geometry, error) {
	path := filepath.Join(properties.RootPath(), "data", "geojsons", farm+".geojson")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, &vi.InvalidInputError{Field: "geometry", Reason: err.Error()}
	}

	for _, feat := range fc.Features {
		id, ok := feat.Properties["field_id"].(string)
		if ok && id != fieldID {
			continue
		}
		if !ok && len(fc.Features) > 1 {
			continue
		}
		return validateParcel(feat.Geometry)
	}
	return nil, fmt.Errorf("field %s not found in %s", fieldID, path)
}

// ListFields returns the field_id properties present in a farm file.
func ListFields(farm string) ([]string, error) {
	path := filepath.Join(properties.RootPath(), "data", "geojsons", farm+".geojson")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, feat := range fc.Features {
		if id, ok := feat.Properties["field_id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
