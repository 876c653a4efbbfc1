package sentinel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Sentinel-2 ground resolution in meters; drives the requested grid size.
const groundResolution = 10.0

// process-API output grid is capped to this many pixels per axis.
const maxAxisPixels = 2500

// evalscript returning the reflectance bands the index formulas read plus
// the two quality bands the mask builder interprets.
const evalscript = `
//VERSION=3
function setup() {
  return {
    input: ["B02", "B03", "B04", "B08", "CLD", "SCL"],
    output: {
      id: "default",
      bands: 6,
      sampleType: SampleType.FLOAT32,
    },
  }
}

function evaluatePixel(sample) {
  return [sample.B02, sample.B03, sample.B04, sample.B08, sample.CLD, sample.SCL];
}
`

// bandOrder matches the evalscript output layout.
var bandOrder = []string{"B02", "B03", "B04", "B08", "CLD", "SCL"}

func axisPixels(degrees float64) int {
	pixels := int(degrees * (111_000.0 / groundResolution))
	if pixels < 1 {
		return 1
	}
	if pixels > maxAxisPixels {
		return maxAxisPixels
	}
	return pixels
}

// requestSceneImage fetches one GeoTIFF covering the parcel for the given
// acquisition day, mosaicking the most recent pass within the day.
func (c *Client) requestSceneImage(ctx context.Context, parcel orb.Geometry, day time.Time) ([]byte, error) {
	bound := parcel.Bound()
	width := axisPixels(bound.Max.X() - bound.Min.X())
	height := axisPixels(bound.Max.Y() - bound.Min.Y())

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Second)

	payload := map[string]interface{}{
		"input": map[string]interface{}{
			"bounds": map[string]interface{}{
				"geometry": geojson.NewGeometry(parcel),
			},
			"data": []map[string]interface{}{
				{
					"type": collection,
					"dataFilter": map[string]interface{}{
						"timeRange": map[string]string{
							"from": from.Format(time.RFC3339),
							"to":   to.Format(time.RFC3339),
						},
					},
				},
			},
		},
		"output": map[string]interface{}{
			"width":  width,
			"height": height,
			"responses": []map[string]interface{}{
				{
					"identifier": "default",
					"format":     map[string]string{"type": "image/tiff"},
				},
			},
		},
		"evalscript": evalscript,
		"mosaicking": "mostRecent",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling process request: %w", err)
	}
	return c.post(ctx, processURL, "image/tiff", body)
}
