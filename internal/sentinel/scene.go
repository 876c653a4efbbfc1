package sentinel

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/airbusgeo/godal"

	"github.com/ricewatch/ricewatch-api/internal/vi"
)

var registerDrivers sync.Once

// decodeScene turns a process-API GeoTIFF into the pipeline's scene model.
// The TIFF is staged to a temp file because GDAL reads from paths. Pixels
// the mosaic left empty come back as NaN and are marked no-data.
func decodeScene(ref sceneRef, tiff []byte) (vi.Scene, error) {
	registerDrivers.Do(godal.RegisterInternalDrivers)

	tmp, err := os.CreateTemp("", "scene-*.tif")
	if err != nil {
		return vi.Scene{}, fmt.Errorf("staging scene %s: %w", ref.ID, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(tiff); err != nil {
		tmp.Close()
		return vi.Scene{}, fmt.Errorf("staging scene %s: %w", ref.ID, err)
	}
	tmp.Close()

	ds, err := godal.Open(tmp.Name(), godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal: %s", msg)
	}))
	if err != nil {
		return vi.Scene{}, fmt.Errorf("opening scene %s: %w", ref.ID, err)
	}
	defer ds.Close()

	bands := ds.Bands()
	if len(bands) < len(bandOrder) {
		return vi.Scene{}, fmt.Errorf("scene %s: expected %d bands, got %d", ref.ID, len(bandOrder), len(bands))
	}

	width := ds.Structure().SizeX
	height := ds.Structure().SizeY
	transform, err := ds.GeoTransform()
	if err != nil {
		return vi.Scene{}, fmt.Errorf("scene %s: reading geotransform: %w", ref.ID, err)
	}

	scene := vi.Scene{
		ID:         ref.ID,
		Date:       ref.Date,
		CloudCover: ref.CloudCover,
		Bands:      make(map[string]*vi.Raster, 4),
	}

	for i, name := range bandOrder {
		raster, err := readBand(bands[i], width, height, transform)
		if err != nil {
			return vi.Scene{}, fmt.Errorf("scene %s: reading band %s: %w", ref.ID, name, err)
		}
		switch name {
		case "CLD":
			scene.CloudProb = raster
		case "SCL":
			scene.SceneClass = raster
		default:
			scene.Bands[name] = raster
		}
	}
	return scene, nil
}

func readBand(band godal.Band, width, height int, transform [6]float64) (*vi.Raster, error) {
	data := make([]float64, width*height)
	if err := band.Read(0, 0, data, width, height); err != nil {
		return nil, err
	}

	raster := vi.NewRaster(width, height, transform)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			v := data[row*width+col]
			if !math.IsNaN(v) {
				raster.Set(col, row, v)
			}
		}
	}
	return raster, nil
}
