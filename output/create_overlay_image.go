package output

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fogleman/gg"

	"github.com/ricewatch/ricewatch-api/internal/imagery"
	"github.com/ricewatch/ricewatch-api/internal/properties"
	"github.com/ricewatch/ricewatch-api/internal/vi"
)

// visRange maps index values onto a color ramp for overlay rendering.
type visRange struct {
	Min     float64
	Max     float64
	Palette []string
}

var visParams = map[vi.VIType]visRange{
	vi.NDVI:  {-0.2, 0.8, []string{"#ff0000", "#ff4500", "#ffff00", "#9acd32", "#00ff00", "#228b22", "#006400"}},
	vi.EVI:   {-0.1, 0.7, []string{"#8b0000", "#ff4500", "#ffff00", "#9acd32", "#00ff00", "#228b22", "#006400"}},
	vi.GNDVI: {0, 0.8, []string{"#8b0000", "#ff4500", "#ffff00", "#9acd32", "#00ff00", "#228b22", "#006400"}},
	vi.NDWI:  {-0.3, 0.5, []string{"#8b4513", "#daa520", "#ffff99", "#87ceeb", "#4169e1", "#000080"}},
	vi.SAVI:  {-0.1, 0.7, []string{"#8b0000", "#ff4500", "#ffff00", "#9acd32", "#00ff00", "#228b22", "#006400"}},
	vi.VCI:   {0, 100, []string{"#8b0000", "#ff4500", "#ffff00", "#9acd32", "#00ff00", "#228b22", "#006400"}},
}

// CreateOverlayImage renders an index raster as a colorized PNG under
// data/result and returns its path alongside a base64 data URL. No-data
// pixels stay transparent so the overlay composes over base maps.
func CreateOverlayImage(raster *vi.Raster, t vi.VIType, outputName string) (path, dataURL string, err error) {
	resultDir := filepath.Join(properties.RootPath(), "data", "result")
	if err := os.MkdirAll(resultDir, 0755); err != nil {
		return "", "", fmt.Errorf("creating result directory: %w", err)
	}
	path = filepath.Join(resultDir, outputName+".png")

	vis, ok := visParams[t]
	if !ok {
		vis = visParams[vi.NDVI]
	}

	dc := gg.NewContext(raster.Width, raster.Height)
	for row := 0; row < raster.Height; row++ {
		for col := 0; col < raster.Width; col++ {
			v, valid := raster.At(col, row)
			if !valid {
				continue
			}
			dc.SetColor(vis.colorFor(v))
			dc.SetPixel(col, row)
		}
	}

	if err := dc.SavePNG(path); err != nil {
		return "", "", fmt.Errorf("saving overlay: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return path, "", err
	}
	return path, imagery.ToDataURL(raw, "image/png"), nil
}

// colorFor interpolates linearly between adjacent palette stops.
func (v visRange) colorFor(value float64) color.Color {
	t := (value - v.Min) / (v.Max - v.Min)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	segments := float64(len(v.Palette) - 1)
	pos := t * segments
	i := int(pos)
	if i >= len(v.Palette)-1 {
		i = len(v.Palette) - 2
	}
	frac := pos - float64(i)

	r0, g0, b0 := parseHexColor(v.Palette[i])
	r1, g1, b1 := parseHexColor(v.Palette[i+1])
	return color.RGBA{
		R: lerp(r0, r1, frac),
		G: lerp(g0, g1, frac),
		B: lerp(b0, b1, frac),
		A: 255,
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

func parseHexColor(s string) (r, g, b uint8) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0
	}
	rv, _ := strconv.ParseUint(s[0:2], 16, 8)
	gv, _ := strconv.ParseUint(s[2:4], 16, 8)
	bv, _ := strconv.ParseUint(s[4:6], 16, 8)
	return uint8(rv), uint8(gv), uint8(bv)
}
