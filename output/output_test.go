package output

import (
	"image/color"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ricewatch/ricewatch-api/internal/vi"
)

func TestColorForPaletteEndpoints(t *testing.T) {
	vis := visParams[vi.NDVI]

	low := vis.colorFor(vis.Min)
	if got, want := low.(color.RGBA), (color.RGBA{R: 255, A: 255}); got != want {
		t.Fatalf("min color = %v, want %v", got, want)
	}

	high := vis.colorFor(vis.Max)
	if got, want := high.(color.RGBA), (color.RGBA{G: 100, A: 255}); got != want {
		t.Fatalf("max color = %v, want %v", got, want)
	}

	// Out-of-range values clamp to the palette ends.
	if vis.colorFor(vis.Min-10) != low {
		t.Fatal("value below range did not clamp to first stop")
	}
	if vis.colorFor(vis.Max+10) != high {
		t.Fatal("value above range did not clamp to last stop")
	}
}

func TestParseHexColor(t *testing.T) {
	r, g, b := parseHexColor("#ff4500")
	if r != 255 || g != 69 || b != 0 {
		t.Fatalf("parseHexColor = %d,%d,%d", r, g, b)
	}
	r, g, b = parseHexColor("bogus")
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("malformed color should be black, got %d,%d,%d", r, g, b)
	}
}

func TestCreateSeriesCSV(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	val := 0.55
	series := vi.TimeSeries{
		{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Value: &val, ValidFraction: 0.9, Analysis: "healthy"},
		{Date: time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC), Value: nil, ValidFraction: 0, Unreliable: true},
	}

	path, err := CreateSeriesCSV(series, "series_test")
	if err != nil {
		t.Fatalf("CreateSeriesCSV: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "2024-06-01,0.5500,") {
		t.Fatalf("unexpected first row: %s", lines[1])
	}
	// Nil observation serializes as empty cells, not zeros.
	if !strings.HasPrefix(lines[2], "2024-06-06,,,,") {
		t.Fatalf("nil values should be empty cells: %s", lines[2])
	}
}

func TestCreateOverlayImage(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	r := vi.NewRaster(2, 2, [6]float64{100, 0.0001, 0, 14, 0, -0.0001})
	r.Set(0, 0, 0.6)
	r.Set(1, 0, 0.1)
	r.Set(0, 1, -0.1)
	r.SetNoData(1, 1)

	path, dataURL, err := CreateOverlayImage(r, vi.NDVI, "overlay_test")
	if err != nil {
		t.Fatalf("CreateOverlayImage: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("overlay png missing: %v", err)
	}
	if !strings.HasPrefix(dataURL, "data:image/png;base64,") {
		t.Fatalf("unexpected data URL prefix: %s", dataURL)
	}
}
