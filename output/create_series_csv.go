package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/ricewatch/ricewatch-api/internal/properties"
	"github.com/ricewatch/ricewatch-api/internal/vi"
)

type seriesRow struct {
	Date          string  `csv:"date"`
	Value         string  `csv:"value"`
	Min           string  `csv:"min"`
	Max           string  `csv:"max"`
	ValidFraction float64 `csv:"validity_fraction"`
	Unreliable    bool    `csv:"unreliable"`
	Analysis      string  `csv:"analysis"`
}

// CreateSeriesCSV writes a time series to data/result/<name>.csv.
// Nil values serialize as empty cells, never as zero.
func CreateSeriesCSV(series vi.TimeSeries, outputName string) (string, error) {
	resultDir := filepath.Join(properties.RootPath(), "data", "result")
	if err := os.MkdirAll(resultDir, 0755); err != nil {
		return "", fmt.Errorf("creating result directory: %w", err)
	}
	path := filepath.Join(resultDir, outputName+".csv")

	rows := make([]seriesRow, 0, len(series))
	for _, p := range series {
		rows = append(rows, seriesRow{
			Date:          p.Date.Format("2006-01-02"),
			Value:         formatOptional(p.Value),
			Min:           formatOptional(p.Min),
			Max:           formatOptional(p.Max),
			ValidFraction: p.ValidFraction,
			Unreliable:    p.Unreliable,
			Analysis:      p.Analysis,
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating csv file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return "", fmt.Errorf("writing csv: %w", err)
	}
	return path, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.4f", *v)
}
