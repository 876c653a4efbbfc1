package vi

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/paulmach/orb"
)

type fakeFetcher struct {
	scenes    []Scene
	discarded int
	err       error
}

func (f *fakeFetcher) FetchScenes(ctx context.Context, parcel orb.Geometry, dates DateRange, maxCloudCover float64) ([]Scene, int, error) {
	return f.scenes, f.discarded, f.err
}

func clearScene(d time.Time, nir, red float64) Scene {
	return *uniformScene(d, map[string]float64{BandNIR: nir, BandRed: red}, 0, 4)
}

func TestCalculateNoImageryIsNotAnError(t *testing.T) {
	fetcher := &fakeFetcher{err: ErrNoImagery, discarded: 2}

	result, err := Calculate(context.Background(), fetcher, testParcel(), NDVI,
		DateRange{Start: day(2024, time.June, 1), End: day(2024, time.June, 30)}, DefaultOptions())
	if err != nil {
		t.Fatalf("no imagery must not surface as an error, got %v", err)
	}
	if len(result.Series) != 0 || result.ScenesConsidered != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if result.ScenesDiscardedCloud != 2 {
		t.Fatalf("discarded = %d, want 2", result.ScenesDiscardedCloud)
	}
	if result.Reason == "" {
		t.Fatal("empty series must carry a reason")
	}
}

func TestCalculateNDVISeries(t *testing.T) {
	fetcher := &fakeFetcher{
		scenes: []Scene{
			clearScene(day(2024, time.June, 11), 0.5, 0.1),
			clearScene(day(2024, time.June, 1), 0.5, 0.1),
		},
		discarded: 1,
	}

	result, err := Calculate(context.Background(), fetcher, testParcel(), NDVI,
		DateRange{Start: day(2024, time.June, 1), End: day(2024, time.June, 30)}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ScenesConsidered != 2 || result.ScenesDiscardedCloud != 1 {
		t.Fatalf("metadata = %d considered / %d discarded, want 2 / 1", result.ScenesConsidered, result.ScenesDiscardedCloud)
	}
	if len(result.Series) != 2 {
		t.Fatalf("series length = %d, want 2", len(result.Series))
	}
	if !result.Series[0].Date.Before(result.Series[1].Date) {
		t.Fatal("series must be date-ascending regardless of fetch order")
	}

	first := result.Series[0]
	if first.Value == nil || math.Abs(*first.Value-0.6667) > 1e-4 {
		t.Fatalf("NDVI = %v, want 0.6667", first.Value)
	}
	if first.ValidFraction != 1.0 {
		t.Fatalf("validity fraction = %f, want 1.0", first.ValidFraction)
	}
	if first.Analysis == "" {
		t.Fatal("valued observations should carry an analysis message")
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	fetcher := &fakeFetcher{
		scenes: []Scene{
			clearScene(day(2024, time.June, 1), 0.5, 0.1),
			clearScene(day(2024, time.June, 6), 0.4, 0.2),
			clearScene(day(2024, time.June, 11), 0.3, 0.3),
		},
	}
	dates := DateRange{Start: day(2024, time.June, 1), End: day(2024, time.June, 30)}

	a, err := Calculate(context.Background(), fetcher, testParcel(), NDVI, dates, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Calculate(context.Background(), fetcher, testParcel(), NDVI, dates, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs against an unchanged archive must yield identical series")
	}
}

func TestCalculateIsolatesBadScenes(t *testing.T) {
	corrupt := clearScene(day(2024, time.June, 6), 0.5, 0.1)
	delete(corrupt.Bands, BandNIR)

	fetcher := &fakeFetcher{
		scenes: []Scene{
			clearScene(day(2024, time.June, 1), 0.5, 0.1),
			corrupt,
		},
	}

	result, err := Calculate(context.Background(), fetcher, testParcel(), NDVI,
		DateRange{Start: day(2024, time.June, 1), End: day(2024, time.June, 30)}, DefaultOptions())
	if err != nil {
		t.Fatalf("a single bad scene must not fail the call: %v", err)
	}
	if len(result.Series) != 1 {
		t.Fatalf("series length = %d, want 1 (bad scene dropped)", len(result.Series))
	}
}

func TestCalculateFullyCloudedSceneStaysInSeries(t *testing.T) {
	clouded := *uniformScene(day(2024, time.June, 1), map[string]float64{BandNIR: 0.5, BandRed: 0.1}, 90, 9)
	fetcher := &fakeFetcher{scenes: []Scene{clouded}}

	result, err := Calculate(context.Background(), fetcher, testParcel(), NDVI,
		DateRange{Start: day(2024, time.June, 1), End: day(2024, time.June, 30)}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Series) != 1 {
		t.Fatalf("series length = %d, want 1", len(result.Series))
	}
	point := result.Series[0]
	if point.Value != nil || point.ValidFraction != 0 || !point.Unreliable {
		t.Fatalf("fully clouded scene should report a nil, unreliable, zero-validity point, got %+v", point)
	}
}

func TestCalculateVCIRequiresBaseline(t *testing.T) {
	fetcher := &fakeFetcher{scenes: []Scene{clearScene(day(2024, time.June, 1), 0.5, 0.1)}}
	dates := DateRange{Start: day(2024, time.June, 1), End: day(2024, time.June, 30)}

	if _, err := Calculate(context.Background(), fetcher, testParcel(), VCI, dates, DefaultOptions()); !errors.Is(err, ErrInsufficientBaseline) {
		t.Fatalf("expected ErrInsufficientBaseline, got %v", err)
	}

	opts := DefaultOptions()
	opts.Baseline = mapBaseline{time.July: {Min: 0.2, Max: 0.8}} // wrong month
	if _, err := Calculate(context.Background(), fetcher, testParcel(), VCI, dates, opts); !errors.Is(err, ErrInsufficientBaseline) {
		t.Fatalf("expected ErrInsufficientBaseline for missing month, got %v", err)
	}

	opts.Baseline = mapBaseline{time.June: {Min: 0.2, Max: 0.8}}
	result, err := Calculate(context.Background(), fetcher, testParcel(), VCI, dates, opts)
	if err != nil {
		t.Fatalf("unexpected error with a complete baseline: %v", err)
	}
	if len(result.Series) != 1 {
		t.Fatalf("series length = %d, want 1", len(result.Series))
	}
}

func TestCalculateValidatesInputs(t *testing.T) {
	fetcher := &fakeFetcher{}
	goodDates := DateRange{Start: day(2024, time.June, 1), End: day(2024, time.June, 30)}
	var invalid *InvalidInputError

	_, err := Calculate(context.Background(), fetcher, orb.Point{0, 0}, NDVI, goodDates, DefaultOptions())
	if !errors.As(err, &invalid) {
		t.Fatalf("point geometry: expected InvalidInputError, got %v", err)
	}

	degenerate := orb.Polygon{{{0, 0}, {1, 1}, {0, 0}}}
	_, err = Calculate(context.Background(), fetcher, degenerate, NDVI, goodDates, DefaultOptions())
	if !errors.As(err, &invalid) {
		t.Fatalf("zero-area polygon: expected InvalidInputError, got %v", err)
	}

	backwards := DateRange{Start: day(2024, time.June, 30), End: day(2024, time.June, 1)}
	_, err = Calculate(context.Background(), fetcher, testParcel(), NDVI, backwards, DefaultOptions())
	if !errors.As(err, &invalid) {
		t.Fatalf("reversed range: expected InvalidInputError, got %v", err)
	}

	_, err = Calculate(context.Background(), fetcher, testParcel(), "NDXI", goodDates, DefaultOptions())
	if !errors.As(err, &invalid) {
		t.Fatalf("unknown index: expected InvalidInputError, got %v", err)
	}
}

func TestCalculateCancellation(t *testing.T) {
	fetcher := &fakeFetcher{scenes: []Scene{clearScene(day(2024, time.June, 1), 0.5, 0.1)}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Calculate(ctx, fetcher, testParcel(), NDVI,
		DateRange{Start: day(2024, time.June, 1), End: day(2024, time.June, 30)}, DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
