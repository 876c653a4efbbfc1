package baseline

import (
	"math"
	"testing"
	"time"

	"github.com/ricewatch/ricewatch-api/internal/vi"
)

func TestStoreObserveAndReload(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	store := NewStore("chiangrai_paddy-7")
	store.Observe(time.Date(2022, time.June, 5, 0, 0, 0, 0, time.UTC), 0.3)
	store.Observe(time.Date(2023, time.June, 9, 0, 0, 0, 0, time.UTC), 0.7)
	store.Observe(time.Date(2023, time.June, 14, 0, 0, 0, 0, time.UTC), 0.5)
	if err := store.Flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded := NewStore("chiangrai_paddy-7")
	r, ok := reloaded.Range(time.June)
	if !ok {
		t.Fatal("expected a June range after reload")
	}
	if math.Abs(r.Min-0.3) > 1e-9 || math.Abs(r.Max-0.7) > 1e-9 {
		t.Fatalf("June range = %+v, want min 0.3 max 0.7", r)
	}

	if _, ok := reloaded.Range(time.December); ok {
		t.Fatal("unobserved month must report no baseline")
	}
}

func TestStoreObserveSeries(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	low, high := 0.2, 0.8
	series := vi.TimeSeries{
		{Date: time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), Value: &low},
		{Date: time.Date(2023, time.May, 20, 0, 0, 0, 0, time.UTC), Value: &high},
		{Date: time.Date(2023, time.May, 25, 0, 0, 0, 0, time.UTC), Value: nil},
	}

	store := NewStore("field-x")
	store.ObserveSeries(series)
	if store.Months() != 1 {
		t.Fatalf("months = %d, want 1", store.Months())
	}
	r, ok := store.Range(time.May)
	if !ok || r.Min != low || r.Max != high {
		t.Fatalf("May range = %+v, want {0.2 0.8}", r)
	}
}

func TestStoreIsBaselineSource(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())
	var _ vi.BaselineSource = NewStore("any")
}
