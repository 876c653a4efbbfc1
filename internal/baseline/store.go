// Package baseline persists per-parcel historical NDVI extremes, the
// reference VCI is computed against. Extremes are kept per calendar month
// so a June scene is always compared with past Junes.
package baseline

import (
	"time"

	"github.com/ricewatch/ricewatch-api/internal/cache"
	"github.com/ricewatch/ricewatch-api/internal/vi"
)

type monthRanges map[time.Month]vi.BaselineRange

// Store holds one parcel's baseline. It satisfies vi.BaselineSource.
type Store struct {
	fieldID string
	files   *cache.FileStore[monthRanges]
	ranges  monthRanges
	loaded  bool
}

func NewStore(fieldID string) *Store {
	return &Store{
		fieldID: fieldID,
		files:   cache.NewFileStore[monthRanges]("baseline"),
	}
}

func (s *Store) load() {
	if s.loaded {
		return
	}
	s.loaded = true
	if ranges, ok := s.files.Lookup(s.files.Key(s.fieldID)); ok {
		s.ranges = ranges
		return
	}
	s.ranges = make(monthRanges)
}

// Range returns the stored NDVI extremes for a calendar month.
func (s *Store) Range(month time.Month) (vi.BaselineRange, bool) {
	s.load()
	r, ok := s.ranges[month]
	return r, ok
}

// Observe widens the stored extremes for the observation's month. Used to
// seed or refresh the baseline from an NDVI series of past seasons.
func (s *Store) Observe(date time.Time, ndvi float64) {
	s.load()
	r, ok := s.ranges[date.Month()]
	if !ok {
		s.ranges[date.Month()] = vi.BaselineRange{Min: ndvi, Max: ndvi}
		return
	}
	if ndvi < r.Min {
		r.Min = ndvi
	}
	if ndvi > r.Max {
		r.Max = ndvi
	}
	s.ranges[date.Month()] = r
}

// ObserveSeries folds a whole NDVI series into the baseline, skipping
// points without a value.
func (s *Store) ObserveSeries(series vi.TimeSeries) {
	for _, p := range series {
		if p.Value != nil {
			s.Observe(p.Date, *p.Value)
		}
	}
}

// Months reports how many calendar months currently have extremes.
func (s *Store) Months() int {
	s.load()
	return len(s.ranges)
}

// Flush persists the in-memory extremes.
func (s *Store) Flush() error {
	s.load()
	return s.files.Save(s.files.Key(s.fieldID), s.ranges)
}
