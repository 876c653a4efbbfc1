package utils

import (
	"sort"
	"time"
)

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func SortDatesAscending(dates []time.Time) []time.Time {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}

// SortedDateKeys returns a map's date keys in ascending order, for stable
// iteration over per-date collections.
func SortedDateKeys[T any](m map[time.Time]T) []time.Time {
	keys := make([]time.Time, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return SortDatesAscending(keys)
}
