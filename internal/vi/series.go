package vi

import (
	"time"

	"github.com/ricewatch/ricewatch-api/internal/utils"
)

// ObservationPoint is one parcel-level measurement. Value is nil when no
// valid pixel overlapped the parcel that day; the point is still reported
// so a clouded-out date stays visible in the series.
type ObservationPoint struct {
	Date          time.Time
	Value         *float64
	Min           *float64
	Max           *float64
	ValidFraction float64

	// Unreliable flags points whose validity fraction fell below the
	// configured minimum. Callers decide whether to filter them.
	Unreliable bool

	Analysis string
}

// TimeSeries is an ordered sequence of observations with strictly
// increasing dates.
type TimeSeries []ObservationPoint

// Assemble merges per-scene observations into a chronological series.
// Observations sharing a calendar day collapse into one point whose value
// is the validity-fraction-weighted average of the inputs; when every
// same-day input has fraction 0 the merged point keeps a nil value. The
// merged point's fraction is the mean of the inputs' fractions. Gaps are
// not interpolated: one point per distinct date that had a scene, nothing
// more. An empty result is valid output.
func Assemble(points []ObservationPoint, minValidFraction float64) TimeSeries {
	byDay := make(map[time.Time][]ObservationPoint)
	for _, p := range points {
		day := utils.Day(p.Date)
		byDay[day] = append(byDay[day], p)
	}

	series := make(TimeSeries, 0, len(byDay))
	for _, day := range utils.SortedDateKeys(byDay) {
		merged := mergeSameDay(day, byDay[day])
		merged.Unreliable = merged.ValidFraction < minValidFraction
		series = append(series, merged)
	}
	return series
}

func mergeSameDay(day time.Time, group []ObservationPoint) ObservationPoint {
	if len(group) == 1 {
		p := group[0]
		p.Date = day
		return p
	}

	merged := ObservationPoint{Date: day}
	var weightedSum, weightTotal, fractionSum float64
	for _, p := range group {
		fractionSum += p.ValidFraction
		if p.Value != nil && p.ValidFraction > 0 {
			weightedSum += *p.Value * p.ValidFraction
			weightTotal += p.ValidFraction
		}
		if p.Min != nil && (merged.Min == nil || *p.Min < *merged.Min) {
			v := *p.Min
			merged.Min = &v
		}
		if p.Max != nil && (merged.Max == nil || *p.Max > *merged.Max) {
			v := *p.Max
			merged.Max = &v
		}
	}

	merged.ValidFraction = fractionSum / float64(len(group))
	if weightTotal > 0 {
		v := weightedSum / weightTotal
		merged.Value = &v
	}
	return merged
}

// BucketAverage is a reduction of a series over calendar months or years.
type BucketAverage struct {
	Date  time.Time // first day of the bucket
	Value float64
	Count int // observations with a value that fed the average
}

// MonthlyAverages reduces the series to one mean per calendar month,
// skipping nil-valued points. Months without any valued observation are
// omitted.
func (s TimeSeries) MonthlyAverages() []BucketAverage {
	return s.bucketAverages(func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	})
}

// YearlyAverages reduces the series to one mean per calendar year.
func (s TimeSeries) YearlyAverages() []BucketAverage {
	return s.bucketAverages(func(t time.Time) time.Time {
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	})
}

func (s TimeSeries) bucketAverages(bucket func(time.Time) time.Time) []BucketAverage {
	sums := make(map[time.Time]*BucketAverage)
	for _, p := range s {
		if p.Value == nil {
			continue
		}
		key := bucket(p.Date)
		b, ok := sums[key]
		if !ok {
			b = &BucketAverage{Date: key}
			sums[key] = b
		}
		b.Value += *p.Value
		b.Count++
	}

	out := make([]BucketAverage, 0, len(sums))
	for _, key := range utils.SortedDateKeys(sums) {
		b := sums[key]
		b.Value /= float64(b.Count)
		out = append(out, *b)
	}
	return out
}
