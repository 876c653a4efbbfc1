package vi

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/sirupsen/logrus"
)

// SceneFetcher queries an imagery archive for scenes intersecting a parcel
// within a date range. Implementations pre-filter on the archive-reported
// scene cloud cover (discarding before any pixel data moves) and report how
// many scenes that dropped. Returned scenes are ordered by acquisition date
// ascending; same-day scenes from different orbit passes are all retained.
type SceneFetcher interface {
	FetchScenes(ctx context.Context, parcel orb.Geometry, dates DateRange, maxCloudCover float64) (scenes []Scene, discarded int, err error)
}

// Options tune one Calculate run.
type Options struct {
	// MaxCloudCover is the scene-level prefilter, percent.
	MaxCloudCover float64
	Mask          MaskOptions
	// MinValidFraction is the validity fraction below which an observation
	// is flagged unreliable (never dropped).
	MinValidFraction float64
	// Workers bounds the per-scene fan-out.
	Workers int
	// Baseline supplies historical NDVI extremes; required for VCI.
	Baseline BaselineSource
	// Progress, when set, is invoked once per processed scene.
	Progress func()
}

func DefaultOptions() Options {
	return Options{
		MaxCloudCover:    80,
		Mask:             MaskOptions{CloudProbThreshold: 30},
		MinValidFraction: 0.2,
		Workers:          4,
	}
}

// Result is the outcome of one Calculate run.
type Result struct {
	VIType               VIType
	Series               TimeSeries
	ScenesConsidered     int
	ScenesDiscardedCloud int
	// Reason explains an empty series ("no imagery" vs. genuinely empty).
	Reason string
}

// Calculate runs the whole pipeline: validate inputs, fetch scenes, then
// per scene build the cloud mask, compute the index and aggregate over the
// parcel, and finally assemble the chronological series. Scene processing
// fans out over a bounded worker pool; scenes share no state, so the only
// synchronization is the collection of their observations. A scene that
// fails to process is logged and dropped, partial series being preferable
// to total failure; a missing VCI baseline aborts the run instead.
func Calculate(ctx context.Context, fetcher SceneFetcher, parcel orb.Geometry, t VIType, dates DateRange, opts Options) (*Result, error) {
	if err := validateParcel(parcel); err != nil {
		return nil, err
	}
	if err := dates.Validate(); err != nil {
		return nil, err
	}
	if _, err := ParseVIType(string(t)); err != nil {
		return nil, err
	}
	if t == VCI && opts.Baseline == nil {
		return nil, ErrInsufficientBaseline
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultOptions().Workers
	}

	result := &Result{VIType: t}

	scenes, discarded, err := fetcher.FetchScenes(ctx, parcel, dates, opts.MaxCloudCover)
	result.ScenesDiscardedCloud = discarded
	if err != nil {
		if errors.Is(err, ErrNoImagery) {
			result.Series = TimeSeries{}
			result.Reason = "no imagery matched the requested period and cloud limit"
			return result, nil
		}
		return nil, fmt.Errorf("fetching scenes: %w", err)
	}
	result.ScenesConsidered = len(scenes)

	var (
		mu       sync.Mutex
		points   []ObservationPoint
		fatalErr error
		once     sync.Once
	)

	wp := workerpool.New(opts.Workers)
	for i := range scenes {
		scene := &scenes[i]
		wp.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			point, err := processScene(scene, t, parcel, opts)
			if opts.Progress != nil {
				opts.Progress()
			}
			if err != nil {
				if errors.Is(err, ErrInsufficientBaseline) {
					once.Do(func() { fatalErr = err })
					return
				}
				logrus.WithFields(logrus.Fields{
					"scene": scene.ID,
					"date":  scene.Date.Format("2006-01-02"),
				}).WithError(err).Warn("dropping scene from series")
				return
			}
			mu.Lock()
			points = append(points, point)
			mu.Unlock()
		})
	}
	wp.StopWait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fatalErr != nil {
		return nil, fatalErr
	}

	result.Series = Assemble(points, opts.MinValidFraction)
	if len(result.Series) == 0 && result.Reason == "" {
		result.Reason = "no scene produced a parcel observation"
	}
	return result, nil
}

func processScene(scene *Scene, t VIType, parcel orb.Geometry, opts Options) (ObservationPoint, error) {
	mask := BuildMask(scene, opts.Mask)
	raster, err := ComputeIndex(scene, t, mask, opts.Baseline)
	if err != nil {
		return ObservationPoint{}, err
	}

	agg := AggregateParcel(raster, parcel)
	point := ObservationPoint{
		Date:          scene.Date,
		Value:         agg.Mean,
		Min:           agg.Min,
		Max:           agg.Max,
		ValidFraction: agg.ValidFraction,
	}
	if point.Value != nil {
		point.Analysis = AnalysisMessage(t, *point.Value)
	}
	return point, nil
}

func validateParcel(parcel orb.Geometry) error {
	switch parcel.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return &InvalidInputError{Field: "geometry", Reason: "expected a Polygon or MultiPolygon"}
	}
	if planar.Area(parcel) <= 0 {
		return &InvalidInputError{Field: "geometry", Reason: "parcel area must be positive"}
	}
	return nil
}
