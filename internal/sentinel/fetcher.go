package sentinel

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ricewatch/ricewatch-api/internal/vi"
)

// Fetcher is the archive-backed vi.SceneFetcher: catalog search first,
// then bounded concurrent band downloads for the surviving scenes.
type Fetcher struct {
	client *Client

	// Concurrency bounds parallel process-API downloads; the archive
	// rate-limits aggressively, so keep this small.
	Concurrency int
}

func NewFetcher() (*Fetcher, error) {
	client, err := NewClient()
	if err != nil {
		return nil, err
	}
	return &Fetcher{client: client, Concurrency: 3}, nil
}

// FetchScenes implements vi.SceneFetcher. Scenes whose reported cloud
// cover exceeds maxCloudCover are discarded at the catalog stage without
// touching pixel data. A scene whose download or decode fails is dropped
// and logged; an archive timeout aborts the whole fetch so callers can
// distinguish "nothing found" from "couldn't determine".
func (f *Fetcher) FetchScenes(ctx context.Context, parcel orb.Geometry, dates vi.DateRange, maxCloudCover float64) ([]vi.Scene, int, error) {
	refs, discarded, err := f.client.searchScenes(ctx, parcel, dates, maxCloudCover)
	if err != nil {
		return nil, 0, err
	}
	if len(refs) == 0 {
		return nil, discarded, vi.ErrNoImagery
	}

	var (
		mu     sync.Mutex
		scenes []vi.Scene
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.Concurrency)
	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			tiff, err := f.client.requestSceneImage(gctx, parcel, ref.Date)
			if err != nil {
				if errors.Is(err, vi.ErrArchiveTimeout) {
					return err
				}
				logrus.WithField("scene", ref.ID).WithError(err).Warn("skipping scene: download failed")
				return nil
			}
			scene, err := decodeScene(ref, tiff)
			if err != nil {
				logrus.WithField("scene", ref.ID).WithError(err).Warn("skipping scene: decode failed")
				return nil
			}
			mu.Lock()
			scenes = append(scenes, scene)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, discarded, err
	}

	if len(scenes) == 0 {
		return nil, discarded, vi.ErrNoImagery
	}
	sort.Slice(scenes, func(i, j int) bool { return scenes[i].Date.Before(scenes[j].Date) })
	return scenes, discarded, nil
}
