package sentinel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ricewatch/ricewatch-api/internal/vi"
)

// sceneRef is a catalog hit: enough to decide whether to download pixels.
type sceneRef struct {
	ID         string
	Date       time.Time
	CloudCover float64
}

type catalogRequest struct {
	Collections []string          `json:"collections"`
	Datetime    string            `json:"datetime"`
	Intersects  *geojson.Geometry `json:"intersects"`
	Limit       int               `json:"limit"`
	Next        int               `json:"next,omitempty"`
}

type catalogResponse struct {
	Features []struct {
		ID         string `json:"id"`
		Properties struct {
			Datetime   string  `json:"datetime"`
			CloudCover float64 `json:"eo:cloud_cover"`
		} `json:"properties"`
	} `json:"features"`
	Context struct {
		Next int `json:"next"`
	} `json:"context"`
}

// searchScenes lists archive scenes intersecting the parcel within the
// inclusive date range, ordered by acquisition date ascending. Scenes
// above maxCloudCover are discarded here, before any pixel data moves;
// same-day scenes from different orbit passes are all retained.
func (c *Client) searchScenes(ctx context.Context, parcel orb.Geometry, dates vi.DateRange, maxCloudCover float64) (refs []sceneRef, discarded int, err error) {
	datetime := fmt.Sprintf("%s/%s",
		dates.Start.UTC().Format("2006-01-02T00:00:00Z"),
		dates.End.UTC().Format("2006-01-02T23:59:59Z"))

	next := 0
	for {
		payload := catalogRequest{
			Collections: []string{collection},
			Datetime:    datetime,
			Intersects:  geojson.NewGeometry(parcel),
			Limit:       100,
			Next:        next,
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling catalog request: %w", err)
		}

		var page catalogResponse
		if err := c.postJSON(ctx, catalogURL, body, &page); err != nil {
			return nil, 0, err
		}

		for _, feat := range page.Features {
			acquired, err := time.Parse(time.RFC3339, feat.Properties.Datetime)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: malformed scene datetime %q", vi.ErrArchiveUnavailable, feat.Properties.Datetime)
			}
			if feat.Properties.CloudCover > maxCloudCover {
				discarded++
				continue
			}
			refs = append(refs, sceneRef{
				ID:         feat.ID,
				Date:       acquired.UTC(),
				CloudCover: feat.Properties.CloudCover,
			})
		}

		if page.Context.Next == 0 {
			break
		}
		next = page.Context.Next
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Date.Before(refs[j].Date) })
	return refs, discarded, nil
}

// postJSON sends a catalog/process request and decodes the JSON response,
// translating transport failures into the pipeline's error taxonomy.
func (c *Client) postJSON(ctx context.Context, url string, body []byte, out interface{}) error {
	raw, err := c.post(ctx, url, "application/json", body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", vi.ErrArchiveUnavailable, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, url, accept string, body []byte) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, vi.ErrArchiveTimeout
		}
		return nil, fmt.Errorf("%w: %v", vi.ErrArchiveUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", vi.ErrArchiveUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", vi.ErrArchiveUnavailable, resp.StatusCode, truncate(raw, 200))
	}
	return raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
