// Package geocoding resolves a parcel centroid to a human-readable
// address via Nominatim. It sits outside the VI pipeline; results are
// cached on disk because reverse geocodes of a fixed field never change.
package geocoding

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ricewatch/ricewatch-api/internal/cache"
	"github.com/ricewatch/ricewatch-api/internal/properties"
)

const userAgent = "ricewatch-field-monitor"

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Village       string `json:"village"`
		Hamlet        string `json:"hamlet"`
		Suburb        string `json:"suburb"`
		Neighbourhood string `json:"neighbourhood"`
		City          string `json:"city"`
		Town          string `json:"town"`
		Municipality  string `json:"municipality"`
		State         string `json:"state"`
		Province      string `json:"province"`
	} `json:"address"`
}

type Geocoder struct {
	http  *retryablehttp.Client
	cache *cache.FileStore[string]
}

func NewGeocoder() *Geocoder {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	rc.Logger = nil
	return &Geocoder{
		http:  rc,
		cache: cache.NewFileStore[string]("geocoding"),
	}
}

// ReverseGeocode resolves coordinates to an address string.
func (g *Geocoder) ReverseGeocode(lat, lng float64) (string, error) {
	key := g.cache.Key(fmt.Sprintf("%.6f", lat), fmt.Sprintf("%.6f", lng))
	if addr, ok := g.cache.Lookup(key); ok {
		return addr, nil
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lng))
	params.Set("format", "json")
	params.Set("accept-language", "th,en")
	params.Set("zoom", "14")
	params.Set("addressdetails", "1")

	req, err := retryablehttp.NewRequest(http.MethodGet, properties.NominatimURL()+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode failed with status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding geocode response: %w", err)
	}

	addr := formatAddress(body)
	if addr != "" {
		if err := g.cache.Save(key, addr); err != nil {
			return addr, nil // cache failure is not the caller's problem
		}
	}
	return addr, nil
}

// formatAddress assembles village / subdistrict / district / province
// levels when present, falling back to the first display-name segments.
func formatAddress(r nominatimResponse) string {
	var parts []string
	if v := first(r.Address.Village, r.Address.Hamlet); v != "" {
		parts = append(parts, v)
	}
	if v := first(r.Address.Suburb, r.Address.Neighbourhood); v != "" {
		parts = append(parts, v)
	}
	if v := first(r.Address.City, r.Address.Town, r.Address.Municipality); v != "" {
		parts = append(parts, v)
	}
	if v := first(r.Address.State, r.Address.Province); v != "" {
		parts = append(parts, v)
	}
	if len(parts) >= 2 {
		return strings.Join(parts, " ")
	}

	segments := strings.Split(r.DisplayName, ",")
	if len(segments) > 3 {
		segments = segments[:3]
	}
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}
	return strings.Join(segments, ", ")
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
