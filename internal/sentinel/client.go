// Package sentinel implements the scene catalog accessor against the
// Copernicus Data Space Sentinel Hub APIs: the Catalog API for scene
// discovery and the Process API for band retrieval.
package sentinel

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ricewatch/ricewatch-api/internal/properties"
)

const (
	processURL = "https://sh.dataspace.copernicus.eu/api/v1/process"
	catalogURL = "https://sh.dataspace.copernicus.eu/api/v1/catalog/1.0.0/search"
	collection = "sentinel-2-l2a"
)

// Client talks to the imagery archive with OAuth2 client credentials and
// retries transient failures with backoff. Archive access is the
// serialization point of the pipeline, so throttling responses (429/5xx)
// back off here instead of surfacing immediately.
type Client struct {
	http *retryablehttp.Client
}

// NewClient builds a client from the COPERNICUS_* environment variables.
func NewClient() (*Client, error) {
	clientID := properties.CopernicusClientID()
	clientSecret := properties.CopernicusClientSecret()
	tokenURL := properties.CopernicusTokenURL()
	if clientID == "" || clientSecret == "" || tokenURL == "" {
		return nil, fmt.Errorf("missing required environment variables: COPERNICUS_CLIENT_ID, COPERNICUS_CLIENT_SECRET, or COPERNICUS_TOKEN_URL")
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 4
	rc.RetryWaitMin = 2 * time.Second
	rc.RetryWaitMax = 30 * time.Second
	rc.Logger = nil
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logrus.WithFields(logrus.Fields{"url": req.URL.Path, "attempt": attempt}).
				Debug("retrying archive request")
		}
	}
	// The OAuth2 transport refreshes tokens underneath the retry layer.
	rc.HTTPClient = config.Client(context.Background())

	return &Client{http: rc}, nil
}
