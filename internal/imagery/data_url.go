// Package imagery converts rendered imagery into base64 data URLs for
// presentation layers. It consumes pipeline output but is not part of it.
package imagery

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ToDataURL encodes raw image bytes as a data URL.
func ToDataURL(imageBytes []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageBytes))
}

// NormalizeBase64 wraps a bare base64 string into a PNG data URL, passing
// through strings that already carry a data-URL prefix.
func NormalizeBase64(b64 string) string {
	b64 = strings.TrimSpace(b64)
	if strings.HasPrefix(b64, "data:image") {
		return b64
	}
	return "data:image/png;base64," + b64
}

// FetchAsDataURL downloads an image and returns it as a PNG data URL.
func FetchAsDataURL(imageURL string) (string, error) {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	rc.Logger = nil

	resp, err := rc.Get(imageURL)
	if err != nil {
		return "", fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image download failed with status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	return ToDataURL(raw, resp.Header.Get("Content-Type")), nil
}
