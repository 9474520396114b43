package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// VideoMetadata is the subset of video information the core consumes.
type VideoMetadata struct {
	DurationSeconds float64 `json:"durationSeconds"`
	Title           string  `json:"title"`
	Thumbnail       string  `json:"thumbnail"`
}

// MetadataClient fetches video metadata from the external metadata service.
// All calls carry a bounded timeout; callers treat any error as a dependency
// failure and fail open.
type MetadataClient struct {
	baseURL string
	http    *http.Client
}

func NewMetadataClient(baseURL string, timeout time.Duration) *MetadataClient {
	return &MetadataClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a metadata endpoint is set.
func (c *MetadataClient) Configured() bool {
	return c != nil && c.baseURL != ""
}

// FetchVideoMetadata returns duration, title and thumbnail for a video.
func (c *MetadataClient) FetchVideoMetadata(ctx context.Context, videoID string) (*VideoMetadata, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("metadata service not configured")
	}

	u := fmt.Sprintf("%s/videos/%s", c.baseURL, url.PathEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata service returned status %d", resp.StatusCode)
	}

	var meta VideoMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode metadata response: %w", err)
	}
	return &meta, nil
}
