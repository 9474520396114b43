package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ClassifierClient calls the external ML classification service to score
// candidate segment ranges. Calls carry a bounded timeout; any error is a
// dependency failure and the auto-moderator fails open.
type ClassifierClient struct {
	baseURL string
	http    *http.Client
}

func NewClassifierClient(baseURL string, timeout time.Duration) *ClassifierClient {
	return &ClassifierClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a classifier endpoint is set.
func (c *ClassifierClient) Configured() bool {
	return c != nil && c.baseURL != ""
}

type classifyRequest struct {
	VideoID string       `json:"videoID"`
	Ranges  [][2]float64 `json:"ranges"`
}

type classifyResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

// Classify returns one acceptance probability per candidate range.
func (c *ClassifierClient) Classify(ctx context.Context, videoID string, ranges [][2]float64) ([]float64, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("classifier service not configured")
	}

	body, err := json.Marshal(classifyRequest{VideoID: videoID, Ranges: ranges})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode classifier response: %w", err)
	}
	if len(out.Probabilities) != len(ranges) {
		return nil, fmt.Errorf("classifier returned %d probabilities for %d ranges",
			len(out.Probabilities), len(ranges))
	}
	return out.Probabilities, nil
}
