// Package brain contains the client for the downstream document
// processing service.
package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Batch is one fetch-and-forward payload. The core never inspects Data;
// it ships whatever the provider returned as-is.
type Batch struct {
	Data         []json.RawMessage `json:"data"`
	BrainID      string            `json:"brainId"`
	DocumentType string            `json:"documentType"`
}

// Client posts document batches to the brain API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a brain API client.
func NewClient(baseURL, apiKey string) *Client {
	// Ensure no trailing slash
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
}

// Process sends one batch to the processing endpoint and returns the
// raw response body.
func (c *Client) Process(ctx context.Context, batch Batch) (json.RawMessage, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch: %w", err)
	}

	url := fmt.Sprintf("%s/v1/file/xero/process", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brain request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read brain response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("brain returned status %d: %s", resp.StatusCode, respBody)
	}

	return respBody, nil
}
