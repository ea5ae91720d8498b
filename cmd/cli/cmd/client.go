package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ledgersync/pkg/api"
)

// APIClient handles calls to the ledgersync server.
type APIClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewAPIClient creates a new client with the given base URL and token.
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

func (c *APIClient) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// StartJob sends POST /jobs/start to start a scheduled job.
func (c *APIClient) StartJob(req api.StartJobRequest) (*api.StartJobResponse, error) {
	var result api.StartJobResponse
	if err := c.do(http.MethodPost, "/jobs/start", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StopJob sends POST /jobs/{id}/stop to stop a scheduled job.
func (c *APIClient) StopJob(jobID string) (*api.StopJobResponse, error) {
	var result api.StopJobResponse
	if err := c.do(http.MethodPost, fmt.Sprintf("/jobs/%s/stop", jobID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListJobs sends GET /jobs to list active scheduled jobs.
func (c *APIClient) ListJobs() (*api.ListJobsResponse, error) {
	var result api.ListJobsResponse
	if err := c.do(http.MethodGet, "/jobs", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteCredential sends DELETE /credentials/{user_id} to revoke a
// user's stored token.
func (c *APIClient) DeleteCredential(userID string) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/credentials/%s", userID), nil, nil)
}
