// Package provider contains the REST client for the accounting
// provider's API.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"ledgersync/internal/token"
)

// PageSize is the number of invoices fetched per request.
const PageSize = 100

// TokenSource supplies a valid token for a user's provider session.
type TokenSource interface {
	CurrentToken(ctx context.Context, userID string) (token.Token, error)
}

// InvoicePage is one page of the provider's invoice listing.
type InvoicePage struct {
	Invoices  []json.RawMessage
	Page      int
	PageCount int
}

// Client calls the accounting provider's API with tokens from the
// token manager. Transport errors and non-200 responses surface as
// errors; the next scheduled firing is the retry.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a provider API client.
func NewClient(baseURL string, tokens TokenSource) *Client {
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type invoicesResponse struct {
	Pagination struct {
		Page      int `json:"page"`
		PageCount int `json:"pageCount"`
	} `json:"pagination"`
	Invoices []json.RawMessage `json:"Invoices"`
}

// Invoices fetches one page of invoices for a tenant. Token absence
// (token.ErrNoToken) is returned unwrapped so callers can skip the run.
func (c *Client) Invoices(ctx context.Context, userID, tenantID string, page int) (*InvoicePage, error) {
	tok, err := c.tokens.CurrentToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/Invoices", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(PageSize))
	q.Set("summaryOnly", "false")
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Authorization", tok.TokenType+" "+tok.AccessToken)
	req.Header.Set("Xero-Tenant-Id", tenantID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invoice request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, body)
	}

	var decoded invoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode invoice response: %w", err)
	}

	ipage := &InvoicePage{
		Invoices:  decoded.Invoices,
		Page:      decoded.Pagination.Page,
		PageCount: decoded.Pagination.PageCount,
	}
	if ipage.Page == 0 {
		ipage.Page = page
	}
	if ipage.PageCount == 0 {
		ipage.PageCount = ipage.Page
	}
	return ipage, nil
}
