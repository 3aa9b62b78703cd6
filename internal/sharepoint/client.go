package sharepoint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// APIError is a non-2xx response from the lookup endpoint
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sharepoint lookup failed (%d): %s", e.Status, e.Message)
}

// Client queries GET /api/sharepoint on the assistant server
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a lookup client. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Documents implements Catalog
func (c *Client) Documents(ctx context.Context, query string) ([]Document, error) {
	res, err := c.Lookup(ctx, KindDocuments, query)
	return res.Documents, err
}

// Reports implements Catalog
func (c *Client) Reports(ctx context.Context, query string) ([]Report, error) {
	res, err := c.Lookup(ctx, KindReports, query)
	return res.Reports, err
}

// Lookup performs a raw lookup. The kind is passed through unvalidated so the
// server decides what is acceptable.
func (c *Client) Lookup(ctx context.Context, kind Kind, query string) (Result, error) {
	params := url.Values{}
	params.Set("type", string(kind))
	params.Set("query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/sharepoint?"+params.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("sharepoint lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
		return Result{}, &APIError{Status: resp.StatusCode, Message: body.Error}
	}

	result := Result{Kind: kind}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode sharepoint response: %w", err)
	}
	return result, nil
}
