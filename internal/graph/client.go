// Package graph reads a SharePoint document library through Microsoft Graph
// using application (client credentials) authentication.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"
	graphScope     = "https://graph.microsoft.com/.default"
	selectFields   = "id,name,webUrl,file"
)

// maxContentSize caps downloaded file content
const maxContentSize = 10 << 20

// Config holds the app registration and target site
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	SiteID       string

	// BaseURL and TokenURL override the public endpoints (tests, sovereign clouds)
	BaseURL  string
	TokenURL string
}

// Validate checks that every credential is present
func (c Config) Validate() error {
	var missing []string
	if c.TenantID == "" {
		missing = append(missing, "tenant_id")
	}
	if c.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if c.SiteID == "" {
		missing = append(missing, "site_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("graph config missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DriveItem is the subset of a Graph driveItem the proxy uses
type DriveItem struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	WebURL string     `json:"webUrl"`
	File   *FileFacet `json:"file,omitempty"`
}

// FileFacet is present only on files, not folders
type FileFacet struct {
	MimeType string `json:"mimeType"`
}

// IsFile reports whether the item is a file
func (d DriveItem) IsFile() bool {
	return d.File != nil
}

// Readable reports whether the file content can be returned as text
func (d DriveItem) Readable() bool {
	if d.File == nil {
		return false
	}
	return strings.Contains(d.File.MimeType, "text") || strings.Contains(d.File.MimeType, "word")
}

// Error is a non-2xx response from Graph
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("graph request failed (%d %s): %s", e.Status, e.Code, e.Message)
}

// Client calls the drive of one SharePoint site
type Client struct {
	http    *http.Client
	baseURL string
	siteID  string
}

// New creates a client authenticated with client credentials
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", url.PathEscape(cfg.TenantID))
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{graphScope},
	}

	return NewWithHTTPClient(cc.Client(ctx), cfg.BaseURL, cfg.SiteID), nil
}

// NewWithHTTPClient creates a client over an already authenticated http.Client
func NewWithHTTPClient(httpClient *http.Client, baseURL, siteID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		siteID:  siteID,
	}
}

// ListChildren returns the items of a folder, relative to the drive root
func (c *Client) ListChildren(ctx context.Context, folderPath string) ([]DriveItem, error) {
	folderPath = strings.Trim(folderPath, "/")

	var endpoint string
	if folderPath == "" {
		endpoint = c.drivePath("/root/children")
	} else {
		endpoint = c.drivePath("/root:/" + escapePath(folderPath) + ":/children")
	}

	var page struct {
		Value []DriveItem `json:"value"`
	}
	if err := c.getJSON(ctx, endpoint+"?$select="+selectFields, &page); err != nil {
		return nil, err
	}
	return page.Value, nil
}

// Search returns items matching query anywhere in the drive
func (c *Client) Search(ctx context.Context, query string) ([]DriveItem, error) {
	if query == "" {
		return nil, errors.New("search query is required")
	}

	// OData string literals escape quotes by doubling them
	q := strings.ReplaceAll(query, "'", "''")
	endpoint := c.drivePath("/root/search(q='" + url.PathEscape(q) + "')")

	var page struct {
		Value []DriveItem `json:"value"`
	}
	if err := c.getJSON(ctx, endpoint+"?$select="+selectFields, &page); err != nil {
		return nil, err
	}
	return page.Value, nil
}

// Item returns a single drive item
func (c *Client) Item(ctx context.Context, itemID string) (*DriveItem, error) {
	var item DriveItem
	if err := c.getJSON(ctx, c.drivePath("/items/"+url.PathEscape(itemID)), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Content downloads the raw bytes of a file
func (c *Client) Content(ctx context.Context, itemID string) ([]byte, error) {
	resp, err := c.get(ctx, c.drivePath("/items/"+url.PathEscape(itemID)+"/content"))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(io.LimitReader(resp.Body, maxContentSize))
}

func (c *Client) drivePath(suffix string) string {
	return c.baseURL + "/sites/" + url.PathEscape(c.siteID) + "/drive" + suffix
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v interface{}) error {
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode graph response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, &Error{Status: resp.StatusCode, Code: body.Error.Code, Message: body.Error.Message}
	}

	return resp, nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
