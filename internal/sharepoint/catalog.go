// Package sharepoint provides the document and report lookup used to ground
// assistant answers. The catalog is a fixed sample set standing in for a
// SharePoint site; Client reads the same data over HTTP.
package sharepoint

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Kind selects the record family of a lookup
type Kind string

const (
	KindDocuments Kind = "documents"
	KindReports   Kind = "reports"
)

// ErrInvalidKind is returned for any kind other than documents or reports
var ErrInvalidKind = errors.New("invalid request type")

// ParseKind validates a raw kind string
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDocuments, KindReports:
		return Kind(s), nil
	default:
		return "", ErrInvalidKind
	}
}

// Document is a file stored in the document library
type Document struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Modified time.Time `json:"modified"`
	Size     int64     `json:"size"`
}

// Report is a generated activity report
type Report struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
	Type    string    `json:"type"`
}

// Result holds the records of one lookup; only the requested kind is set
type Result struct {
	Kind      Kind       `json:"-"`
	Documents []Document `json:"documents,omitempty"`
	Reports   []Report   `json:"reports,omitempty"`
}

// Len returns the number of records in the result
func (r Result) Len() int {
	if r.Kind == KindReports {
		return len(r.Reports)
	}
	return len(r.Documents)
}

// Catalog is a query-filtered, read-only record source
type Catalog interface {
	Documents(ctx context.Context, query string) ([]Document, error)
	Reports(ctx context.Context, query string) ([]Report, error)
}

// Lookup dispatches a lookup by kind
func Lookup(ctx context.Context, c Catalog, kind Kind, query string) (Result, error) {
	switch kind {
	case KindDocuments:
		docs, err := c.Documents(ctx, query)
		return Result{Kind: kind, Documents: docs}, err
	case KindReports:
		reports, err := c.Reports(ctx, query)
		return Result{Kind: kind, Reports: reports}, err
	default:
		return Result{}, ErrInvalidKind
	}
}

// MockCatalog serves the fixed sample set with simulated latency
type MockCatalog struct {
	latency   time.Duration
	documents []Document
	reports   []Report
}

// Option configures a MockCatalog
type Option func(*MockCatalog)

// WithLatency sets the simulated response delay
func WithLatency(d time.Duration) Option {
	return func(c *MockCatalog) { c.latency = d }
}

// WithRecords replaces the sample set
func WithRecords(documents []Document, reports []Report) Option {
	return func(c *MockCatalog) {
		c.documents = documents
		c.reports = reports
	}
}

// NewMockCatalog creates a catalog over the sample records
func NewMockCatalog(opts ...Option) *MockCatalog {
	c := &MockCatalog{
		documents: SampleDocuments(),
		reports:   SampleReports(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Documents returns documents whose name or path contains query
func (c *MockCatalog) Documents(ctx context.Context, query string) ([]Document, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	result := make([]Document, 0, len(c.documents))
	for _, d := range c.documents {
		if matches(query, d.Name, d.Path) {
			result = append(result, d)
		}
	}
	return result, nil
}

// Reports returns reports whose name or type contains query
func (c *MockCatalog) Reports(ctx context.Context, query string) ([]Report, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	result := make([]Report, 0, len(c.reports))
	for _, r := range c.reports {
		if matches(query, r.Name, r.Type) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (c *MockCatalog) wait(ctx context.Context) error {
	if c.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(c.latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// matches reports whether any field contains query, ignoring case. An empty
// query matches everything.
func matches(query string, fields ...string) bool {
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
