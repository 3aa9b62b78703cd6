package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adsero/adsero-assistant/internal/sharepoint"
)

const (
	maxGroundingRecords = 5
	groundingTimeout    = 5 * time.Second
)

var (
	documentKeywords = []string{"document", "contract", "file", "template", "agreement"}
	reportKeywords   = []string{"report"}
)

// Grounder looks up catalog records mentioned by a user message and renders
// them as context for the provider
type Grounder struct {
	catalog sharepoint.Catalog
	log     *logrus.Entry
}

// NewGrounder creates a grounder over catalog
func NewGrounder(catalog sharepoint.Catalog, log *logrus.Entry) *Grounder {
	return &Grounder{catalog: catalog, log: log}
}

// Kinds returns the record kinds a message refers to
func Kinds(message string) []sharepoint.Kind {
	lower := strings.ToLower(message)

	var kinds []sharepoint.Kind
	if containsAny(lower, documentKeywords) {
		kinds = append(kinds, sharepoint.KindDocuments)
	}
	if containsAny(lower, reportKeywords) {
		kinds = append(kinds, sharepoint.KindReports)
	}
	return kinds
}

// Context returns a system note listing the relevant records, or "" when the
// message mentions none or the lookup fails
func (g *Grounder) Context(ctx context.Context, message string) string {
	kinds := Kinds(message)
	if len(kinds) == 0 {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, groundingTimeout)
	defer cancel()

	var b strings.Builder
	for _, kind := range kinds {
		result, err := sharepoint.Lookup(ctx, g.catalog, kind, "")
		if err != nil {
			g.log.WithError(err).WithField("kind", kind).Warn("Catalog lookup for grounding failed")
			continue
		}
		writeRecords(&b, result)
	}

	if b.Len() == 0 {
		return ""
	}
	return "The following SharePoint records are available. Refer to them by name when relevant.\n" + b.String()
}

func writeRecords(b *strings.Builder, result sharepoint.Result) {
	switch result.Kind {
	case sharepoint.KindDocuments:
		if len(result.Documents) == 0 {
			return
		}
		b.WriteString("Documents:\n")
		for i, d := range result.Documents {
			if i == maxGroundingRecords {
				break
			}
			fmt.Fprintf(b, "- %s (%s, modified %s)\n", d.Name, d.Path, d.Modified.Format("2006-01-02"))
		}
	case sharepoint.KindReports:
		if len(result.Reports) == 0 {
			return
		}
		b.WriteString("Reports:\n")
		for i, r := range result.Reports {
			if i == maxGroundingRecords {
				break
			}
			fmt.Fprintf(b, "- %s (%s, created %s)\n", r.Name, r.Type, r.Created.Format("2006-01-02"))
		}
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
