// Package export writes chat sessions to files in several formats.
package export

import (
	"fmt"
	"io"

	"github.com/adsero/adsero-assistant/internal/chat"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(session *chat.Session, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: md, yaml, json)", format)
	}
}
