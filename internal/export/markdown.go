package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adsero/adsero-assistant/internal/chat"
)

// MarkdownExporter exports sessions as a readable transcript
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(session *chat.Session, w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", session.Title)
	fmt.Fprintf(&b, "**Session:** %s  \n", session.ID)
	fmt.Fprintf(&b, "**Created:** %s  \n", session.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Messages:** %d\n\n", len(session.Messages))
	b.WriteString("---\n\n")

	for i, msg := range session.Messages {
		fmt.Fprintf(&b, "**%s:**", speaker(msg.Role))
		if msg.Status == chat.StatusFailed {
			b.WriteString(" _(incomplete)_")
		}
		fmt.Fprintf(&b, "\n\n%s\n\n", escapeMarkdown(msg.Content))

		if i < len(session.Messages)-1 {
			b.WriteString("---\n\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func speaker(role chat.Role) string {
	if role == chat.RoleUser {
		return "You"
	}
	return "Adsero AI"
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	inCodeBlock := false

	for i, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			continue
		}
		if inCodeBlock {
			continue
		}
		line = strings.ReplaceAll(line, "**", "\\*\\*")
		lines[i] = strings.ReplaceAll(line, "__", "\\_\\_")
	}

	return strings.Join(lines, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
