package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/adsero/adsero-assistant/internal/chat"
)

func sampleSession() *chat.Session {
	return &chat.Session{
		ID:        "3f0c",
		Title:     "Contract review",
		Summary:   chat.DefaultSummary,
		CreatedAt: time.Date(2024, 4, 18, 11, 10, 0, 0, time.UTC),
		Messages: []chat.Message{
			{Role: chat.RoleUser, Content: "Review **this** clause", Status: chat.StatusComplete},
			{Role: chat.RoleAssistant, Content: "Sure.\n```\nkeep **as is**\n```", Status: chat.StatusComplete},
			{Role: chat.RoleAssistant, Content: "Also", Status: chat.StatusFailed},
		},
	}
}

func TestNewExporter(t *testing.T) {
	for format, ext := range map[string]string{"json": "json", "yaml": "yaml", "yml": "yaml", "md": "md", "markdown": "md"} {
		e, err := NewExporter(format)
		require.NoError(t, err, format)
		assert.Equal(t, ext, e.Extension())
	}

	_, err := NewExporter("pdf")
	assert.EqualError(t, err, "unsupported format: pdf (supported: md, yaml, json)")
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONExporter{}).Export(sampleSession(), &buf))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Contract review", decoded["title"])
	assert.Len(t, decoded["messages"], 3)
	assert.Contains(t, buf.String(), "\n  \"id\"")
}

func TestYAMLExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLExporter{}).Export(sampleSession(), &buf))

	var decoded struct {
		ID       string         `yaml:"id"`
		Messages []chat.Message `yaml:"messages"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "3f0c", decoded.ID)
	require.Len(t, decoded.Messages, 3)
	assert.Equal(t, chat.StatusFailed, decoded.Messages[2].Status)
}

func TestMarkdownExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownExporter{}).Export(sampleSession(), &buf))
	out := buf.String()

	assert.Contains(t, out, "# Contract review\n")
	assert.Contains(t, out, "**Created:** 2024-04-18T11:10:00Z")
	assert.Contains(t, out, "**You:**\n\nReview \\*\\*this\\*\\* clause")
	assert.Contains(t, out, "keep **as is**", "code blocks are left alone")
	assert.Contains(t, out, "**Adsero AI:** _(incomplete)_\n\nAlso")
}
