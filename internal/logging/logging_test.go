package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adsero/adsero-assistant/internal/config"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LogConfig{Level: "debug", Format: "json"}, &buf)

	Component(logger, "chat").WithField("session_id", "abc").Debug("buffer changed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "chat", entry["component"])
	assert.Equal(t, "abc", entry["session_id"])
	assert.Equal(t, "buffer changed", entry["msg"])
}

func TestNewWithWriterInvalidLevel(t *testing.T) {
	logger := NewWithWriter(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
