package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adsero/adsero-assistant/internal/api/handlers"
	"github.com/adsero/adsero-assistant/internal/config"
	"github.com/adsero/adsero-assistant/internal/graph"
)

type staticDrive struct {
	items []graph.DriveItem
}

func (d staticDrive) ListChildren(context.Context, string) ([]graph.DriveItem, error) {
	return d.items, nil
}

func (d staticDrive) Search(context.Context, string) ([]graph.DriveItem, error) {
	return d.items, nil
}

func (d staticDrive) Item(_ context.Context, id string) (*graph.DriveItem, error) {
	return &graph.DriveItem{ID: id, Name: id}, nil
}

func (d staticDrive) Content(context.Context, string) ([]byte, error) {
	return nil, nil
}

func newGraphApp(t *testing.T, rateLimit int) *fiber.App {
	t.Helper()
	logger, _ := test.NewNullLogger()
	log := logrus.NewEntry(logger)

	drive := staticDrive{items: []graph.DriveItem{
		{ID: "1", Name: "contract.docx", File: &graph.FileFacet{MimeType: "text/plain"}},
		{ID: "2", Name: "Archive"},
	}}

	app := NewApp("graph-test", config.ServerConfig{}, log)
	SetupGraphRoutes(app, handlers.NewFilesHandler(drive, "Shared Documents", log), rateLimit)
	return app
}

func TestGraphRoutes(t *testing.T) {
	app := newGraphApp(t, 0)

	var files []handlers.FileSummary
	require.Equal(t, http.StatusOK, getJSON(t, app, "/api/files", &files))
	require.Len(t, files, 1)
	assert.Equal(t, "contract.docx", files[0].Name)

	var results []handlers.FileSummary
	require.Equal(t, http.StatusOK, getJSON(t, app, "/api/search?query=contract", &results))
	assert.Len(t, results, 1)

	var health map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, app, "/api/health", &health))
	assert.Equal(t, GraphServiceName, health["service"])
}

func TestGraphRoutesRateLimit(t *testing.T) {
	app := newGraphApp(t, 2)

	var files []handlers.FileSummary
	assert.Equal(t, http.StatusOK, getJSON(t, app, "/api/files", &files))
	assert.Equal(t, http.StatusOK, getJSON(t, app, "/api/files", &files))

	var body map[string]string
	assert.Equal(t, http.StatusTooManyRequests, getJSON(t, app, "/api/files", &body))
	assert.NotEmpty(t, body["error"])
}
