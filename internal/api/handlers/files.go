package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/adsero/adsero-assistant/internal/graph"
)

// DriveClient is the part of the Graph client used by the proxy
type DriveClient interface {
	ListChildren(ctx context.Context, folderPath string) ([]graph.DriveItem, error)
	Search(ctx context.Context, query string) ([]graph.DriveItem, error)
	Item(ctx context.Context, itemID string) (*graph.DriveItem, error)
	Content(ctx context.Context, itemID string) ([]byte, error)
}

// FileSummary is one entry of a listing or search result
type FileSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FilesHandler proxies drive operations. Upstream errors are logged and
// replaced by a generic message.
type FilesHandler struct {
	drive      DriveClient
	folderPath string
	log        *logrus.Entry
}

// NewFilesHandler creates a new files handler; folderPath is used when a
// listing names no folder
func NewFilesHandler(drive DriveClient, folderPath string, log *logrus.Entry) *FilesHandler {
	return &FilesHandler{
		drive:      drive,
		folderPath: folderPath,
		log:        log,
	}
}

// List handles GET /api/files?folderPath=
func (h *FilesHandler) List(c *fiber.Ctx) error {
	folder := c.Query("folderPath", h.folderPath)

	items, err := h.drive.ListChildren(c.UserContext(), folder)
	if err != nil {
		h.log.WithError(err).WithField("folder", folder).Error("Error listing files")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list files",
		})
	}

	files := []FileSummary{}
	for _, item := range items {
		if item.IsFile() {
			files = append(files, summarize(item))
		}
	}
	return c.JSON(files)
}

// Read handles GET /api/file/:fileId
func (h *FilesHandler) Read(c *fiber.Ctx) error {
	id := c.Params("fileId")
	log := h.log.WithField("file_id", id)

	item, err := h.drive.Item(c.UserContext(), id)
	if err != nil {
		log.WithError(err).Error("Error reading file")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	if !item.Readable() {
		return c.JSON(fiber.Map{
			"name":    item.Name,
			"url":     item.WebURL,
			"message": "File content not readable, use URL to download",
		})
	}

	content, err := h.drive.Content(c.UserContext(), id)
	if err != nil {
		log.WithError(err).Error("Error reading file content")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	return c.JSON(fiber.Map{
		"name":    item.Name,
		"content": string(content),
	})
}

// Search handles GET /api/search?query=
func (h *FilesHandler) Search(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	items, err := h.drive.Search(c.UserContext(), query)
	if err != nil {
		h.log.WithError(err).WithField("query", query).Error("Error searching files")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search files",
		})
	}

	results := make([]FileSummary, 0, len(items))
	for _, item := range items {
		if item.IsFile() {
			results = append(results, summarize(item))
		}
	}
	return c.JSON(results)
}

func summarize(item graph.DriveItem) FileSummary {
	return FileSummary{ID: item.ID, Name: item.Name, URL: item.WebURL}
}
