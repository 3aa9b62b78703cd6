package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/adsero/adsero-assistant/internal/sharepoint"
)

// SharePointHandler serves document and report lookups
type SharePointHandler struct {
	catalog sharepoint.Catalog
	log     *logrus.Entry
}

// NewSharePointHandler creates a new lookup handler
func NewSharePointHandler(catalog sharepoint.Catalog, log *logrus.Entry) *SharePointHandler {
	return &SharePointHandler{
		catalog: catalog,
		log:     log,
	}
}

// Lookup handles GET /api/sharepoint?type=documents|reports&query=
func (h *SharePointHandler) Lookup(c *fiber.Ctx) error {
	kind, err := sharepoint.ParseKind(c.Query("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request type",
		})
	}

	result, err := sharepoint.Lookup(c.UserContext(), h.catalog, kind, c.Query("query"))
	if err != nil {
		h.log.WithError(err).WithField("kind", kind).Error("SharePoint lookup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch SharePoint data",
		})
	}

	// Empty results still carry the key
	if kind == sharepoint.KindReports {
		reports := result.Reports
		if reports == nil {
			reports = []sharepoint.Report{}
		}
		return c.JSON(fiber.Map{"reports": reports})
	}

	documents := result.Documents
	if documents == nil {
		documents = []sharepoint.Document{}
	}
	return c.JSON(fiber.Map{"documents": documents})
}
