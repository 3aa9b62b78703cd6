package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/adsero/adsero-assistant/internal/api/handlers"
	"github.com/adsero/adsero-assistant/internal/api/middleware"
)

// SetupGraphRoutes configures the standalone document proxy
func SetupGraphRoutes(app *fiber.App, files *handlers.FilesHandler, rateLimit int) {
	api := app.Group("/api")
	if rateLimit > 0 {
		api.Use(middleware.APIRateLimit(rateLimit, time.Minute))
	}

	api.Get("/files", files.List)
	api.Get("/file/:fileId", files.Read)
	api.Get("/search", files.Search)

	api.Get("/health", handlers.Health(GraphServiceName))
}
