package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"github.com/adsero/adsero-assistant/internal/api/handlers"
	"github.com/adsero/adsero-assistant/internal/api/middleware"
	"github.com/adsero/adsero-assistant/internal/providers"
	"github.com/adsero/adsero-assistant/internal/services"
	"github.com/adsero/adsero-assistant/internal/sharepoint"
)

// Service names reported by /api/health
const (
	ServiceName      = "adsero-assistant"
	GraphServiceName = "adsero-graph-proxy"
)

// Dependencies are the components behind the assistant routes
type Dependencies struct {
	Chat           services.ChatStreamer
	Catalog        sharepoint.Catalog
	Providers      *providers.Registry
	ActiveProvider string
	Health         *services.HealthMonitor
	ChatRateLimit  int
	Log            *logrus.Entry
}

// SetupRoutes configures the assistant API
func SetupRoutes(app *fiber.App, deps Dependencies) {
	api := app.Group("/api")

	chat := handlers.NewChatHandler(deps.Chat, deps.Log.WithField("handler", "chat"))
	if deps.ChatRateLimit > 0 {
		api.Post("/chat", middleware.ChatRateLimit(deps.ChatRateLimit), chat.Stream)
	} else {
		api.Post("/chat", chat.Stream)
	}

	// WebSocket routes
	api.Use("/chat/ws", handlers.RequireUpgrade)
	api.Get("/chat/ws", websocket.New(chat.StreamWS))

	sp := handlers.NewSharePointHandler(deps.Catalog, deps.Log.WithField("handler", "sharepoint"))
	api.Get("/sharepoint", sp.Lookup)

	if deps.Providers != nil {
		api.Get("/providers", handlers.GetProviders(deps.Providers, deps.ActiveProvider, deps.Health))
	}

	// Health check
	api.Get("/health", handlers.Health(ServiceName))
}
