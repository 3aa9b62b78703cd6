package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/adsero/adsero-assistant/internal/providers"
	"github.com/adsero/adsero-assistant/internal/services"
)

// GetProviders lists the registered providers and marks the active one.
// health may be nil.
func GetProviders(registry *providers.Registry, active string, health *services.HealthMonitor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list := []fiber.Map{}
		for _, id := range registry.List() {
			name := registry.Get(id).Name()
			entry := fiber.Map{
				"id":     id,
				"name":   name,
				"active": id == active,
			}
			if health != nil {
				if status := health.GetHealth(name); status != nil {
					entry["health"] = status
				}
			}
			list = append(list, entry)
		}

		return c.JSON(list)
	}
}

// Health reports liveness for service
func Health(service string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": service,
		})
	}
}
