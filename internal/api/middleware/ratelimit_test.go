package middleware

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestAPIRateLimit(t *testing.T) {
	app := fiber.New()
	app.Use(APIRateLimit(2, time.Minute))
	app.Get("/api/files", func(c *fiber.Ctx) error {
		return c.JSON([]string{})
	})

	assert.Equal(t, fiber.StatusOK, get(t, app, "/api/files"))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/api/files"))
	assert.Equal(t, fiber.StatusTooManyRequests, get(t, app, "/api/files"))
}

func TestChatRateLimitSkipsFailedRequests(t *testing.T) {
	app := fiber.New()
	app.Use(ChatRateLimit(1))
	app.Get("/api/chat", func(c *fiber.Ctx) error {
		if c.Query("bad") != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad"})
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	assert.Equal(t, fiber.StatusBadRequest, get(t, app, "/api/chat?bad=1"))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/api/chat"))
	assert.Equal(t, fiber.StatusTooManyRequests, get(t, app, "/api/chat"))
}
