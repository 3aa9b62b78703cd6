package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/adsero/adsero-assistant/internal/api/middleware"
	"github.com/adsero/adsero-assistant/internal/config"
)

// NewApp creates a Fiber app with the shared middleware stack
func NewApp(name string, server config.ServerConfig, log *logrus.Entry) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	origins := strings.Join(server.Origins(), ",")
	if origins == "" {
		origins = "*"
	}

	// Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log, "/api/health"))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: origins != "*",
	}))

	return app
}

// ErrorHandler renders errors that escape handlers as JSON
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
