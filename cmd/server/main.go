package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adsero/adsero-assistant/internal/api"
	"github.com/adsero/adsero-assistant/internal/config"
	"github.com/adsero/adsero-assistant/internal/logging"
	"github.com/adsero/adsero-assistant/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := logging.New(cfg.Log)
	serverLog := logging.Component(logger, "server")

	svc, err := services.NewServices(cfg, logger)
	if err != nil {
		serverLog.WithError(err).Fatal("Failed to initialize services")
	}

	app := api.NewApp("Adsero Assistant", cfg.Server, logging.Component(logger, "http"))
	api.SetupRoutes(app, api.Dependencies{
		Chat:           svc.Chat,
		Catalog:        svc.Catalog,
		Providers:      svc.Providers,
		ActiveProvider: cfg.Chat.Provider,
		Health:         svc.Health,
		ChatRateLimit:  cfg.Server.ChatRateLimit,
		Log:            logging.Component(logger, "api"),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		serverLog.WithFields(logrus.Fields{
			"addr":     addr,
			"provider": svc.Provider.Name(),
			"model":    cfg.Chat.Model,
		}).Info("Adsero assistant starting")
		if err := app.Listen(addr); err != nil {
			serverLog.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	serverLog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		serverLog.WithError(err).Error("Server forced to shutdown")
	}
	serverLog.Info("Server stopped")
}
