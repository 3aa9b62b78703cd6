package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adsero/adsero-assistant/internal/api"
	"github.com/adsero/adsero-assistant/internal/api/handlers"
	"github.com/adsero/adsero-assistant/internal/config"
	"github.com/adsero/adsero-assistant/internal/graph"
	"github.com/adsero/adsero-assistant/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := logging.New(cfg.Log)
	proxyLog := logging.Component(logger, "graph-proxy")

	client, err := graph.New(context.Background(), graph.Config{
		TenantID:     cfg.Graph.TenantID,
		ClientID:     cfg.Graph.ClientID,
		ClientSecret: cfg.Graph.ClientSecret,
		SiteID:       cfg.Graph.SiteID,
	})
	if err != nil {
		proxyLog.WithError(err).Fatal("Failed to create Graph client")
	}

	app := api.NewApp("Adsero Graph Proxy", cfg.Server, logging.Component(logger, "http"))
	files := handlers.NewFilesHandler(client, cfg.Graph.FolderPath, logging.Component(logger, "files"))
	api.SetupGraphRoutes(app, files, 100)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Graph.Port)
	go func() {
		proxyLog.WithField("addr", addr).Info("Graph proxy starting")
		if err := app.Listen(addr); err != nil {
			proxyLog.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	proxyLog.Info("Shutting down graph proxy...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		proxyLog.WithError(err).Error("Graph proxy forced to shutdown")
	}
}
