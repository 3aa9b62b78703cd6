package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/adsero/adsero-assistant/internal/config"
	"github.com/adsero/adsero-assistant/internal/logging"
	"github.com/adsero/adsero-assistant/internal/providers"
	"github.com/adsero/adsero-assistant/internal/providers/factory"
	"github.com/adsero/adsero-assistant/internal/sharepoint"
)

// Services holds all service instances of the assistant server
type Services struct {
	Chat *ChatService

	// Catalog answers the lookup endpoint with the simulated SharePoint latency
	Catalog sharepoint.Catalog

	Providers *providers.Registry
	Provider  providers.Provider
	Health    *HealthMonitor
}

// NewServices creates all service instances from cfg
func NewServices(cfg *config.Config, logger *logrus.Logger) (*Services, error) {
	registry, err := factory.NewRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize providers: %w", err)
	}
	provider, err := registry.Select(cfg.Chat.Provider)
	if err != nil {
		return nil, err
	}

	health := NewHealthMonitor(registry.Names()...)

	catalog := sharepoint.NewMockCatalog(sharepoint.WithLatency(cfg.SharePoint.Latency))

	// Grounding pays the catalog latency once per kind and TTL
	var grounder *Grounder
	if cfg.Chat.Grounding {
		grounder = NewGrounder(NewCatalogCache(catalog, DefaultCatalogTTL), logging.Component(logger, "grounding"))
	}

	chat := NewChatService(provider, grounder, cfg.Chat, logging.Component(logger, "chat"), WithHealthMonitor(health))

	return &Services{
		Chat:      chat,
		Catalog:   catalog,
		Providers: registry,
		Provider:  provider,
		Health:    health,
	}, nil
}
