package factory

import (
	"github.com/adsero/adsero-assistant/internal/config"
	"github.com/adsero/adsero-assistant/internal/providers"
	"github.com/adsero/adsero-assistant/internal/providers/openai"
	"github.com/adsero/adsero-assistant/internal/providers/stub"
)

// NewRegistry registers every provider the configuration allows. The stub
// provider is always available; OpenAI needs an API key.
func NewRegistry(cfg *config.Config) (*providers.Registry, error) {
	registry := providers.NewRegistry()
	registry.Register(stub.Name, stub.New())

	if cfg.OpenAI.APIKey != "" {
		p, err := openai.NewProvider(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		registry.Register(openai.Name, p)
	}

	return registry, nil
}
