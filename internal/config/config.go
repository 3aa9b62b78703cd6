package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultSystemPrompt is injected ahead of every conversation sent to the provider
const DefaultSystemPrompt = `You are an AI assistant for Adsero, a legal services platform.
You help users manage documents, summarize conversations, generate reports, and provide recommendations.
You have access to Microsoft 365 SharePoint for document management.

When responding:
1. Be professional, concise, and helpful
2. Provide contextual recommendations when appropriate
3. Offer to help with document retrieval or management when relevant
4. Suggest next steps or related topics that might be helpful
5. For document requests, explain that you would retrieve them from SharePoint (simulate this)
6. For report generation, provide a sample of what the report would look like

Always maintain a helpful, professional tone consistent with legal services.`

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Chat       ChatConfig       `mapstructure:"chat"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	SharePoint SharePointConfig `mapstructure:"sharepoint"`
	Graph      GraphConfig      `mapstructure:"graph"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	CORSOrigins   string `mapstructure:"cors_origins"`
	ChatRateLimit int    `mapstructure:"chat_rate_limit"`
}

type ChatConfig struct {
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	MaxDuration  time.Duration `mapstructure:"max_duration"`
	SystemPrompt string        `mapstructure:"system_prompt"`
	Grounding    bool          `mapstructure:"grounding"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type SharePointConfig struct {
	Latency time.Duration `mapstructure:"latency"`
}

// GraphConfig holds the credentials of the standalone graph proxy
type GraphConfig struct {
	TenantID     string `mapstructure:"tenant_id"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	SiteID       string `mapstructure:"site_id"`
	FolderPath   string `mapstructure:"folder_path"`
	Port         int    `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional config file, then the environment
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith loads configuration using the given viper instance
func LoadWith(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")

	// Add config paths
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Check for user config directory
	homeDir, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".adsero"))
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.cors_origins", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("server.chat_rate_limit", 30)

	v.SetDefault("chat.provider", "openai")
	v.SetDefault("chat.model", "gpt-4o")
	v.SetDefault("chat.max_duration", 30*time.Second)
	v.SetDefault("chat.system_prompt", DefaultSystemPrompt)
	v.SetDefault("chat.grounding", true)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")

	v.SetDefault("sharepoint.latency", time.Second)

	v.SetDefault("graph.tenant_id", "")
	v.SetDefault("graph.client_id", "")
	v.SetDefault("graph.client_secret", "")
	v.SetDefault("graph.site_id", "")
	v.SetDefault("graph.folder_path", "")
	v.SetDefault("graph.port", 3000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("ADSERO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variable names used by the original deployment
	_ = v.BindEnv("openai.api_key", "ADSERO_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("graph.tenant_id", "ADSERO_GRAPH_TENANT_ID", "TENANT_ID")
	_ = v.BindEnv("graph.client_id", "ADSERO_GRAPH_CLIENT_ID", "CLIENT_ID")
	_ = v.BindEnv("graph.client_secret", "ADSERO_GRAPH_CLIENT_SECRET", "CLIENT_SECRET")
	_ = v.BindEnv("graph.site_id", "ADSERO_GRAPH_SITE_ID", "SITE_ID")
	_ = v.BindEnv("graph.folder_path", "ADSERO_GRAPH_FOLDER_PATH", "FOLDER_PATH")
	_ = v.BindEnv("graph.port", "ADSERO_GRAPH_PORT", "PORT")
}

// Origins returns the configured CORS origins as a list
func (s ServerConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
