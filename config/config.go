package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	OpenFoodFacts OpenFoodFactsConfig
	USDA          USDAConfig
	Gemini        GeminiConfig
	Cache         CacheConfig
	Data          DataConfig
	RateLimit     RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OpenFoodFactsConfig holds the primary source configuration
type OpenFoodFactsConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// USDAConfig holds the secondary source configuration
type USDAConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// GeminiConfig holds the generative model configuration. An empty API key is
// allowed; analyses degrade to placeholders.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Dir         string        `mapstructure:"dir"`
	ProductTTL  time.Duration `mapstructure:"product_ttl"`
	AnalysisTTL time.Duration `mapstructure:"analysis_ttl"`
}

// DataConfig holds the reference-data directory (banned ingredients, recalls)
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/labelcheck/")

	// Environment variable settings: LABELCHECK_CACHE_PRODUCT_TTL maps to
	// cache.product_ttl
	v.SetEnvPrefix("LABELCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Source defaults
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")

	// Gemini defaults
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.model", "gemini-2.0-flash")

	// Cache defaults: product/search data 24h, analyses 7 days
	v.SetDefault("cache.dir", ".labelcheck_cache")
	v.SetDefault("cache.product_ttl", "24h")
	v.SetDefault("cache.analysis_ttl", "168h")

	// Reference data defaults
	v.SetDefault("data.dir", ".labelcheck_data")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.OpenFoodFacts.BaseURL == "" {
		return fmt.Errorf("OpenFoodFacts base URL is required")
	}

	if config.USDA.BaseURL == "" {
		return fmt.Errorf("USDA base URL is required")
	}

	if config.Cache.Dir == "" {
		return fmt.Errorf("cache directory is required")
	}

	if config.Cache.ProductTTL <= 0 || config.Cache.AnalysisTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive, got product=%s analysis=%s",
			config.Cache.ProductTTL, config.Cache.AnalysisTTL)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit.per_ip must be positive, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
