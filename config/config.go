package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Gemini    GeminiConfig
	Search    SearchConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Matching  MatchingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// SearchConfig selects and configures the product search backend
type SearchConfig struct {
	Backend   string          `mapstructure:"backend"` // "qdrant" or "typesense"
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Typesense TypesenseConfig `mapstructure:"typesense"`
}

// QdrantConfig holds Qdrant connection details
type QdrantConfig struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api_key"`
	Collection string `mapstructure:"collection"`
}

// TypesenseConfig holds Typesense connection details
type TypesenseConfig struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api_key"`
	Collection string `mapstructure:"collection"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// MatchingConfig holds pipeline tuning parameters
type MatchingConfig struct {
	DiscountLanguage     string        `mapstructure:"discount_language"`
	MaxResultsPerItem    int           `mapstructure:"max_results_per_item"`
	ProcessingTimeout    time.Duration `mapstructure:"processing_timeout"`
	TranslationMode      string        `mapstructure:"translation_mode"`
	IncludeSavingsTotals bool          `mapstructure:"include_savings_totals"`
	MaxParallelSearches  int           `mapstructure:"max_parallel_searches"`
	EnableDebugLogging   bool          `mapstructure:"enable_debug_logging"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dealhound/")

	// Environment variable settings
	v.SetEnvPrefix("DEALHOUND")
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
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Gemini defaults
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.model", "gemini-2.0-flash-lite")
	v.SetDefault("gemini.embedding_model", "text-embedding-004")

	// Search defaults
	v.SetDefault("search.backend", "qdrant")
	v.SetDefault("search.qdrant.collection", "discounts")
	v.SetDefault("search.typesense.collection", "discounts")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)

	// Matching defaults
	v.SetDefault("matching.discount_language", "Bulgarian")
	v.SetDefault("matching.max_results_per_item", 10)
	v.SetDefault("matching.processing_timeout", "300s")
	v.SetDefault("matching.translation_mode", "dual")
	v.SetDefault("matching.include_savings_totals", true)
	v.SetDefault("matching.max_parallel_searches", 4)
	v.SetDefault("matching.enable_debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Gemini.APIKey == "" {
		return fmt.Errorf("Gemini API key is required (set DEALHOUND_GEMINI_API_KEY)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	switch config.Search.Backend {
	case "qdrant":
		if config.Search.Qdrant.URL == "" {
			return fmt.Errorf("Qdrant URL is required when search backend is 'qdrant'")
		}
	case "typesense":
		if config.Search.Typesense.URL == "" {
			return fmt.Errorf("Typesense URL is required when search backend is 'typesense'")
		}
	default:
		return fmt.Errorf("search backend must be 'qdrant' or 'typesense', got: %s", config.Search.Backend)
	}

	if config.Matching.TranslationMode != "dual" && config.Matching.TranslationMode != "discount-only" {
		return fmt.Errorf("translation mode must be 'dual' or 'discount-only', got: %s", config.Matching.TranslationMode)
	}

	return nil
}
