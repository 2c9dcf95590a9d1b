package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("DEALHOUND_SERVER_PORT")
		os.Unsetenv("DEALHOUND_SERVER_ENVIRONMENT")
		os.Unsetenv("DEALHOUND_GEMINI_API_KEY")
		os.Unsetenv("DEALHOUND_GEMINI_MODEL")
		os.Unsetenv("DEALHOUND_SEARCH_BACKEND")
		os.Unsetenv("DEALHOUND_SEARCH_QDRANT_URL")
		os.Unsetenv("DEALHOUND_SEARCH_TYPESENSE_URL")
		os.Unsetenv("DEALHOUND_CACHE_TYPE")
		os.Unsetenv("DEALHOUND_CACHE_REDIS_URL")
		os.Unsetenv("DEALHOUND_CACHE_TTL")
		os.Unsetenv("DEALHOUND_RATELIMIT_PER_IP")
		os.Unsetenv("DEALHOUND_MATCHING_DISCOUNT_LANGUAGE")
		os.Unsetenv("DEALHOUND_MATCHING_TRANSLATION_MODE")
		os.Unsetenv("DEALHOUND_MATCHING_PROCESSING_TIMEOUT")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		// Set required values
		os.Setenv("DEALHOUND_GEMINI_API_KEY", "test-key")
		os.Setenv("DEALHOUND_SEARCH_QDRANT_URL", "http://localhost:6333")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Gemini.Model != "gemini-2.0-flash-lite" {
			t.Errorf("Gemini.Model = %s, want gemini-2.0-flash-lite", cfg.Gemini.Model)
		}
		if cfg.Search.Backend != "qdrant" {
			t.Errorf("Search.Backend = %s, want qdrant", cfg.Search.Backend)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.Matching.DiscountLanguage != "Bulgarian" {
			t.Errorf("Matching.DiscountLanguage = %s, want Bulgarian", cfg.Matching.DiscountLanguage)
		}
		if cfg.Matching.ProcessingTimeout != 300*time.Second {
			t.Errorf("Matching.ProcessingTimeout = %v, want 300s", cfg.Matching.ProcessingTimeout)
		}
		if cfg.Matching.TranslationMode != "dual" {
			t.Errorf("Matching.TranslationMode = %s, want dual", cfg.Matching.TranslationMode)
		}
		if cfg.Matching.MaxResultsPerItem != 10 {
			t.Errorf("Matching.MaxResultsPerItem = %d, want 10", cfg.Matching.MaxResultsPerItem)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DEALHOUND_SERVER_PORT", "9090")
		os.Setenv("DEALHOUND_SERVER_ENVIRONMENT", "production")
		os.Setenv("DEALHOUND_GEMINI_API_KEY", "custom-api-key")
		os.Setenv("DEALHOUND_SEARCH_BACKEND", "typesense")
		os.Setenv("DEALHOUND_SEARCH_TYPESENSE_URL", "http://typesense:8108")
		os.Setenv("DEALHOUND_CACHE_TYPE", "redis")
		os.Setenv("DEALHOUND_CACHE_REDIS_URL", "redis://localhost:6379")
		os.Setenv("DEALHOUND_CACHE_TTL", "48h")
		os.Setenv("DEALHOUND_MATCHING_DISCOUNT_LANGUAGE", "Romanian")
		os.Setenv("DEALHOUND_MATCHING_TRANSLATION_MODE", "discount-only")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Search.Backend != "typesense" {
			t.Errorf("Search.Backend = %s, want typesense", cfg.Search.Backend)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 48*time.Hour {
			t.Errorf("Cache.TTL = %v, want 48h", cfg.Cache.TTL)
		}
		if cfg.Matching.DiscountLanguage != "Romanian" {
			t.Errorf("Matching.DiscountLanguage = %s, want Romanian", cfg.Matching.DiscountLanguage)
		}
		if cfg.Matching.TranslationMode != "discount-only" {
			t.Errorf("Matching.TranslationMode = %s, want discount-only", cfg.Matching.TranslationMode)
		}
	})

	t.Run("fails without Gemini API key", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DEALHOUND_SEARCH_QDRANT_URL", "http://localhost:6333")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("expected error when Gemini API key is missing")
		}
	})

	t.Run("fails with invalid cache type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DEALHOUND_GEMINI_API_KEY", "test-key")
		os.Setenv("DEALHOUND_SEARCH_QDRANT_URL", "http://localhost:6333")
		os.Setenv("DEALHOUND_CACHE_TYPE", "memcached")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("expected error for unsupported cache type")
		}
	})

	t.Run("fails when redis cache has no URL", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DEALHOUND_GEMINI_API_KEY", "test-key")
		os.Setenv("DEALHOUND_SEARCH_QDRANT_URL", "http://localhost:6333")
		os.Setenv("DEALHOUND_CACHE_TYPE", "redis")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("expected error when redis URL is missing")
		}
	})

	t.Run("fails with unknown search backend", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DEALHOUND_GEMINI_API_KEY", "test-key")
		os.Setenv("DEALHOUND_SEARCH_BACKEND", "elasticsearch")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("expected error for unsupported search backend")
		}
	})

	t.Run("fails when qdrant backend has no URL", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DEALHOUND_GEMINI_API_KEY", "test-key")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("expected error when qdrant URL is missing")
		}
	})

	t.Run("fails with unknown translation mode", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DEALHOUND_GEMINI_API_KEY", "test-key")
		os.Setenv("DEALHOUND_SEARCH_QDRANT_URL", "http://localhost:6333")
		os.Setenv("DEALHOUND_MATCHING_TRANSLATION_MODE", "triple")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("expected error for unsupported translation mode")
		}
	})
}
