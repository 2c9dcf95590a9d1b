package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dealhound/backend/config"
	httpDelivery "github.com/dealhound/backend/internal/delivery/http"
	"github.com/dealhound/backend/internal/domain"
	"github.com/dealhound/backend/internal/infrastructure/cache"
	"github.com/dealhound/backend/internal/infrastructure/gemini"
	"github.com/dealhound/backend/internal/infrastructure/search/qdrant"
	"github.com/dealhound/backend/internal/infrastructure/search/typesense"
	"github.com/dealhound/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting DealHound Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)
	log.Printf("Search Backend: %s", cfg.Search.Backend)

	// Initialize infrastructure dependencies
	var cacheRepo domain.CacheRepository
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		cacheRepo = redisCache
	} else {
		cacheRepo = cache.NewMemoryCache()
	}
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.Gemini.EmbeddingModel)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		geminiClient.SetDebug(true)
		log.Printf("Gemini client debug mode enabled")
	}

	if len(cfg.Gemini.APIKey) >= 8 {
		log.Printf("Gemini API configured: model=%s, embeddings=%s (key: %s...)",
			cfg.Gemini.Model, cfg.Gemini.EmbeddingModel, cfg.Gemini.APIKey[:8])
	}

	var searcher domain.ProductSearcher
	switch cfg.Search.Backend {
	case "typesense":
		searcher = typesense.NewSearcher(typesense.Config{
			URL:        cfg.Search.Typesense.URL,
			APIKey:     cfg.Search.Typesense.APIKey,
			Collection: cfg.Search.Typesense.Collection,
		})
		log.Printf("Typesense search configured: %s (collection: %s)",
			cfg.Search.Typesense.URL, cfg.Search.Typesense.Collection)
	default:
		searcher = qdrant.NewSearcher(geminiClient, qdrant.Config{
			URL:        cfg.Search.Qdrant.URL,
			APIKey:     cfg.Search.Qdrant.APIKey,
			Collection: cfg.Search.Qdrant.Collection,
		})
		log.Printf("Qdrant search configured: %s (collection: %s)",
			cfg.Search.Qdrant.URL, cfg.Search.Qdrant.Collection)
	}

	// Initialize usecase layer
	translationService := usecase.NewTranslationService(geminiClient, cacheRepo, usecase.TranslationServiceConfig{
		Mode:               cfg.Matching.TranslationMode,
		CacheTTL:           cfg.Cache.TTL,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	retrievalService := usecase.NewRetrievalService(searcher, usecase.RetrievalServiceConfig{
		MaxParallelSearches: cfg.Matching.MaxParallelSearches,
		EnableDebugLogging:  cfg.Matching.EnableDebugLogging,
	})

	filterService := usecase.NewFilterService(geminiClient, usecase.FilterServiceConfig{
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	savingsService := usecase.NewSavingsService(geminiClient, usecase.SavingsServiceConfig{
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	matcherService := usecase.NewMatcherService(
		translationService,
		retrievalService,
		filterService,
		savingsService,
		usecase.MatcherServiceConfig{
			DefaultDiscountLanguage: cfg.Matching.DiscountLanguage,
			DefaultMaxResults:       cfg.Matching.MaxResultsPerItem,
			ProcessingTimeout:       cfg.Matching.ProcessingTimeout,
			IncludeSavingsTotals:    cfg.Matching.IncludeSavingsTotals,
			EnableDebugLogging:      cfg.Matching.EnableDebugLogging,
		},
	)

	log.Printf("Matching: language=%s, max_results=%d, timeout=%s, translation=%s, debug=%v",
		cfg.Matching.DiscountLanguage,
		cfg.Matching.MaxResultsPerItem,
		cfg.Matching.ProcessingTimeout,
		cfg.Matching.TranslationMode,
		cfg.Matching.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(matcherService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
