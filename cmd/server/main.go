package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/labelcheck/backend/config"
	httpDelivery "github.com/labelcheck/backend/internal/delivery/http"
	"github.com/labelcheck/backend/internal/infrastructure/cache"
	"github.com/labelcheck/backend/internal/infrastructure/gemini"
	"github.com/labelcheck/backend/internal/infrastructure/openfoodfacts"
	"github.com/labelcheck/backend/internal/infrastructure/usda"
	"github.com/labelcheck/backend/internal/usecase"
)

func main() {
	// Optional .env for local development; env vars win either way
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting LabelCheck Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Cache: product and search data share the 24h TTL family; analyses
	// live 7 days
	ttls := map[string]time.Duration{
		usecase.NamespaceProduct:  cfg.Cache.ProductTTL,
		usecase.NamespaceSearch:   cfg.Cache.ProductTTL,
		usecase.NamespaceAnalysis: cfg.Cache.AnalysisTTL,
	}
	store := cache.NewFileStore(cfg.Cache.Dir, ttls, cfg.Cache.ProductTTL)
	log.Printf("Cache dir: %s (product TTL %s, analysis TTL %s)", cfg.Cache.Dir, cfg.Cache.ProductTTL, cfg.Cache.AnalysisTTL)

	// Source clients
	offClient := openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL)
	usdaClient := usda.NewClient(cfg.USDA.APIKey, cfg.USDA.BaseURL)
	geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Model)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		offClient.SetDebug(true)
		usdaClient.SetDebug(true)
		log.Printf("Source client debug mode enabled")
	}

	if cfg.USDA.APIKey == "" {
		log.Printf("WARNING: no USDA API key configured - secondary source and enrichment will fail")
	}

	// Usecase layer
	resolver := usecase.NewResolverService(store, offClient, usdaClient, offClient, usdaClient)
	analyzer := usecase.NewAnalysisService(store, geminiClient)
	regulations := usecase.NewRegulationService(cfg.Data.Dir)
	sessions := usecase.NewSessionService()

	log.Printf("Reference data dir: %s", cfg.Data.Dir)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(resolver, analyzer, regulations, sessions)

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
