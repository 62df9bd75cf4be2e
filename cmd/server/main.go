package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tmash55/oddsmash-sub001/internal/cache"
	"github.com/tmash55/oddsmash-sub001/internal/config"
	"github.com/tmash55/oddsmash-sub001/internal/extract"
	"github.com/tmash55/oddsmash-sub001/internal/feed"
	httpHandler "github.com/tmash55/oddsmash-sub001/internal/handler/http"
	"github.com/tmash55/oddsmash-sub001/internal/hitrates"
	"github.com/tmash55/oddsmash-sub001/internal/messaging"
	"github.com/tmash55/oddsmash-sub001/internal/ocr"
	"github.com/tmash55/oddsmash-sub001/internal/odds"
	"github.com/tmash55/oddsmash-sub001/internal/pipeline"
	"github.com/tmash55/oddsmash-sub001/internal/resolver"
	"github.com/tmash55/oddsmash-sub001/internal/roster"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("starting betslip-scanner-service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create odds feed client
	feedClient := feed.NewClient(feed.ClientConfig{
		BaseURL:         cfg.Feed.BaseURL,
		APIKey:          cfg.Feed.APIKey,
		Timeout:         cfg.Feed.Timeout,
		RetryShortDelay: cfg.Feed.RetryShortDelay,
		RetryLongDelay:  cfg.Feed.RetryLongDelay,
	}, logger)

	// Wrap event listings in the Redis cache
	eventCache := cache.NewEventCache(
		cache.RedisCacheConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		},
		feedClient,
		logger,
	)
	defer eventCache.Close()

	// Test Redis connection; the cache degrades to direct feed calls when
	// Redis drops later, but a dead address at boot is a config mistake.
	if err := eventCache.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	// Load reference roster for player-to-team inference
	var rosterSource resolver.RosterSource
	if cfg.Roster.Path != "" {
		fileRoster, err := roster.Load(cfg.Roster.Path, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load roster")
		}
		rosterSource = fileRoster
	} else {
		logger.Warn().Msg("no roster configured, player-to-team inference disabled")
	}

	// Create OCR and LLM backends
	visionClient := ocr.NewVisionClient(ocr.VisionConfig{
		BaseURL: cfg.OCR.BaseURL,
		APIKey:  cfg.OCR.APIKey,
		Timeout: cfg.OCR.Timeout,
	}, logger)
	fuser := ocr.NewFuser(visionClient, logger)

	llmClient := extract.NewOpenAIClient(extract.OpenAIConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, logger)
	extractor := extract.NewExtractor(llmClient, extract.ExtractorConfig{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, logger)

	// Create resolvers
	eventResolver := resolver.NewEventResolver(rosterSource, logger)
	oddsResolver := odds.NewResolver(feedClient, logger)
	hitRateProvider := hitrates.NewConsensusProvider(logger)

	// Create Kafka producer for the scan record hand-off
	var publisher pipeline.RecordPublisher
	if cfg.Kafka.Enabled {
		producer := messaging.NewRecordProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer producer.Close()
		publisher = producer
		logger.Info().Str("topic", cfg.Kafka.Topic).Msg("scan record producer initialized")
	}

	// Assemble the scan pipeline
	orchestrator := pipeline.NewOrchestrator(
		pipeline.Config{
			Bookmakers:  cfg.Pipeline.Bookmakers,
			StaggerStep: cfg.Pipeline.StaggerStep,
		},
		fuser,
		extractor,
		eventCache,
		eventResolver,
		oddsResolver,
		hitRateProvider,
		publisher,
		logger,
	)
	logger.Info().Msg("scan pipeline initialized")

	// Initialize HTTP handler
	scanHandler := httpHandler.NewScanHandler(orchestrator, logger)

	// Setup HTTP server routes
	mux := http.NewServeMux()

	// Health and monitoring endpoints
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		readyHandler(w, r, eventCache)
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Register API routes
	scanHandler.RegisterRoutes(mux)
	logger.Info().Msg("API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in goroutine
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")
	cancel()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("shutdown complete")
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set format
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "betslip-scanner").Logger()
}

// healthHandler returns 200 if service is running
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// readyHandler returns 200 if service is ready to accept traffic
func readyHandler(w http.ResponseWriter, r *http.Request, cache *cache.EventCache) {
	// Check Redis connection
	if err := cache.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Redis unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
