package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"webgen_ai_server/config"
	"webgen_ai_server/internal/ai"
	"webgen_ai_server/internal/ai/provider"
	"webgen_ai_server/internal/api"
	"webgen_ai_server/internal/logger"
	"webgen_ai_server/internal/metrics"
)

const (
	writeTimeoutMargin = 15 * time.Second
	minWriteTimeout    = 30 * time.Second
)

func main() {
	// --- Load .env file ---
	// Must happen before viper reads the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	// --- Configuration Loading ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	appLog, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.AppEnv != "production",
	})
	if err != nil {
		log.Fatalf("Cannot build logger: %v", err)
	}
	defer func() { _ = appLog.Sync() }()

	// --- Dependency Initialization ---
	factory, err := provider.NewFactory(provider.Options{
		Provider:    cfg.AIProvider,
		GeminiModel: cfg.GeminiModel,
		OpenAIModel: cfg.OpenAIModel,
	})
	if err != nil {
		appLog.Fatal("Cannot configure AI provider", logger.Error(err))
	}

	stages := ai.DefaultStages()
	ai.OverrideRetries(stages, cfg.RetryMaxAttempts, cfg.RetryInitialDelay())

	opts := []ai.Option{ai.WithLogger(appLog)}
	for _, sc := range stages {
		opts = append(opts, ai.WithStage(sc))
	}
	m := metrics.New()
	opts = append(opts, ai.WithMetrics(m))

	aiGenerator := ai.NewGenerator(factory, cfg.APIKey(), opts...)
	if !aiGenerator.CredentialConfigured() {
		appLog.Warn("No server-side API key configured; requests must send X-User-API-Key",
			logger.String("provider", cfg.AIProvider))
	}

	apiHandler := api.NewAPIHandler(aiGenerator, api.HandlerConfig{
		ProviderName:        cfg.AIProvider,
		MaxBodyBytes:        cfg.MaxBodyBytes,
		GeminiKeyConfigured: cfg.GeminiAPIKey != "",
		Metrics:             m.Handler(),
	})

	// --- Start API Server ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := api.NewRouter(apiHandler, api.CORSConfig{AllowedOrigins: cfg.Origins()}, appLog)

	// Write timeout covers the slowest stage: every retry, backoff and the fallback.
	writeTimeout := ai.MaxBudget(stages) + writeTimeoutMargin
	if writeTimeout < minWriteTimeout {
		writeTimeout = minWriteTimeout
	}
	server := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.Info("Starting API server",
			logger.String("address", cfg.ServerAddress),
			logger.String("provider", cfg.AIProvider),
			logger.Duration("writeTimeout", writeTimeout),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("API server listen error", logger.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLog.Info("Shutting down server", logger.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("API server forced shutdown", logger.Error(err))
	} else {
		appLog.Info("API server gracefully stopped")
	}
}
