package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cropwise/advisor/internal/api"
	"github.com/cropwise/advisor/internal/config"
	"github.com/cropwise/advisor/internal/llm"
	"github.com/cropwise/advisor/internal/repository"
	"github.com/cropwise/advisor/internal/retrieval"
	"github.com/cropwise/advisor/internal/service"
	"github.com/cropwise/advisor/internal/weather"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	cropRepo := repository.NewCropRepository(db)
	conversationRepo := repository.NewConversationRepository(db)

	// Seed reference data if configured
	if cfg.Seed.Path != "" {
		seedService := service.NewSeedService(cropRepo, logger)
		if err := seedService.LoadFile(cfg.Seed.Path); err != nil {
			logger.Warn("Failed to load seed data", zap.Error(err))
		}
	}

	// Initialize generation client
	generator := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		VisionModel: cfg.LLM.VisionModel,
		Temperature: cfg.LLM.Temperature,
	})

	// Optional weather provider
	var weatherProvider weather.Provider
	if cfg.Weather.Enabled {
		weatherProvider = weather.NewClient(cfg.Weather.BaseURL)
	}

	// Initialize services
	retriever := retrieval.NewRetriever(cropRepo)
	turnLog := service.NewTurnLogger(logger)
	defer turnLog.Close()

	chatService := service.NewChatService(
		cfg,
		conversationRepo,
		retriever,
		generator,
		weatherProvider,
		turnLog,
		logger,
	)

	advisoryService := service.NewAdvisoryService(
		cfg,
		retriever,
		generator,
		generator,
		logger,
	)

	// Setup router
	router := api.SetupRouter(chatService, advisoryService, logger, api.RouterConfig{
		AllowOrigins: []string{"*"},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:        cfg.Address(),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting advisor server", zap.String("address", cfg.Address()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
