package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tajeryar/internal/api"
	"tajeryar/internal/api/handlers"
	"tajeryar/internal/cache"
	"tajeryar/internal/extraction"
	"tajeryar/internal/llm"
	"tajeryar/internal/repository"
	"tajeryar/internal/service"
	"tajeryar/pkg/auth"
	"tajeryar/pkg/config"
	"tajeryar/pkg/logger"
	"tajeryar/pkg/objectstore"
	"tajeryar/pkg/postgres"
	"tajeryar/pkg/transcribe"

	"go.uber.org/zap"
)

// @title TajerYar API
// @version 1.0
// @description Voice-driven bookkeeping for small shops: transcripts in, validated buy/sell transactions out.

// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Encoding); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting TajerYar service", zap.String("llm_provider", cfg.LLM.Provider))

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	store, err := objectstore.New(&cfg.Storage, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	rdb := cache.NewRedisClient(ctx, &cfg.Redis, appLogger)
	if rdb != nil {
		defer rdb.Close()
	}
	var statsCache service.StatsCache
	if c := cache.NewStatsCache(rdb, cfg.Redis.StatsTTL, appLogger); c != nil {
		statsCache = c
	}

	userRepo := repository.NewUserRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	provider, err := llm.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize language model", zap.Error(err))
	}
	defer provider.Close()

	pipeline := extraction.NewPipeline(provider, extraction.Config{
		Timeout:     cfg.LLM.Timeout,
		Temperature: cfg.LLM.Temperature,
	}, appLogger.Named("extraction"))

	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	txService := service.NewTransactionService(txRepo, store, statsCache, cfg.Storage.ReadTTL, appLogger)
	fileService := service.NewFileService(store, cfg.Storage.ReadTTL, cfg.Storage.UploadTTL, appLogger)
	exportService := service.NewExportService(appLogger)

	transcriber := transcribe.NewClient(&cfg.Transcription, appLogger)

	app := api.SetupRouter(api.Handlers{
		Auth:          handlers.NewAuthHandler(authService, appLogger),
		Extraction:    handlers.NewExtractionHandler(pipeline, appLogger),
		Transaction:   handlers.NewTransactionHandler(txService, exportService, appLogger),
		File:          handlers.NewFileHandler(fileService, appLogger),
		Transcription: handlers.NewTranscriptionHandler(transcriber, appLogger),
	}, jwtManager, &cfg.Server, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
