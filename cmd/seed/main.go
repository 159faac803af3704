package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tajeryar/internal/extraction"
	"tajeryar/internal/llm"
	"tajeryar/internal/models"
	"tajeryar/internal/repository"
	"tajeryar/pkg/auth"
	"tajeryar/pkg/config"
	"tajeryar/pkg/logger"
	"tajeryar/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const demoEmail = "demo@tajeryar.local"

func main() {
	seedDir := flag.String("dir", filepath.Join("cmd", "seed", "transcripts"), "directory with *.txt transcripts")
	cacheFile := flag.String("cache", filepath.Join("cmd", "seed", ".seed_cache.json"), "processed-files cache")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Encoding); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	provider, err := llm.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize language model", zap.Error(err))
	}
	defer provider.Close()

	pipeline := extraction.NewPipeline(provider, extraction.Config{
		Timeout:     cfg.LLM.Timeout,
		Temperature: cfg.LLM.Temperature,
	}, appLogger)

	demoUser, err := ensureDemoUser(ctx, userRepo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to prepare demo user", zap.Error(err))
	}

	appLogger.Info("Starting database seeding...", zap.String("dir", *seedDir))
	seeded, err := seedTranscripts(ctx, *seedDir, *cacheFile, pipeline, txRepo, demoUser.ID, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to seed transactions", zap.Error(err))
	}

	appLogger.Info("Database seeding completed", zap.Int("transactions", seeded))
}

func ensureDemoUser(ctx context.Context, repo *repository.UserRepository, logger *zap.Logger) (*models.User, error) {
	user, err := repo.GetByEmail(ctx, demoEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	password := os.Getenv("SEED_DEMO_PASSWORD")
	if password == "" {
		password = "tajeryar-demo"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user = &models.User{
		ID:        uuid.New(),
		Username:  "demo",
		Email:     demoEmail,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Demo user created", zap.String("email", demoEmail))
	return user, nil
}

type transactionCreator interface {
	Create(ctx context.Context, tx *models.Transaction) error
}

type transcriptExtractor interface {
	Extract(ctx context.Context, transcript string) (*extraction.Result, error)
}

// seedTranscripts stores one transaction per valid transcript. Files whose
// content is unchanged since the last run are skipped.
func seedTranscripts(
	ctx context.Context,
	seedDir string,
	cacheFile string,
	extractor transcriptExtractor,
	repo transactionCreator,
	userID uuid.UUID,
	logger *zap.Logger,
) (int, error) {
	cache, err := loadCache(cacheFile)
	if err != nil {
		logger.Warn("Failed to load cache, will process all files", zap.Error(err))
		cache = newCache()
	}

	paths, err := filepath.Glob(filepath.Join(seedDir, "*.txt"))
	if err != nil {
		return 0, err
	}
	sort.Strings(paths)

	seeded := 0
	for _, path := range paths {
		hash, err := calculateFileHash(path)
		if err != nil {
			logger.Warn("Failed to hash transcript, skipping", zap.String("path", path), zap.Error(err))
			continue
		}
		if cached, ok := cache.ProcessedFiles[path]; ok && cached.FileHash == hash {
			logger.Info("Transcript already processed, skipping", zap.String("path", path))
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Failed to read transcript, skipping", zap.String("path", path), zap.Error(err))
			continue
		}

		result, err := extractor.Extract(ctx, strings.TrimSpace(string(data)))
		if err != nil {
			var xerr *extraction.Error
			if errors.As(err, &xerr) && xerr.Retryable() {
				logger.Warn("Extraction failed, will retry on next run", zap.String("path", path), zap.Error(err))
				continue
			}
			logger.Warn("Transcript does not yield a valid transaction", zap.String("path", path), zap.Error(err))
			cache.markProcessed(path, hash)
			continue
		}

		tx := result.Transaction
		tx.UserID = userID
		tx.UpdatedAt = tx.CreatedAt
		if err := repo.Create(ctx, tx); err != nil {
			return seeded, err
		}
		seeded++
		cache.markProcessed(path, hash)

		logger.Info("Transcript seeded",
			zap.String("path", path),
			zap.String("transaction_id", tx.ID.String()),
			zap.Int("warnings", len(result.Warnings)),
		)
	}

	if err := saveCache(cacheFile, cache); err != nil {
		logger.Warn("Failed to save cache", zap.Error(err))
	}
	return seeded, nil
}
