package service

import (
	"context"
	"errors"
	"time"

	"tajeryar/internal/contract"
	"tajeryar/internal/models"
	"tajeryar/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrEmptyUpdate         = errors.New("no updatable fields supplied")
)

type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error)
	FindAll(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch *models.TransactionPatch, updatedAt time.Time) (*models.Transaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*models.TransactionStats, error)
}

// AudioStore is the part of object storage that transactions reference.
type AudioStore interface {
	PresignedURL(ctx context.Context, name string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, name string) error
}

type StatsCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.TransactionStats, bool)
	Set(ctx context.Context, userID uuid.UUID, stats *models.TransactionStats)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type TransactionService struct {
	txRepo   TransactionStore
	audio    AudioStore
	cache    StatsCache
	audioTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

type noStatsCache struct{}

func (noStatsCache) Get(context.Context, uuid.UUID) (*models.TransactionStats, bool) { return nil, false }
func (noStatsCache) Set(context.Context, uuid.UUID, *models.TransactionStats) {}
func (noStatsCache) Invalidate(context.Context, uuid.UUID) {}

func NewTransactionService(txRepo TransactionStore, audio AudioStore, cache StatsCache, audioTTL time.Duration, logger *zap.Logger) *TransactionService {
	if cache == nil {
		cache = noStatsCache{}
	}
	return &TransactionService{
		txRepo:   txRepo,
		audio:    audio,
		cache:    cache,
		audioTTL: audioTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// Create validates candidate in full and stores it for userID. The record id
// and timestamps are always assigned here; items without an id get one.
// audioObjectName, when set, must be one of the user's own uploads.
func (s *TransactionService) Create(ctx context.Context, userID uuid.UUID, candidate map[string]any, audioObjectName string) (*models.Transaction, error) {
	if audioObjectName != "" {
		if err := checkObjectOwner(userID, audioObjectName); err != nil {
			return nil, err
		}
	}

	tx, err := contract.Validate(candidate)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tx.ID = uuid.New()
	tx.UserID = userID
	tx.AudioObjectName = audioObjectName
	tx.AudioURL = ""
	tx.CreatedAt = now
	tx.UpdatedAt = now
	assignItemIDs(tx.Items)
	sanitizeTransaction(tx)

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, userID)

	s.logger.Info("Transaction created",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("type", string(tx.Type)),
		zap.Int("items", len(tx.Items)),
	)

	s.attachAudioURL(ctx, tx)
	return tx, nil
}

func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error) {
	filter.UserID = userID
	transactions, err := s.txRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	for _, tx := range transactions {
		s.attachAudioURL(ctx, tx)
	}
	return transactions, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	tx, err := s.txRepo.FindByID(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	s.attachAudioURL(ctx, tx)
	return tx, nil
}

// Update checks only the supplied fields. id and createdAt cannot change.
func (s *TransactionService) Update(ctx context.Context, userID, id uuid.UUID, candidate map[string]any) (*models.Transaction, error) {
	patch, err := contract.ValidatePartial(candidate)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, ErrEmptyUpdate
	}
	assignItemIDs(patch.Items)
	sanitizePatch(patch)

	tx, err := s.txRepo.Update(ctx, userID, id, patch, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, userID)

	s.logger.Info("Transaction updated", zap.String("transaction_id", id.String()))

	s.attachAudioURL(ctx, tx)
	return tx, nil
}

// Delete removes the record. Its audio object is removed best-effort first.
func (s *TransactionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.txRepo.FindByID(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTransactionNotFound
	}
	if err != nil {
		return err
	}

	if tx.AudioObjectName != "" && s.audio != nil {
		if err := s.audio.Delete(ctx, tx.AudioObjectName); err != nil {
			s.logger.Warn("Failed to delete transaction audio",
				zap.String("transaction_id", id.String()),
				zap.String("object", tx.AudioObjectName),
				zap.Error(err),
			)
		}
	}

	deleted, err := s.txRepo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTransactionNotFound
	}
	s.cache.Invalidate(ctx, userID)

	s.logger.Info("Transaction deleted", zap.String("transaction_id", id.String()))
	return nil
}

func (s *TransactionService) Stats(ctx context.Context, userID uuid.UUID) (*models.TransactionStats, error) {
	if stats, ok := s.cache.Get(ctx, userID); ok {
		return stats, nil
	}

	stats, err := s.txRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, userID, stats)
	return stats, nil
}

func (s *TransactionService) attachAudioURL(ctx context.Context, tx *models.Transaction) {
	if tx.AudioObjectName == "" || s.audio == nil {
		return
	}
	url, err := s.audio.PresignedURL(ctx, tx.AudioObjectName, s.audioTTL)
	if err != nil {
		s.logger.Warn("Failed to presign transaction audio",
			zap.String("transaction_id", tx.ID.String()),
			zap.Error(err),
		)
		return
	}
	tx.AudioURL = url
}

func assignItemIDs(items []models.Item) {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
}
