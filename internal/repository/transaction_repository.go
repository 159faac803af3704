package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tajeryar/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("record not found")

var transactionColumns = []string{
	"id", "user_id", "type", "counterparty", "date", "items", "total_amount", "description",
	"status", "transcription_text", "audio_object_name", "created_at", "updated_at",
}

const defaultListLimit = 100

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query, err := insertTransactionQuery(tx)
	if err != nil {
		return err
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func insertTransactionQuery(tx *models.Transaction) (squirrel.InsertBuilder, error) {
	items, err := json.Marshal(tx.Items)
	if err != nil {
		return squirrel.InsertBuilder{}, fmt.Errorf("failed to encode items: %w", err)
	}

	return squirrel.Insert("transactions").
		Columns(transactionColumns...).
		Values(tx.ID, tx.UserID, tx.Type, tx.Counterparty, tx.Date, items, tx.TotalAmount, tx.Description,
			tx.Status, tx.TranscriptionText, tx.AudioObjectName, tx.CreatedAt, tx.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar), nil
}

// FindByID returns ErrNotFound when no transaction of userID has that id.
func (r *TransactionRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	tx, err := scanTransaction(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return tx, err
}

func (r *TransactionRepository) FindAll(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	sql, args, err := findAllQuery(filter).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []*models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

// findAllQuery filters by the literal YYYY/MM/DD strings; they sort like dates.
func findAllQuery(filter models.TransactionFilter) squirrel.SelectBuilder {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"user_id": filter.UserID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Type != "" {
		query = query.Where(squirrel.Eq{"type": filter.Type})
	}
	if filter.StartDate != "" {
		query = query.Where(squirrel.GtOrEq{"date": filter.StartDate})
	}
	if filter.EndDate != "" {
		query = query.Where(squirrel.LtOrEq{"date": filter.EndDate})
	}

	limit := filter.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	query = query.Limit(limit)
	if filter.Skip > 0 {
		query = query.Offset(filter.Skip)
	}
	return query
}

// Update applies patch, refreshes updated_at and returns the stored result.
// It returns ErrNotFound when no transaction of userID has that id.
func (r *TransactionRepository) Update(ctx context.Context, userID, id uuid.UUID, patch *models.TransactionPatch, updatedAt time.Time) (*models.Transaction, error) {
	query, err := updateTransactionQuery(userID, id, patch, updatedAt)
	if err != nil {
		return nil, err
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	tx, err := scanTransaction(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return tx, err
}

func updateTransactionQuery(userID, id uuid.UUID, patch *models.TransactionPatch, updatedAt time.Time) (squirrel.UpdateBuilder, error) {
	set := map[string]interface{}{"updated_at": updatedAt}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.Counterparty != nil {
		set["counterparty"] = *patch.Counterparty
	}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}
	if patch.Items != nil {
		items, err := json.Marshal(patch.Items)
		if err != nil {
			return squirrel.UpdateBuilder{}, fmt.Errorf("failed to encode items: %w", err)
		}
		set["items"] = items
	}
	if patch.TotalAmount != nil {
		set["total_amount"] = *patch.TotalAmount
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.TranscriptionText != nil {
		set["transcription_text"] = *patch.TranscriptionText
	}

	return squirrel.Update("transactions").
		SetMap(set).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING " + strings.Join(transactionColumns, ", ")).
		PlaceholderFormat(squirrel.Dollar), nil
}

// Delete reports whether a transaction was removed.
func (r *TransactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	query := squirrel.Delete("transactions").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TransactionRepository) GetStats(ctx context.Context, userID uuid.UUID) (*models.TransactionStats, error) {
	sql, args, err := statsQuery(userID).ToSql()
	if err != nil {
		return nil, err
	}

	var stats models.TransactionStats
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&stats.Total, &stats.Confirmed, &stats.Pending, &stats.Rejected, &stats.TotalBuyAmount, &stats.TotalSellAmount,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func statsQuery(userID uuid.UUID) squirrel.SelectBuilder {
	return squirrel.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE status = 'confirmed')",
		"COUNT(*) FILTER (WHERE status = 'pending')",
		"COUNT(*) FILTER (WHERE status = 'rejected')",
		"COALESCE(SUM(total_amount) FILTER (WHERE type = 'buy'), 0)",
		"COALESCE(SUM(total_amount) FILTER (WHERE type = 'sell'), 0)",
	).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var (
		tx    models.Transaction
		items []byte
	)
	if err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Type, &tx.Counterparty, &tx.Date, &items, &tx.TotalAmount, &tx.Description,
		&tx.Status, &tx.TranscriptionText, &tx.AudioObjectName, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &tx.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items of %s: %w", tx.ID, err)
	}
	return &tx, nil
}
