package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/escrowhq/escrow_bot/internal/models"
	"gorm.io/gorm"
)

// CreateTransaction inserts a new holding transaction. The composite unique
// index on (user_id, trade_id) guards against duplicates; a conflict comes
// back as gorm.ErrDuplicatedKey for the lifecycle engine to translate.
func (r *Repository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	return r.withRetry(ctx, "create transaction", func() error {
		return r.db.WithContext(ctx).Create(tx).Error
	})
}

func (r *Repository) GetByTradeID(ctx context.Context, userID int64, tradeID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.withRetry(ctx, "get transaction", func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ? AND trade_id = ?", userID, tradeID).
			First(&tx).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", tradeID, err)
	}
	return &tx, nil
}

// CompleteByTradeID flips a holding transaction to completed and stamps the
// release time. The status condition makes the transition race-free and
// idempotent: a second attempt matches zero rows.
func (r *Repository) CompleteByTradeID(ctx context.Context, userID int64, tradeID string, releasedAt time.Time) (int64, error) {
	var affected int64
	err := r.withRetry(ctx, "complete transaction", func() error {
		res := r.db.WithContext(ctx).
			Model(&models.Transaction{}).
			Where("user_id = ? AND trade_id = ? AND status = ?", userID, tradeID, models.StatusHolding).
			Updates(map[string]interface{}{
				"status":        models.StatusCompleted,
				"released_date": releasedAt,
			})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to complete transaction %s: %w", tradeID, err)
	}
	return affected, nil
}

// AllTransactions dumps the whole ledger ordered by id, for export.
func (r *Repository) AllTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.withRetry(ctx, "dump transactions", func() error {
		return r.db.WithContext(ctx).Order("id ASC").Find(&txs).Error
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *Repository) DeleteUserTransactions(ctx context.Context, userID int64) (int64, error) {
	var affected int64
	err := r.withRetry(ctx, "reset user transactions", func() error {
		res := r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Delete(&models.Transaction{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, err
	}
	r.logger.Warnf("Wiped %d transactions for user %d", affected, userID)
	return affected, nil
}

func (r *Repository) DeleteAllTransactions(ctx context.Context) (int64, error) {
	var affected int64
	err := r.withRetry(ctx, "reset all transactions", func() error {
		res := r.db.WithContext(ctx).
			Where("1 = 1").
			Delete(&models.Transaction{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, err
	}
	r.logger.Warnf("Wiped the whole ledger: %d transactions", affected)
	return affected, nil
}
