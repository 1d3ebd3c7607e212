package repository

import (
	"context"
	"fmt"

	"github.com/escrowhq/escrow_bot/internal/models"
	"gorm.io/gorm"
)

// Timestamp columns a report window may key off. Anything else is rejected
// before it reaches SQL.
const (
	ColumnReceivedDate = "received_date"
	ColumnReleasedDate = "released_date"
)

func (r *Repository) scoped(q *gorm.DB, userID *int64) *gorm.DB {
	if userID != nil {
		return q.Where("user_id = ?", *userID)
	}
	return q
}

func windowed(q *gorm.DB, column string, w models.Window) (*gorm.DB, error) {
	if column != ColumnReceivedDate && column != ColumnReleasedDate {
		return nil, fmt.Errorf("unknown window column %q", column)
	}
	if w.Start != nil {
		q = q.Where(column+" >= ?", *w.Start)
	}
	return q.Where(column+" < ?", w.End), nil
}

// HoldingTotals sums the received amount of holding transactions per
// currency, for one user or globally.
func (r *Repository) HoldingTotals(ctx context.Context, userID *int64) ([]models.CurrencyTotal, error) {
	var totals []models.CurrencyTotal
	err := r.withRetry(ctx, "holding totals", func() error {
		q := r.db.WithContext(ctx).
			Model(&models.Transaction{}).
			Select("currency, COALESCE(SUM(received_amount), 0) AS total").
			Where("status = ?", models.StatusHolding)
		return r.scoped(q, userID).Group("currency").Scan(&totals).Error
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// FeeTotals sums fees per currency over a window. The column the window keys
// off (received_date or released_date) is a deployment choice.
func (r *Repository) FeeTotals(ctx context.Context, userID *int64, column string, w models.Window) ([]models.CurrencyTotal, error) {
	var totals []models.CurrencyTotal
	err := r.withRetry(ctx, "fee totals", func() error {
		q := r.db.WithContext(ctx).
			Model(&models.Transaction{}).
			Select("currency, COALESCE(SUM(fee), 0) AS total")
		q, err := windowed(r.scoped(q, userID), column, w)
		if err != nil {
			return err
		}
		return q.Group("currency").Scan(&totals).Error
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// VolumeTotals sums received amounts of transactions created in the window,
// per currency, regardless of status.
func (r *Repository) VolumeTotals(ctx context.Context, userID *int64, w models.Window) ([]models.CurrencyTotal, error) {
	var totals []models.CurrencyTotal
	err := r.withRetry(ctx, "volume totals", func() error {
		q := r.db.WithContext(ctx).
			Model(&models.Transaction{}).
			Select("currency, COALESCE(SUM(received_amount), 0) AS total")
		q, err := windowed(r.scoped(q, userID), ColumnReceivedDate, w)
		if err != nil {
			return err
		}
		return q.Group("currency").Scan(&totals).Error
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// PendingTransactions lists one user's holding transactions in received
// order, optionally narrowed to a single currency for the dashboards.
func (r *Repository) PendingTransactions(ctx context.Context, userID int64, currency *models.Currency) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.withRetry(ctx, "pending transactions", func() error {
		q := r.db.WithContext(ctx).
			Where("user_id = ? AND status = ?", userID, models.StatusHolding)
		if currency != nil {
			q = q.Where("currency = ?", *currency)
		}
		return q.Order("received_date ASC").Find(&txs).Error
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// AllPendingDeals lists every holding transaction joined with the owner's
// display name, for the admin overview.
func (r *Repository) AllPendingDeals(ctx context.Context) ([]models.PendingDeal, error) {
	var deals []models.PendingDeal
	err := r.withRetry(ctx, "all pending deals", func() error {
		return r.db.WithContext(ctx).
			Model(&models.Transaction{}).
			Select(`transactions.trade_id, transactions.currency, transactions.received_amount,
				transactions.release_amount, transactions.fee, transactions.received_date,
				transactions.escrowed_by, users.first_name, users.username`).
			Joins("JOIN users ON users.user_id = transactions.user_id").
			Where("transactions.status = ?", models.StatusHolding).
			Order("transactions.received_date ASC").
			Scan(&deals).Error
	})
	if err != nil {
		return nil, err
	}
	return deals, nil
}

func (r *Repository) GlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	stats := &models.GlobalStats{}

	err := r.withRetry(ctx, "global stats", func() error {
		if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
			return err
		}
		if err := r.db.WithContext(ctx).
			Model(&models.Transaction{}).
			Where("status = ?", models.StatusHolding).
			Count(&stats.PendingDeals).Error; err != nil {
			return err
		}
		if err := r.db.WithContext(ctx).
			Model(&models.Transaction{}).
			Select("currency, COALESCE(SUM(fee), 0) AS total").
			Group("currency").
			Scan(&stats.AllTimeFees).Error; err != nil {
			return err
		}
		return r.db.WithContext(ctx).
			Model(&models.Transaction{}).
			Select("currency, COALESCE(SUM(received_amount), 0) AS total").
			Where("status = ?", models.StatusHolding).
			Group("currency").
			Scan(&stats.HoldingTotals).Error
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
