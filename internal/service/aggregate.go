package service

import (
	"context"

	"github.com/escrowhq/escrow_bot/internal/models"
)

// Aggregation queries. ownerID scopes to one user; nil means all owners.
// Zero partitions are dropped here, so callers only render currencies that
// actually carry a positive sum.

func (s *Service) HoldingTotals(ctx context.Context, ownerID *int64) ([]models.CurrencyTotal, error) {
	totals, err := s.repo.HoldingTotals(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return dropZero(totals), nil
}

func (s *Service) FeeTotals(ctx context.Context, ownerID *int64, period Period) ([]models.CurrencyTotal, error) {
	totals, err := s.repo.FeeTotals(ctx, ownerID, s.feeColumn, s.WindowFor(period))
	if err != nil {
		return nil, err
	}
	return dropZero(totals), nil
}

func (s *Service) VolumeTotals(ctx context.Context, ownerID *int64, period Period) ([]models.CurrencyTotal, error) {
	totals, err := s.repo.VolumeTotals(ctx, ownerID, s.WindowFor(period))
	if err != nil {
		return nil, err
	}
	return dropZero(totals), nil
}

func (s *Service) PendingDeals(ctx context.Context, ownerID int64, currency *models.Currency) ([]models.Transaction, error) {
	return s.repo.PendingTransactions(ctx, ownerID, currency)
}

func (s *Service) AllPendingDeals(ctx context.Context) ([]models.PendingDeal, error) {
	return s.repo.AllPendingDeals(ctx)
}

func (s *Service) GlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	stats, err := s.repo.GlobalStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.AllTimeFees = dropZero(stats.AllTimeFees)
	stats.HoldingTotals = dropZero(stats.HoldingTotals)
	return stats, nil
}

func dropZero(totals []models.CurrencyTotal) []models.CurrencyTotal {
	kept := totals[:0]
	for _, t := range totals {
		if t.Total > 0 {
			kept = append(kept, t)
		}
	}
	return kept
}
