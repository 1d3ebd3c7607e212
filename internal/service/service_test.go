package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/escrowhq/escrow_bot/config"
	"github.com/escrowhq/escrow_bot/internal/models"
	"github.com/escrowhq/escrow_bot/internal/repository"
	"github.com/escrowhq/escrow_bot/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRepo is an in-memory Repository good enough to exercise the lifecycle
// and aggregation engines, including the (user_id, trade_id) unique index
// and the conditional completion update.
type fakeRepo struct {
	users  map[int64]models.User
	txs    []models.Transaction
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[int64]models.User)}
}

func (f *fakeRepo) UpsertUser(_ context.Context, user *models.User) error {
	f.users[user.UserID] = *user
	return nil
}

func (f *fakeRepo) GetUser(_ context.Context, userID int64) (*models.User, error) {
	if u, ok := f.users[userID]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeRepo) ListUsers(_ context.Context, excludeID int64) ([]models.User, error) {
	var users []models.User
	for _, u := range f.users {
		if u.UserID != excludeID {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeRepo) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	for _, existing := range f.txs {
		if existing.UserID == tx.UserID && existing.TradeID == tx.TradeID {
			return fmt.Errorf("insert transaction: %w", gorm.ErrDuplicatedKey)
		}
	}
	f.nextID++
	tx.ID = f.nextID
	f.txs = append(f.txs, *tx)
	return nil
}

func (f *fakeRepo) GetByTradeID(_ context.Context, userID int64, tradeID string) (*models.Transaction, error) {
	for _, tx := range f.txs {
		if tx.UserID == userID && tx.TradeID == tradeID {
			out := tx
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CompleteByTradeID(_ context.Context, userID int64, tradeID string, releasedAt time.Time) (int64, error) {
	for i, tx := range f.txs {
		if tx.UserID == userID && tx.TradeID == tradeID && tx.Status == models.StatusHolding {
			f.txs[i].Status = models.StatusCompleted
			f.txs[i].ReleasedDate = &releasedAt
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeRepo) AllTransactions(_ context.Context) ([]models.Transaction, error) {
	out := make([]models.Transaction, len(f.txs))
	copy(out, f.txs)
	return out, nil
}

func (f *fakeRepo) DeleteUserTransactions(_ context.Context, userID int64) (int64, error) {
	var kept []models.Transaction
	var deleted int64
	for _, tx := range f.txs {
		if tx.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, tx)
	}
	f.txs = kept
	return deleted, nil
}

func (f *fakeRepo) DeleteAllTransactions(_ context.Context) (int64, error) {
	deleted := int64(len(f.txs))
	f.txs = nil
	return deleted, nil
}

func (f *fakeRepo) HoldingTotals(_ context.Context, userID *int64) ([]models.CurrencyTotal, error) {
	return f.sum(userID, func(tx models.Transaction) (float64, bool) {
		return tx.ReceivedAmount, tx.Status == models.StatusHolding
	}), nil
}

func (f *fakeRepo) FeeTotals(_ context.Context, userID *int64, column string, w models.Window) ([]models.CurrencyTotal, error) {
	return f.sum(userID, func(tx models.Transaction) (float64, bool) {
		var ts *time.Time
		if column == repository.ColumnReleasedDate {
			ts = tx.ReleasedDate
		} else {
			t := tx.ReceivedDate
			ts = &t
		}
		return tx.Fee, ts != nil && inWindow(*ts, w)
	}), nil
}

func (f *fakeRepo) VolumeTotals(_ context.Context, userID *int64, w models.Window) ([]models.CurrencyTotal, error) {
	return f.sum(userID, func(tx models.Transaction) (float64, bool) {
		return tx.ReceivedAmount, inWindow(tx.ReceivedDate, w)
	}), nil
}

func (f *fakeRepo) PendingTransactions(_ context.Context, userID int64, currency *models.Currency) ([]models.Transaction, error) {
	var pending []models.Transaction
	for _, tx := range f.txs {
		if tx.UserID != userID || tx.Status != models.StatusHolding {
			continue
		}
		if currency != nil && tx.Currency != *currency {
			continue
		}
		pending = append(pending, tx)
	}
	return pending, nil
}

func (f *fakeRepo) AllPendingDeals(_ context.Context) ([]models.PendingDeal, error) {
	var deals []models.PendingDeal
	for _, tx := range f.txs {
		if tx.Status != models.StatusHolding {
			continue
		}
		u := f.users[tx.UserID]
		deals = append(deals, models.PendingDeal{
			TradeID:        tx.TradeID,
			Currency:       tx.Currency,
			ReceivedAmount: tx.ReceivedAmount,
			ReleaseAmount:  tx.ReleaseAmount,
			Fee:            tx.Fee,
			ReceivedDate:   tx.ReceivedDate,
			EscrowedBy:     tx.EscrowedBy,
			FirstName:      u.FirstName,
			Username:       u.Username,
		})
	}
	return deals, nil
}

func (f *fakeRepo) GlobalStats(_ context.Context) (*models.GlobalStats, error) {
	stats := &models.GlobalStats{TotalUsers: int64(len(f.users))}
	for _, tx := range f.txs {
		if tx.Status == models.StatusHolding {
			stats.PendingDeals++
		}
	}
	stats.AllTimeFees = f.sum(nil, func(tx models.Transaction) (float64, bool) { return tx.Fee, true })
	stats.HoldingTotals = f.sum(nil, func(tx models.Transaction) (float64, bool) {
		return tx.ReceivedAmount, tx.Status == models.StatusHolding
	})
	return stats, nil
}

func (f *fakeRepo) sum(userID *int64, pick func(models.Transaction) (float64, bool)) []models.CurrencyTotal {
	index := map[models.Currency]int{}
	var totals []models.CurrencyTotal
	for _, tx := range f.txs {
		if userID != nil && tx.UserID != *userID {
			continue
		}
		amount, ok := pick(tx)
		if !ok {
			continue
		}
		i, seen := index[tx.Currency]
		if !seen {
			index[tx.Currency] = len(totals)
			totals = append(totals, models.CurrencyTotal{Currency: tx.Currency})
			i = len(totals) - 1
		}
		totals[i].Total += amount
	}
	return totals
}

func inWindow(ts time.Time, w models.Window) bool {
	if w.Start != nil && ts.Before(*w.Start) {
		return false
	}
	return ts.Before(w.End)
}

func testConfig() *config.Config {
	return &config.Config{
		BotOwnerID:        1,
		ReportTimezone:    "UTC",
		CryptoFeePolicy:   config.FeePolicySelect,
		CryptoFeePercent:  1.0,
		FeeReportBasis:    config.FeeBasisReceived,
		StagingTTLMinutes: 30,
	}
}

func newTestService(t *testing.T, cfg *config.Config) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc, err := NewService(repo, cfg, utils.InitLogger())
	require.NoError(t, err)
	return svc, repo
}
