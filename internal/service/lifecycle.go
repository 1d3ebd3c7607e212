package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/escrowhq/escrow_bot/config"
	"github.com/escrowhq/escrow_bot/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllowedFeePercents are the crypto fee options a submitter may pick under
// the select policy.
var AllowedFeePercents = []float64{1.0, 0.7}

// SubmitDeal runs a parsed deal through the lifecycle engine. Deals with a
// known fee are stored immediately; crypto deals under the select policy are
// staged until the submitter picks a percentage, in which case feePending is
// true and no row is written yet.
func (s *Service) SubmitDeal(ctx context.Context, ownerID int64, deal *models.ParsedDeal) (*models.Transaction, bool, error) {
	if deal.FeePending && s.config.CryptoFeePolicy == config.FeePolicyAuto {
		deal.Fee = applyPercent(deal.ReceivedAmount, s.config.CryptoFeePercent)
		deal.FeePending = false
	}

	if !deal.FeePending {
		tx, err := s.CreateDeal(ctx, ownerID, deal)
		return tx, false, err
	}

	// Check for an existing row before staging so the submitter learns about
	// the duplicate now, not after picking a fee.
	existing, err := s.repo.GetByTradeID(ctx, ownerID, deal.TradeID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return nil, false, ErrDuplicateTradeID
	}

	s.staging.Put(ownerID, *deal)
	return nil, true, nil
}

// CreateDeal inserts a new holding transaction. The store's unique index on
// (owner, trade id) is the duplicate guard; there is no read-then-write.
func (s *Service) CreateDeal(ctx context.Context, ownerID int64, deal *models.ParsedDeal) (*models.Transaction, error) {
	tx := &models.Transaction{
		UserID:         ownerID,
		Currency:       deal.Currency,
		ReceivedAmount: deal.ReceivedAmount,
		ReleaseAmount:  releaseAmount(deal.ReceivedAmount, deal.Fee),
		Fee:            deal.Fee,
		TradeID:        deal.TradeID,
		Status:         models.StatusHolding,
		ReceivedDate:   time.Now().UTC(),
		EscrowedBy:     deal.EscrowedBy,
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTradeID
		}
		return nil, fmt.Errorf("failed to create deal %s: %w", deal.TradeID, err)
	}

	s.logger.Infof("New %s escrow %s for user %d: received %.2f, fee %.2f",
		tx.Currency, tx.TradeID, ownerID, tx.ReceivedAmount, tx.Fee)
	return tx, nil
}

// SelectCryptoFee consumes a staged crypto deal and stores it with the chosen
// percentage. A consumed or expired staging entry yields ErrStaleSelection;
// the selection is never replayable.
func (s *Service) SelectCryptoFee(ctx context.Context, ownerID int64, tradeID string, percent float64) (*models.Transaction, error) {
	allowed := false
	for _, p := range AllowedFeePercents {
		if p == percent {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidFeePercent
	}

	deal, ok := s.staging.Take(ownerID, tradeID)
	if !ok {
		return nil, ErrStaleSelection
	}

	deal.Fee = applyPercent(deal.ReceivedAmount, percent)
	deal.FeePending = false
	return s.CreateDeal(ctx, ownerID, &deal)
}

// CompleteByTradeID transitions a holding transaction to completed. Zero
// affected rows means the trade is unknown or already completed.
func (s *Service) CompleteByTradeID(ctx context.Context, ownerID int64, tradeID string) error {
	affected, err := s.repo.CompleteByTradeID(ctx, ownerID, tradeID, time.Now().UTC())
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFoundOrCompleted
	}
	s.logger.Infof("Deal %s completed for user %d", tradeID, ownerID)
	return nil
}

// ReleaseByTradeID is the completion path triggered from a dashboard release
// button. Same transition, same idempotency; it additionally reports the
// deal's currency so the caller can refresh the right dashboard.
func (s *Service) ReleaseByTradeID(ctx context.Context, ownerID int64, tradeID string) (models.Currency, error) {
	tx, err := s.repo.GetByTradeID(ctx, ownerID, tradeID)
	if err != nil {
		return "", err
	}
	if tx == nil {
		return "", ErrNotFoundOrCompleted
	}

	if err := s.CompleteByTradeID(ctx, ownerID, tradeID); err != nil {
		return "", err
	}
	return tx.Currency, nil
}

func (s *Service) ResetUser(ctx context.Context, userID int64) (int64, error) {
	return s.repo.DeleteUserTransactions(ctx, userID)
}

func (s *Service) ResetAll(ctx context.Context) (int64, error) {
	return s.repo.DeleteAllTransactions(ctx)
}

// Fee arithmetic goes through decimal so that e.g. 0.7% of a large amount
// does not pick up binary float noise before being stored.
func applyPercent(amount, percent float64) float64 {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)).
		InexactFloat64()
}

func releaseAmount(received, fee float64) float64 {
	return decimal.NewFromFloat(received).
		Sub(decimal.NewFromFloat(fee)).
		InexactFloat64()
}
