package service

import (
	"context"
	"fmt"
	"time"

	"github.com/escrowhq/escrow_bot/config"
	"github.com/escrowhq/escrow_bot/internal/models"
	"github.com/escrowhq/escrow_bot/internal/repository"
	"github.com/escrowhq/escrow_bot/utils"
)

type Service struct {
	repo      Repository
	logger    *utils.Logger
	config    *config.Config
	staging   *stagingStore
	reportLoc *time.Location
	feeColumn string
}

type Repository interface {
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	ListUsers(ctx context.Context, excludeID int64) ([]models.User, error)

	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetByTradeID(ctx context.Context, userID int64, tradeID string) (*models.Transaction, error)
	CompleteByTradeID(ctx context.Context, userID int64, tradeID string, releasedAt time.Time) (int64, error)
	AllTransactions(ctx context.Context) ([]models.Transaction, error)
	DeleteUserTransactions(ctx context.Context, userID int64) (int64, error)
	DeleteAllTransactions(ctx context.Context) (int64, error)

	HoldingTotals(ctx context.Context, userID *int64) ([]models.CurrencyTotal, error)
	FeeTotals(ctx context.Context, userID *int64, column string, w models.Window) ([]models.CurrencyTotal, error)
	VolumeTotals(ctx context.Context, userID *int64, w models.Window) ([]models.CurrencyTotal, error)
	PendingTransactions(ctx context.Context, userID int64, currency *models.Currency) ([]models.Transaction, error)
	AllPendingDeals(ctx context.Context) ([]models.PendingDeal, error)
	GlobalStats(ctx context.Context) (*models.GlobalStats, error)
}

func NewService(repo Repository, cfg *config.Config, logger *utils.Logger) (*Service, error) {
	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid report timezone %q: %w", cfg.ReportTimezone, err)
	}

	feeColumn := repository.ColumnReceivedDate
	if cfg.FeeReportBasis == config.FeeBasisReleased {
		feeColumn = repository.ColumnReleasedDate
	}

	return &Service{
		repo:      repo,
		logger:    logger,
		config:    cfg,
		staging:   newStagingStore(time.Duration(cfg.StagingTTLMinutes) * time.Minute),
		reportLoc: loc,
		feeColumn: feeColumn,
	}, nil
}

// ReportLocation is the civil calendar used for named report windows and
// timestamp display.
func (s *Service) ReportLocation() *time.Location {
	return s.reportLoc
}

// RegisterUser upserts the sender on every inbound interaction.
func (s *Service) RegisterUser(ctx context.Context, userID int64, firstName, username string) error {
	user := &models.User{
		UserID:    userID,
		FirstName: firstName,
		LastSeen:  time.Now().UTC(),
	}
	if username != "" {
		user.Username = &username
	}
	return s.repo.UpsertUser(ctx, user)
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.repo.GetUser(ctx, userID)
}

func (s *Service) ListUsers(ctx context.Context, excludeID int64) ([]models.User, error) {
	return s.repo.ListUsers(ctx, excludeID)
}
