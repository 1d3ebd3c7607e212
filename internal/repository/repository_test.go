package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/escrowhq/escrow_bot/internal/models"
	"github.com/escrowhq/escrow_bot/utils"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dbMock(t *testing.T) (*Repository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqldb,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	return NewRepository(gormdb, utils.InitLogger()), mock, sqldb
}

func TestCreateTransaction(t *testing.T) {
	repo, mock, sqldb := dbMock(t)
	defer sqldb.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()

	tx := &models.Transaction{
		UserID:         10,
		Currency:       models.CurrencyINR,
		ReceivedAmount: 1000,
		ReleaseAmount:  990,
		Fee:            10,
		TradeID:        "#abc123",
		Status:         models.StatusHolding,
		ReceivedDate:   time.Now().UTC(),
		EscrowedBy:     "Alice",
	}
	require.NoError(t, repo.CreateTransaction(context.Background(), tx))
	assert.Equal(t, int64(7), tx.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTransactionDuplicate(t *testing.T) {
	repo, mock, sqldb := dbMock(t)
	defer sqldb.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := repo.CreateTransaction(context.Background(), &models.Transaction{
		UserID:  10,
		TradeID: "#abc123",
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteByTradeID(t *testing.T) {
	repo, mock, sqldb := dbMock(t)
	defer sqldb.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "transactions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	affected, err := repo.CompleteByTradeID(context.Background(), 10, "#abc123", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteByTradeIDNoMatch(t *testing.T) {
	repo, mock, sqldb := dbMock(t)
	defer sqldb.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "transactions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	affected, err := repo.CompleteByTradeID(context.Background(), 10, "#missing", time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var transactionColumns = []string{
	"id", "user_id", "currency", "received_amount", "release_amount",
	"fee", "trade_id", "status", "received_date", "released_date", "escrowed_by",
}

func TestGetByTradeID(t *testing.T) {
	repo, mock, sqldb := dbMock(t)
	defer sqldb.Close()

	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE user_id`).
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(int64(1), int64(10), "inr", 1000.0, 990.0, 10.0,
				"#abc123", "holding", time.Now().UTC(), nil, "Alice"))

	tx, err := repo.GetByTradeID(context.Background(), 10, "#abc123")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, "#abc123", tx.TradeID)
	assert.Equal(t, models.StatusHolding, tx.Status)
	assert.Nil(t, tx.ReleasedDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByTradeIDNotFound(t *testing.T) {
	repo, mock, sqldb := dbMock(t)
	defer sqldb.Close()

	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE user_id`).
		WillReturnRows(sqlmock.NewRows(transactionColumns))

	tx, err := repo.GetByTradeID(context.Background(), 10, "#missing")
	require.NoError(t, err)
	assert.Nil(t, tx)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldingTotalsQuery(t *testing.T) {
	repo, mock, sqldb := dbMock(t)
	defer sqldb.Close()

	mock.ExpectQuery(`SELECT currency, COALESCE\(SUM\(received_amount\), 0\) AS total FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"currency", "total"}).
			AddRow("inr", 1500.0).
			AddRow("crypto", 42.5))

	owner := int64(10)
	totals, err := repo.HoldingTotals(context.Background(), &owner)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, models.CurrencyINR, totals[0].Currency)
	assert.Equal(t, 1500.0, totals[0].Total)
	assert.Equal(t, models.CurrencyCrypto, totals[1].Currency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserTransactions(t *testing.T) {
	repo, mock, sqldb := dbMock(t)
	defer sqldb.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "transactions" WHERE user_id`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	affected, err := repo.DeleteUserTransactions(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsRetriable(t *testing.T) {
	assert.False(t, isRetriable(gorm.ErrRecordNotFound))
	assert.False(t, isRetriable(gorm.ErrDuplicatedKey))
	assert.False(t, isRetriable(context.Canceled))
	assert.False(t, isRetriable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isRetriable(fmt.Errorf("create: %w", &pgconn.PgError{Code: "42601"})))
	assert.True(t, isRetriable(errors.New("connection refused")))
}

func TestWithRetryRecovers(t *testing.T) {
	repo, _, sqldb := dbMock(t)
	defer sqldb.Close()

	attempts := 0
	err := repo.withRetry(context.Background(), "flaky op", func() error {
		attempts++
		if attempts == 1 {
			return errors.New("connection reset")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	repo, _, sqldb := dbMock(t)
	defer sqldb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := repo.withRetry(ctx, "doomed op", func() error {
		attempts++
		return errors.New("connection reset")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}
