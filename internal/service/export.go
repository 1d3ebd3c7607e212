package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/escrowhq/escrow_bot/internal/models"
)

var exportHeader = []string{
	"id", "user_id", "currency", "received_amount", "release_amount",
	"fee", "trade_id", "status", "received_date_utc", "released_date_utc", "escrowed_by",
}

// ExportCSV dumps the full transactions table, ordered by id. Returns the
// file contents and the number of exported rows.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, int, error) {
	txs, err := s.repo.AllTransactions(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for export: %w", err)
	}
	if len(txs) == 0 {
		return nil, 0, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, 0, err
	}
	for _, tx := range txs {
		if err := w.Write(exportRow(tx)); err != nil {
			return nil, 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(txs), nil
}

func exportRow(tx models.Transaction) []string {
	released := ""
	if tx.ReleasedDate != nil {
		released = tx.ReleasedDate.UTC().Format(time.RFC3339)
	}
	return []string{
		strconv.FormatInt(tx.ID, 10),
		strconv.FormatInt(tx.UserID, 10),
		string(tx.Currency),
		strconv.FormatFloat(tx.ReceivedAmount, 'f', 2, 64),
		strconv.FormatFloat(tx.ReleaseAmount, 'f', 2, 64),
		strconv.FormatFloat(tx.Fee, 'f', 2, 64),
		tx.TradeID,
		string(tx.Status),
		tx.ReceivedDate.UTC().Format(time.RFC3339),
		released,
		tx.EscrowedBy,
	}
}
