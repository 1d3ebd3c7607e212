package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/escrowhq/escrow_bot/internal/models"
	"github.com/shopspring/decimal"
)

// ParseError names the field that could not be extracted from a forwarded
// message, so the boundary can tell the submitter exactly what was missing.
type ParseError struct {
	Field string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not find %s", e.Field)
}

const (
	FieldTradeID        = "Trade ID"
	FieldEscrowedBy     = "Escrowed By"
	FieldReceivedAmount = "Received Amount"
	FieldEscrowFee      = "Escrow Fee"
)

// Marker phrases of the upstream deal-terminal messages.
const (
	newDealMarker   = "Continue the Deal"
	completedMarker = "Deal Completed"
)

type Kind int

const (
	KindNone Kind = iota
	KindNewDeal
	KindCompletion
)

var (
	reTradeID        = regexp.MustCompile(`Trade ID:\s*(#\w+)`)
	reEscrowedBy     = regexp.MustCompile(`Escrowed By\s*:\s*(.+)`)
	reINRReceived    = regexp.MustCompile(`Received Amount\s*:\s*₹([\d,]+\.?\d*)`)
	reINRFee         = regexp.MustCompile(`Escrow Fee\s*:\s*₹([\d,]+\.?\d*)`)
	reCryptoReceived = regexp.MustCompile(`Received Amount\s*:\s*([\d,]+\.?\d*)\$`)
)

// Match classifies a raw message by its marker phrase. Messages without a
// marker are not for this parser.
func Match(text string) Kind {
	switch {
	case strings.Contains(text, newDealMarker):
		return KindNewDeal
	case strings.Contains(text, completedMarker):
		return KindCompletion
	default:
		return KindNone
	}
}

// ParseNewDeal extracts a validated deal record from a "new deal" message.
// INR messages carry an explicit fee; crypto messages leave the fee pending
// until the submitter picks a percentage.
func ParseNewDeal(text string) (*models.ParsedDeal, error) {
	tradeID := reTradeID.FindStringSubmatch(text)
	if tradeID == nil {
		return nil, &ParseError{Field: FieldTradeID}
	}
	escrowedBy := reEscrowedBy.FindStringSubmatch(text)
	if escrowedBy == nil {
		return nil, &ParseError{Field: FieldEscrowedBy}
	}

	deal := &models.ParsedDeal{
		TradeID:    tradeID[1],
		EscrowedBy: strings.TrimSpace(escrowedBy[1]),
	}

	if strings.Contains(text, "₹") {
		deal.Currency = models.CurrencyINR

		received := reINRReceived.FindStringSubmatch(text)
		if received == nil {
			return nil, &ParseError{Field: FieldReceivedAmount}
		}
		fee := reINRFee.FindStringSubmatch(text)
		if fee == nil {
			return nil, &ParseError{Field: FieldEscrowFee}
		}

		var err error
		if deal.ReceivedAmount, err = parseAmount(received[1], FieldReceivedAmount); err != nil {
			return nil, err
		}
		if deal.Fee, err = parseAmount(fee[1], FieldEscrowFee); err != nil {
			return nil, err
		}
		if deal.Fee > deal.ReceivedAmount {
			return nil, &ParseError{Field: FieldEscrowFee}
		}
		return deal, nil
	}

	deal.Currency = models.CurrencyCrypto
	received := reCryptoReceived.FindStringSubmatch(text)
	if received == nil {
		return nil, &ParseError{Field: FieldReceivedAmount}
	}
	var err error
	if deal.ReceivedAmount, err = parseAmount(received[1], FieldReceivedAmount); err != nil {
		return nil, err
	}
	deal.FeePending = true
	return deal, nil
}

// ParseCompletion extracts the trade id from a "deal completed" message.
func ParseCompletion(text string) (*models.ParsedCompletion, error) {
	tradeID := reTradeID.FindStringSubmatch(text)
	if tradeID == nil {
		return nil, &ParseError{Field: FieldTradeID}
	}
	return &models.ParsedCompletion{TradeID: tradeID[1]}, nil
}

// ParseRelease extracts the trade id from a "Release #id (...)" menu button.
var reRelease = regexp.MustCompile(`Release (#\w+)`)

func ParseRelease(text string) (string, bool) {
	m := reRelease.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func parseAmount(raw, field string) (float64, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil || d.IsNegative() {
		return 0, &ParseError{Field: field}
	}
	return d.InexactFloat64(), nil
}
