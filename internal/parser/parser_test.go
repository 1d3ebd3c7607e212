package parser

import (
	"errors"
	"testing"

	"github.com/escrowhq/escrow_bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inrDealMsg = `Continue the Deal

🆔 Trade ID: #abc123
Received Amount : ₹1,000.00
Escrow Fee : ₹10.00
Escrowed By : Alice
`

const cryptoDealMsg = `Continue the Deal

🆔 Trade ID: #xyz789
Received Amount : 500.00$
Escrowed By : Bob
`

func TestMatch(t *testing.T) {
	assert.Equal(t, KindNewDeal, Match(inrDealMsg))
	assert.Equal(t, KindNewDeal, Match(cryptoDealMsg))
	assert.Equal(t, KindCompletion, Match("Deal Completed\nTrade ID: #abc123"))
	assert.Equal(t, KindNone, Match("hello there"))
}

func TestParseNewDealINR(t *testing.T) {
	deal, err := ParseNewDeal(inrDealMsg)
	require.NoError(t, err)

	assert.Equal(t, "#abc123", deal.TradeID)
	assert.Equal(t, "Alice", deal.EscrowedBy)
	assert.Equal(t, models.CurrencyINR, deal.Currency)
	assert.Equal(t, 1000.0, deal.ReceivedAmount)
	assert.Equal(t, 10.0, deal.Fee)
	assert.False(t, deal.FeePending)
}

func TestParseNewDealCrypto(t *testing.T) {
	deal, err := ParseNewDeal(cryptoDealMsg)
	require.NoError(t, err)

	assert.Equal(t, "#xyz789", deal.TradeID)
	assert.Equal(t, "Bob", deal.EscrowedBy)
	assert.Equal(t, models.CurrencyCrypto, deal.Currency)
	assert.Equal(t, 500.0, deal.ReceivedAmount)
	assert.Zero(t, deal.Fee)
	assert.True(t, deal.FeePending)
}

func TestParseNewDealThousandsSeparators(t *testing.T) {
	msg := "Continue the Deal\nTrade ID: #big1\nReceived Amount : ₹1,234,567.89\nEscrow Fee : ₹1,000.50\nEscrowed By : Carol\n"
	deal, err := ParseNewDeal(msg)
	require.NoError(t, err)
	assert.Equal(t, 1234567.89, deal.ReceivedAmount)
	assert.Equal(t, 1000.50, deal.Fee)
}

func TestParseNewDealMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		msg   string
		field string
	}{
		{
			name:  "no trade id",
			msg:   "Continue the Deal\nReceived Amount : ₹100.00\nEscrow Fee : ₹1.00\nEscrowed By : Alice",
			field: FieldTradeID,
		},
		{
			name:  "no escrowed by",
			msg:   "Continue the Deal\nTrade ID: #a1\nReceived Amount : ₹100.00\nEscrow Fee : ₹1.00",
			field: FieldEscrowedBy,
		},
		{
			name:  "inr without received amount",
			msg:   "Continue the Deal\nTrade ID: #a1\nEscrow Fee : ₹1.00\nEscrowed By : Alice",
			field: FieldReceivedAmount,
		},
		{
			name:  "inr without fee",
			msg:   "Continue the Deal\nTrade ID: #a1\nReceived Amount : ₹100.00\nEscrowed By : Alice",
			field: FieldEscrowFee,
		},
		{
			name:  "crypto without received amount",
			msg:   "Continue the Deal\nTrade ID: #a1\nEscrowed By : Alice",
			field: FieldReceivedAmount,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseNewDeal(tc.msg)
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tc.field, parseErr.Field)
		})
	}
}

func TestParseNewDealMalformedNumber(t *testing.T) {
	msg := "Continue the Deal\nTrade ID: #a1\nReceived Amount : ₹,,,\nEscrow Fee : ₹1.00\nEscrowed By : Alice"
	_, err := ParseNewDeal(msg)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, FieldReceivedAmount, parseErr.Field)
}

func TestParseNewDealFeeExceedsReceived(t *testing.T) {
	msg := "Continue the Deal\nTrade ID: #a1\nReceived Amount : ₹100.00\nEscrow Fee : ₹200.00\nEscrowed By : Alice"
	_, err := ParseNewDeal(msg)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, FieldEscrowFee, parseErr.Field)
}

func TestParseCompletion(t *testing.T) {
	completion, err := ParseCompletion("Deal Completed\n🆔 Trade ID: #abc123")
	require.NoError(t, err)
	assert.Equal(t, "#abc123", completion.TradeID)

	_, err = ParseCompletion("Deal Completed, no id here")
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, FieldTradeID, parseErr.Field)
}

func TestParseRelease(t *testing.T) {
	tradeID, ok := ParseRelease("Release #abc123 (₹1,000.00)")
	require.True(t, ok)
	assert.Equal(t, "#abc123", tradeID)

	_, ok = ParseRelease("📊 My Holding")
	assert.False(t, ok)
}
