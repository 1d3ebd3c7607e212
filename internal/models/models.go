package models

import "time"

type Currency string

const (
	CurrencyINR    Currency = "inr"
	CurrencyCrypto Currency = "crypto"
)

func (c Currency) Symbol() string {
	if c == CurrencyINR {
		return "₹"
	}
	return "$"
}

type Status string

const (
	StatusHolding   Status = "holding"
	StatusCompleted Status = "completed"
)

type User struct {
	UserID    int64     `gorm:"primaryKey" json:"user_id"`
	FirstName string    `json:"first_name"`
	Username  *string   `json:"username"`
	LastSeen  time.Time `json:"last_seen"`

	Transactions []Transaction `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"transactions"`
}

type Transaction struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	UserID         int64      `gorm:"uniqueIndex:idx_user_trade;index:idx_user_status,priority:1" json:"user_id"`
	Currency       Currency   `json:"currency"`
	ReceivedAmount float64    `json:"received_amount"`
	ReleaseAmount  float64    `json:"release_amount"`
	Fee            float64    `json:"fee"`
	TradeID        string     `gorm:"uniqueIndex:idx_user_trade" json:"trade_id"`
	Status         Status     `gorm:"default:holding;index:idx_user_status,priority:2" json:"status"`
	ReceivedDate   time.Time  `gorm:"index" json:"received_date"`
	ReleasedDate   *time.Time `json:"released_date"`
	EscrowedBy     string     `json:"escrowed_by"`
}

// ParsedDeal is the structured result of parsing a forwarded "new deal"
// message. FeePending marks crypto deals whose fee percentage has not been
// chosen yet.
type ParsedDeal struct {
	TradeID        string
	EscrowedBy     string
	Currency       Currency
	ReceivedAmount float64
	Fee            float64
	FeePending     bool
}

type ParsedCompletion struct {
	TradeID string
}

// Window is a [Start, End) time range in UTC. A nil Start means unbounded.
type Window struct {
	Start *time.Time
	End   time.Time
}

type CurrencyTotal struct {
	Currency Currency
	Total    float64
}

// PendingDeal is a holding transaction joined with its owner's display fields.
type PendingDeal struct {
	TradeID        string
	Currency       Currency
	ReceivedAmount float64
	ReleaseAmount  float64
	Fee            float64
	ReceivedDate   time.Time
	EscrowedBy     string
	FirstName      string
	Username       *string
}

type GlobalStats struct {
	TotalUsers    int64
	PendingDeals  int64
	AllTimeFees   []CurrencyTotal
	HoldingTotals []CurrencyTotal
}
