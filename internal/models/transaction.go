package models

import "time"

// Transaction actions. The ledger only ever records these two.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// Transaction is one immutable row in the ledger. Balance and portfolio value
// are snapshots taken when the row is created; they are never updated.
// Position and average buy price are derived by replaying rows, not stored.
type Transaction struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Symbol         string    `gorm:"size:20;not null;index" json:"symbol"`
	Action         string    `gorm:"size:10;not null" json:"action"` // "buy" or "sell"
	Quantity       float64   `gorm:"not null" json:"quantity"`
	Price          float64   `gorm:"not null" json:"price"`
	Total          float64   `gorm:"not null" json:"total"`
	PortfolioValue float64   `json:"portfolio_value"`
	AvailableUSD   float64   `json:"available_usd"`
	PnL            *float64  `gorm:"column:pnl" json:"pnl,omitempty"` // sells only, nil when no buys exist
	Reason         string    `gorm:"type:text" json:"reason,omitempty"`
	AgentName      string    `gorm:"size:50" json:"agent_name"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}
