package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CoinEntry is the append-only credit ledger. The unique (account_id, action)
// pair makes every event key creditable at most once; the spendable balance is
// always derivable as the sum of entries minus committed withdrawals.
type CoinEntry struct {
	bun.BaseModel `bun:"table:coin_entry"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	AccountID     int64     `bun:"account_id" json:"account_id"`
	Coins         int64     `bun:"coins" json:"coins"`
	Action        string    `bun:"action" json:"action"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type TotalCoins struct {
	AccountID  int64 `json:"account_id"`
	TotalCoins int64 `json:"total_coins"`
}
