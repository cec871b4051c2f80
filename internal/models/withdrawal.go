package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// WithdrawalRequest is immutable once created except for Status, which is
// transitioned by the admin side only and is terminal after leaving pending.
type WithdrawalRequest struct {
	bun.BaseModel `bun:"table:withdrawal_request"`
	ID            string     `bun:"id,pk" json:"id"`
	AccountID     int64      `bun:"account_id" json:"account_id"`
	AccountName   string     `bun:"account_name" json:"account_name"`
	Amount        int64      `bun:"amount" json:"amount"`
	Method        string     `bun:"method" json:"method"`
	PayoutDetail  string     `bun:"payout_detail" json:"payout_detail"`
	Status        string     `bun:"status" json:"status"`
	RequestedAt   time.Time  `bun:"requested_at,default:current_timestamp" json:"requested_at"`
	ProcessedAt   *time.Time `bun:"processed_at" json:"processed_at"`
}
