package models

import (
	"time"

	"github.com/uptrace/bun"
)

// WithdrawRequest : request to release custodied funds to the payout address
type WithdrawRequest struct {
	ID            int64           `json:"id" bun:",pk"`
	Token         string          `json:"token" bun:",notnull"`
	Amount        int64           `json:"amount" bun:",notnull"`
	Executed      bool            `json:"executed" bun:",notnull,default:false"`
	Confirmations []*Confirmation `json:"confirmations" bun:"-"`
	CreatedAt     time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	ExecutedAt    bun.NullTime    `json:"executed_at"`
}

func (r *WithdrawRequest) IsConfirmedBy(owner string) bool {
	return confirmedBy(r.Confirmations, owner)
}

func confirmedBy(confirmations []*Confirmation, owner string) bool {
	for _, c := range confirmations {
		if c.Owner == owner {
			return true
		}
	}
	return false
}
