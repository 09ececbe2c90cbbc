package models

import (
	"time"
)

// WithdrawAddressProposal : the pending payout address change. At most one exists at a time,
// a new proposal replaces the previous one together with its confirmations.
type WithdrawAddressProposal struct {
	ID             int64           `json:"id" bun:",pk,autoincrement"`
	PendingAddress string          `json:"pending_address" bun:",notnull"`
	Confirmations  []*Confirmation `json:"confirmations" bun:"-"`
	CreatedAt      time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}

func (p *WithdrawAddressProposal) IsConfirmedBy(owner string) bool {
	return confirmedBy(p.Confirmations, owner)
}
