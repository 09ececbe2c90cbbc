package models

import (
	"time"
)

// Invoice : Invoice Model
type Invoice struct {
	ID        int64     `json:"id" bun:",pk"`
	Customer  string    `json:"customer" bun:",notnull"`
	Token     string    `json:"token" bun:",notnull"`
	Amount    int64     `json:"amount" bun:",notnull"`
	ExpiresAt time.Time `json:"expires_at" bun:",notnull"`
	CreatedAt time.Time `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}

// IsExpired reports whether the invoice can no longer be settled at now.
func (i *Invoice) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
