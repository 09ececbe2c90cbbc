package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Contract : live state of the custody contract. There is exactly one row.
type Contract struct {
	ID            int64        `json:"-" bun:",pk"`
	Address       string       `json:"address" bun:",notnull"`
	PayoutAddress string       `json:"payout_address" bun:",notnull"`
	CreatedAt     time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt     bun.NullTime `json:"updated_at"`
}

func (c *Contract) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		c.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Contract)(nil)
