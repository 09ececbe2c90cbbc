package models

import (
	"encoding/json"
	"time"
)

// Event : outbox row for every fact emitted by the contract
type Event struct {
	ID        int64           `json:"id" bun:",pk,autoincrement"`
	Type      string          `json:"type" bun:",notnull"`
	Payload   json.RawMessage `json:"payload" bun:"type:jsonb,notnull"`
	CreatedAt time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
