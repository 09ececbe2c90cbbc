package models

import (
	"time"
)

// TransactionEntry : Transaction Entries Model
type TransactionEntry struct {
	ID              int64     `bun:",pk,autoincrement"`
	Token           string    `bun:",notnull"`
	CreditAccountID int64     `bun:",notnull"`
	CreditAccount   *Account  `bun:"rel:belongs-to,join:credit_account_id=id"`
	DebitAccountID  int64     `bun:",notnull"`
	DebitAccount    *Account  `bun:"rel:belongs-to,join:debit_account_id=id"`
	Amount          int64     `bun:",notnull"`
	EntryType       string    `bun:",notnull"`
	CreatedAt       time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}
