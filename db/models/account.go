package models

// Account : Account Model
type Account struct {
	ID     int64  `bun:",pk,autoincrement"`
	Holder string `bun:",notnull,unique:account_holder_token_type"`
	Token  string `bun:",notnull,unique:account_holder_token_type"`
	Type   string `bun:",notnull,unique:account_holder_token_type"`
}
