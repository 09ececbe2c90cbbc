package models

// Allowance : amount of Token the Spender may pull from Owner
type Allowance struct {
	Token   string `bun:",pk"`
	Owner   string `bun:",pk"`
	Spender string `bun:",pk"`
	Amount  int64  `bun:",notnull"`
}
