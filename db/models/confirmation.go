package models

import (
	"time"
)

// Confirmation : one owner's approval of a withdraw request or of a withdraw address proposal.
// Kind tells which table SubjectID points to.
type Confirmation struct {
	ID        int64     `json:"-" bun:",pk,autoincrement"`
	Kind      string    `json:"-" bun:",notnull,unique:confirmation_subject_owner"`
	SubjectID int64     `json:"-" bun:",notnull,unique:confirmation_subject_owner"`
	Owner     string    `json:"owner" bun:",notnull,unique:confirmation_subject_owner"`
	CreatedAt time.Time `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}

// Owners returns the confirming owners in insertion order.
func Owners(confirmations []*Confirmation) []string {
	owners := make([]string, len(confirmations))
	for i, c := range confirmations {
		owners[i] = c.Owner
	}
	return owners
}
