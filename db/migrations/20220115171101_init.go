package migrations

import (
	"context"

	"github.com/getAlby/invoiceflow/db/models"
	"github.com/uptrace/bun"
)

/* Since this init will reflect the latest model fields when run on fresh db
make sure that when you add/remove columns in subsequent migrations IfNotExists/IfExists is used
otherwise it's going to result in errors.
*/
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		tables := []interface{}{
			(*models.Contract)(nil),
			(*models.Invoice)(nil),
			(*models.WithdrawRequest)(nil),
			(*models.WithdrawAddressProposal)(nil),
			(*models.Confirmation)(nil),
			(*models.Event)(nil),
			(*models.Account)(nil),
			(*models.TransactionEntry)(nil),
			(*models.Allowance)(nil),
		}
		for _, model := range tables {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}

		_, err := db.NewCreateIndex().
			Model((*models.Confirmation)(nil)).
			Index("index_confirmations_on_kind_subject_id").
			Column("kind", "subject_id").
			IfNotExists().
			Exec(ctx)
		return err
	}, nil)
}
