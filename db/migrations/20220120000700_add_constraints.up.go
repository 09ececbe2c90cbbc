package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if db.Dialect().Name().String() != "pg" {
			fmt.Printf("\033[1;31m%s\033[0m", "You are not using PostgreSQL. DB level checks can not be enabled!\n")
			return nil
		}
		sql := `
			-- make sure transfers happen from one account to another one
				ALTER TABLE transaction_entries
				ADD CONSTRAINT check_not_same_account
				CHECK (debit_account_id != credit_account_id);

			-- amounts are always positive, the direction is given by debit and credit
				ALTER TABLE transaction_entries
				ADD CONSTRAINT check_positive_amount
				CHECK (amount > 0);

				ALTER TABLE allowances
				ADD CONSTRAINT check_allowance_not_negative
				CHECK (amount >= 0);

			-- make sure that holder balances >= 0, issuance accounts mint tokens and go negative
				CREATE OR REPLACE FUNCTION check_balance()
					RETURNS TRIGGER AS $$
				DECLARE
					sum BIGINT;
					debit_account_type VARCHAR;
				BEGIN
					-- lock the debited account so concurrent transfers are checked one after another
					SELECT INTO debit_account_type type
					FROM accounts
					WHERE id = NEW.debit_account_id AND type <> 'issuance'
					FOR UPDATE NOWAIT;

					IF debit_account_type IS NULL
					THEN
						RETURN NEW;
					END IF;

					SELECT INTO sum SUM(amount)
					FROM account_ledgers
					WHERE account_ledgers.account_id = NEW.debit_account_id;

					IF sum < 0
					THEN
						RAISE EXCEPTION 'invalid balance [token:%] [debit_account_id:%] balance [%]',
						NEW.token,
						NEW.debit_account_id,
						sum;
					END IF;
					RETURN NEW;
				END;
				$$ LANGUAGE plpgsql;

			-- deferrable so a transaction can postpone the check until commit
				DROP TRIGGER IF EXISTS check_balance ON transaction_entries;
				CREATE CONSTRAINT TRIGGER check_balance
				AFTER INSERT OR UPDATE ON transaction_entries
				DEFERRABLE
				FOR EACH ROW EXECUTE PROCEDURE check_balance();
		`
		if _, err := db.Exec(sql); err != nil {
			return err
		}
		return nil
	}, nil)
}
