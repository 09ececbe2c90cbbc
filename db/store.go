package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	flow "github.com/getAlby/invoiceflow/common"
	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/ledger"
	"github.com/uptrace/bun"
)

const contractID = 1

// Store is the postgres ledger. Balances are double-entry: a transfer is one
// transaction entry debiting the sender's account and crediting the receiver's.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// the contract row serializes calls across service instances
		_, err := tx.NewSelect().
			Model((*models.Contract)(nil)).
			Column("id").
			Where("id = ?", contractID).
			For("UPDATE").
			Exec(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, &storeTx{tx: tx})
	})
}

type storeTx struct {
	tx bun.Tx
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ErrNotFound
	}
	return err
}

func (s *storeTx) findAccount(ctx context.Context, holder, token string, accountType string) (*models.Account, error) {
	account := models.Account{}
	err := s.tx.NewSelect().
		Model(&account).
		Where("holder = ? AND token = ? AND type = ?", holder, token, accountType).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

func (s *storeTx) upsertAccount(ctx context.Context, holder, token string, accountType string) (*models.Account, error) {
	account := models.Account{Holder: holder, Token: token, Type: accountType}
	_, err := s.tx.NewInsert().
		Model(&account).
		On("CONFLICT (holder, token, type) DO UPDATE").
		Set("type = EXCLUDED.type").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *storeTx) accountBalance(ctx context.Context, accountID int64) (int64, error) {
	var balance int64
	err := s.tx.NewSelect().
		Table("account_ledgers").
		ColumnExpr("COALESCE(sum(account_ledgers.amount), 0) as balance").
		Where("account_ledgers.account_id = ?", accountID).
		Scan(ctx, &balance)
	return balance, err
}

func (s *storeTx) BalanceOf(ctx context.Context, token, holder common.Address) (int64, error) {
	account, err := s.findAccount(ctx, holder.Hex(), token.Hex(), flow.AccountTypeHolder)
	if errors.Is(err, ledger.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return s.accountBalance(ctx, account.ID)
}

func (s *storeTx) Transfer(ctx context.Context, token, from, to common.Address, amount int64) error {
	if amount <= 0 {
		return ledger.ErrInvalidAmount
	}
	debit, err := s.findAccount(ctx, from.Hex(), token.Hex(), flow.AccountTypeHolder)
	if errors.Is(err, ledger.ErrNotFound) {
		return ledger.ErrInsufficientFunds
	}
	if err != nil {
		return err
	}
	balance, err := s.accountBalance(ctx, debit.ID)
	if err != nil {
		return err
	}
	if balance < amount {
		return ledger.ErrInsufficientFunds
	}
	// entries never join an account to itself
	if from == to {
		return nil
	}
	credit, err := s.upsertAccount(ctx, to.Hex(), token.Hex(), flow.AccountTypeHolder)
	if err != nil {
		return err
	}
	return s.insertEntry(ctx, token, debit, credit, amount, flow.EntryTypeTransfer)
}

func (s *storeTx) Mint(ctx context.Context, token, to common.Address, amount int64) error {
	if amount <= 0 {
		return ledger.ErrInvalidAmount
	}
	issuance, err := s.upsertAccount(ctx, token.Hex(), token.Hex(), flow.AccountTypeIssuance)
	if err != nil {
		return err
	}
	credit, err := s.upsertAccount(ctx, to.Hex(), token.Hex(), flow.AccountTypeHolder)
	if err != nil {
		return err
	}
	return s.insertEntry(ctx, token, issuance, credit, amount, flow.EntryTypeMint)
}

func (s *storeTx) insertEntry(ctx context.Context, token common.Address, debit, credit *models.Account, amount int64, entryType string) error {
	entry := models.TransactionEntry{
		Token:           token.Hex(),
		DebitAccountID:  debit.ID,
		CreditAccountID: credit.ID,
		Amount:          amount,
		EntryType:       entryType,
	}
	_, err := s.tx.NewInsert().Model(&entry).Exec(ctx)
	return err
}

func (s *storeTx) AllowanceOf(ctx context.Context, token, owner, spender common.Address) (int64, error) {
	allowance := models.Allowance{}
	err := s.tx.NewSelect().
		Model(&allowance).
		Where("token = ? AND owner = ? AND spender = ?", token.Hex(), owner.Hex(), spender.Hex()).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return allowance.Amount, err
}

func (s *storeTx) Approve(ctx context.Context, token, owner, spender common.Address, amount int64) error {
	if amount < 0 {
		return ledger.ErrInvalidAmount
	}
	allowance := models.Allowance{Token: token.Hex(), Owner: owner.Hex(), Spender: spender.Hex(), Amount: amount}
	_, err := s.tx.NewInsert().
		Model(&allowance).
		On("CONFLICT (token, owner, spender) DO UPDATE").
		Set("amount = EXCLUDED.amount").
		Exec(ctx)
	return err
}

func (s *storeTx) TransferFrom(ctx context.Context, token, spender, from, to common.Address, amount int64) error {
	if amount <= 0 {
		return ledger.ErrInvalidAmount
	}
	allowance, err := s.AllowanceOf(ctx, token, from, spender)
	if err != nil {
		return err
	}
	if allowance < amount {
		return ledger.ErrInsufficientAllowance
	}
	if err := s.Transfer(ctx, token, from, to, amount); err != nil {
		return err
	}
	_, err = s.tx.NewUpdate().
		Model((*models.Allowance)(nil)).
		Set("amount = amount - ?", amount).
		Where("token = ? AND owner = ? AND spender = ?", token.Hex(), from.Hex(), spender.Hex()).
		Exec(ctx)
	return err
}

func (s *storeTx) Contract(ctx context.Context) (*models.Contract, error) {
	contract := models.Contract{}
	err := s.tx.NewSelect().Model(&contract).Where("id = ?", contractID).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &contract, nil
}

func (s *storeTx) SaveContract(ctx context.Context, contract *models.Contract) error {
	contract.ID = contractID
	exists, err := s.tx.NewSelect().Model((*models.Contract)(nil)).Where("id = ?", contractID).Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		_, err = s.tx.NewUpdate().Model(contract).WherePK().Exec(ctx)
		return err
	}
	_, err = s.tx.NewInsert().Model(contract).Exec(ctx)
	return err
}

func (s *storeTx) FindInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	invoice := models.Invoice{}
	err := s.tx.NewSelect().Model(&invoice).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &invoice, nil
}

func (s *storeTx) InsertInvoice(ctx context.Context, invoice *models.Invoice) error {
	_, err := s.tx.NewInsert().Model(invoice).Exec(ctx)
	return err
}

func (s *storeTx) DeleteInvoice(ctx context.Context, id int64) error {
	res, err := s.tx.NewDelete().Model((*models.Invoice)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *storeTx) InvoiceIDs(ctx context.Context) ([]int64, error) {
	ids := []int64{}
	err := s.tx.NewSelect().Model((*models.Invoice)(nil)).Column("id").Order("id ASC").Scan(ctx, &ids)
	return ids, err
}

func (s *storeTx) NextWithdrawRequestID(ctx context.Context) (int64, error) {
	var id int64
	err := s.tx.NewSelect().
		Model((*models.WithdrawRequest)(nil)).
		ColumnExpr("COALESCE(max(id), 0) + 1").
		Scan(ctx, &id)
	return id, err
}

func (s *storeTx) confirmations(ctx context.Context, kind string, subjectID int64) ([]*models.Confirmation, error) {
	confirmations := []*models.Confirmation{}
	err := s.tx.NewSelect().
		Model(&confirmations).
		Where("kind = ? AND subject_id = ?", kind, subjectID).
		Order("id ASC").
		Scan(ctx)
	return confirmations, err
}

func (s *storeTx) insertConfirmations(ctx context.Context, subjectID int64, confirmations []*models.Confirmation) error {
	if len(confirmations) == 0 {
		return nil
	}
	for _, c := range confirmations {
		c.SubjectID = subjectID
	}
	_, err := s.tx.NewInsert().Model(&confirmations).Exec(ctx)
	return err
}

func (s *storeTx) FindWithdrawRequest(ctx context.Context, id int64) (*models.WithdrawRequest, error) {
	request := models.WithdrawRequest{}
	err := s.tx.NewSelect().Model(&request).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	request.Confirmations, err = s.confirmations(ctx, flow.ConfirmationKindWithdrawRequest, request.ID)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (s *storeTx) InsertWithdrawRequest(ctx context.Context, request *models.WithdrawRequest) error {
	if _, err := s.tx.NewInsert().Model(request).Exec(ctx); err != nil {
		return err
	}
	return s.insertConfirmations(ctx, request.ID, request.Confirmations)
}

func (s *storeTx) MarkWithdrawRequestExecuted(ctx context.Context, id int64, at time.Time) error {
	res, err := s.tx.NewUpdate().
		Model((*models.WithdrawRequest)(nil)).
		Set("executed = ?", true).
		Set("executed_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *storeTx) FindWithdrawAddressProposal(ctx context.Context) (*models.WithdrawAddressProposal, error) {
	proposal := models.WithdrawAddressProposal{}
	err := s.tx.NewSelect().Model(&proposal).Order("id DESC").Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	proposal.Confirmations, err = s.confirmations(ctx, flow.ConfirmationKindWithdrawAddress, proposal.ID)
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (s *storeTx) ReplaceWithdrawAddressProposal(ctx context.Context, proposal *models.WithdrawAddressProposal) error {
	if err := s.ClearWithdrawAddressProposal(ctx); err != nil {
		return err
	}
	if _, err := s.tx.NewInsert().Model(proposal).Exec(ctx); err != nil {
		return err
	}
	return s.insertConfirmations(ctx, proposal.ID, proposal.Confirmations)
}

func (s *storeTx) ClearWithdrawAddressProposal(ctx context.Context) error {
	_, err := s.tx.NewDelete().
		Model((*models.Confirmation)(nil)).
		Where("kind = ?", flow.ConfirmationKindWithdrawAddress).
		Exec(ctx)
	if err != nil {
		return err
	}
	_, err = s.tx.NewDelete().
		Model((*models.WithdrawAddressProposal)(nil)).
		Where("TRUE").
		Exec(ctx)
	return err
}

func (s *storeTx) AddConfirmation(ctx context.Context, confirmation *models.Confirmation) error {
	var subject interface{}
	switch confirmation.Kind {
	case flow.ConfirmationKindWithdrawRequest:
		subject = (*models.WithdrawRequest)(nil)
	case flow.ConfirmationKindWithdrawAddress:
		subject = (*models.WithdrawAddressProposal)(nil)
	default:
		return ledger.ErrNotFound
	}
	exists, err := s.tx.NewSelect().Model(subject).Where("id = ?", confirmation.SubjectID).Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return ledger.ErrNotFound
	}
	_, err = s.tx.NewInsert().Model(confirmation).Exec(ctx)
	return err
}

func (s *storeTx) InsertEvent(ctx context.Context, event *models.Event) error {
	_, err := s.tx.NewInsert().Model(event).Exec(ctx)
	return err
}

func (s *storeTx) Events(ctx context.Context, afterID int64, limit int) ([]models.Event, error) {
	events := []models.Event{}
	query := s.tx.NewSelect().Model(&events).Where("id > ?", afterID).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(ctx)
	return events, err
}

var _ ledger.Ledger = (*Store)(nil)
var _ ledger.Tx = (*storeTx)(nil)
