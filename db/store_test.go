package db_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	flow "github.com/getAlby/invoiceflow/common"
	"github.com/getAlby/invoiceflow/db"
	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/ledger"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/uptrace/bun"
)

var (
	token    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	contract = common.HexToAddress("0xc0ffee254729296a45a3885639AC7E10F9d54979")
)

type StoreTestSuite struct {
	suite.Suite
	db    *bun.DB
	store *db.Store
}

func (suite *StoreTestSuite) SetupSuite() {
	dbUri, ok := os.LookupEnv("DATABASE_URI")
	if !ok {
		suite.T().Skip("DATABASE_URI is not set")
	}
	conn, err := db.Open(&service.Config{
		DatabaseUri:             dbUri,
		DatabaseMaxConns:        1,
		DatabaseMaxIdleConns:    1,
		DatabaseConnMaxLifetime: 10,
	})
	if err != nil {
		suite.T().Fatalf("failed to connect to database: %v", err)
	}
	if _, err := db.Migrate(context.Background(), conn); err != nil {
		suite.T().Fatal(err)
	}
	suite.db = conn
	suite.store = db.NewStore(conn)
}

func (suite *StoreTestSuite) SetupTest() {
	for _, table := range []string{"transaction_entries", "accounts", "allowances", "confirmations", "withdraw_requests", "withdraw_address_proposals", "invoices", "events", "contracts"} {
		_, err := suite.db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		assert.NoError(suite.T(), err)
	}
	err := suite.store.RunInTx(context.Background(), func(ctx context.Context, tx ledger.Tx) error {
		return tx.SaveContract(ctx, &models.Contract{Address: contract.Hex(), PayoutAddress: bob.Hex()})
	})
	assert.NoError(suite.T(), err)
}

func (suite *StoreTestSuite) TestBalances() {
	ctx := context.Background()
	err := suite.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		assert.NoError(suite.T(), tx.Mint(ctx, token, alice, 100))
		assert.ErrorIs(suite.T(), tx.Transfer(ctx, token, bob, alice, 1), ledger.ErrInsufficientFunds)
		assert.NoError(suite.T(), tx.Transfer(ctx, token, alice, bob, 60))
		assert.ErrorIs(suite.T(), tx.Transfer(ctx, token, alice, bob, 41), ledger.ErrInsufficientFunds)

		assert.ErrorIs(suite.T(), tx.TransferFrom(ctx, token, contract, alice, contract, 10), ledger.ErrInsufficientAllowance)
		assert.NoError(suite.T(), tx.Approve(ctx, token, alice, contract, 25))
		assert.NoError(suite.T(), tx.TransferFrom(ctx, token, contract, alice, contract, 10))
		allowance, err := tx.AllowanceOf(ctx, token, alice, contract)
		assert.NoError(suite.T(), err)
		assert.Equal(suite.T(), int64(15), allowance)
		return nil
	})
	assert.NoError(suite.T(), err)

	err = suite.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		for holder, expected := range map[common.Address]int64{alice: 30, bob: 60, contract: 10} {
			balance, err := tx.BalanceOf(ctx, token, holder)
			assert.NoError(suite.T(), err)
			assert.Equal(suite.T(), expected, balance)
		}
		return nil
	})
	assert.NoError(suite.T(), err)
}

func (suite *StoreTestSuite) TestTransferToSelf() {
	ctx := context.Background()
	err := suite.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		assert.NoError(suite.T(), tx.Mint(ctx, token, alice, 100))
		assert.ErrorIs(suite.T(), tx.Transfer(ctx, token, alice, alice, 101), ledger.ErrInsufficientFunds)
		assert.NoError(suite.T(), tx.Transfer(ctx, token, alice, alice, 100))
		balance, err := tx.BalanceOf(ctx, token, alice)
		assert.NoError(suite.T(), err)
		assert.Equal(suite.T(), int64(100), balance)
		return nil
	})
	assert.NoError(suite.T(), err)
}

func (suite *StoreTestSuite) TestRollback() {
	ctx := context.Background()
	err := suite.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		assert.NoError(suite.T(), tx.InsertInvoice(ctx, &models.Invoice{ID: 1, Customer: alice.Hex(), Token: token.Hex(), Amount: 5, ExpiresAt: time.Now().Add(time.Hour)}))
		assert.NoError(suite.T(), tx.Mint(ctx, token, alice, 100))
		return service.ErrInvoiceExpired
	})
	assert.ErrorIs(suite.T(), err, service.ErrInvoiceExpired)

	err = suite.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		_, err := tx.FindInvoice(ctx, 1)
		assert.ErrorIs(suite.T(), err, ledger.ErrNotFound)
		balance, err := tx.BalanceOf(ctx, token, alice)
		assert.NoError(suite.T(), err)
		assert.Zero(suite.T(), balance)
		return nil
	})
	assert.NoError(suite.T(), err)
}

func (suite *StoreTestSuite) TestInvoicesAndRequests() {
	ctx := context.Background()
	err := suite.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		for _, id := range []int64{4, 2} {
			assert.NoError(suite.T(), tx.InsertInvoice(ctx, &models.Invoice{ID: id, Customer: alice.Hex(), Token: token.Hex(), Amount: 5, ExpiresAt: time.Now().Add(time.Hour)}))
		}
		ids, err := tx.InvoiceIDs(ctx)
		assert.NoError(suite.T(), err)
		assert.Equal(suite.T(), []int64{2, 4}, ids)
		assert.NoError(suite.T(), tx.DeleteInvoice(ctx, 2))
		assert.ErrorIs(suite.T(), tx.DeleteInvoice(ctx, 2), ledger.ErrNotFound)

		id, err := tx.NextWithdrawRequestID(ctx)
		assert.NoError(suite.T(), err)
		assert.Equal(suite.T(), int64(1), id)
		assert.NoError(suite.T(), tx.InsertWithdrawRequest(ctx, &models.WithdrawRequest{
			ID:            id,
			Token:         token.Hex(),
			Amount:        3,
			Confirmations: []*models.Confirmation{{Kind: flow.ConfirmationKindWithdrawRequest, Owner: alice.Hex()}},
		}))
		assert.NoError(suite.T(), tx.AddConfirmation(ctx, &models.Confirmation{Kind: flow.ConfirmationKindWithdrawRequest, SubjectID: id, Owner: bob.Hex()}))
		assert.NoError(suite.T(), tx.MarkWithdrawRequestExecuted(ctx, id, time.Now()))

		request, err := tx.FindWithdrawRequest(ctx, id)
		assert.NoError(suite.T(), err)
		assert.True(suite.T(), request.Executed)
		assert.Equal(suite.T(), []string{alice.Hex(), bob.Hex()}, models.Owners(request.Confirmations))
		return nil
	})
	assert.NoError(suite.T(), err)
}

func (suite *StoreTestSuite) TestWithdrawAddressProposal() {
	ctx := context.Background()
	err := suite.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		first := &models.WithdrawAddressProposal{
			PendingAddress: alice.Hex(),
			Confirmations:  []*models.Confirmation{{Kind: flow.ConfirmationKindWithdrawAddress, Owner: alice.Hex()}},
		}
		assert.NoError(suite.T(), tx.ReplaceWithdrawAddressProposal(ctx, first))
		second := &models.WithdrawAddressProposal{
			PendingAddress: contract.Hex(),
			Confirmations:  []*models.Confirmation{{Kind: flow.ConfirmationKindWithdrawAddress, Owner: bob.Hex()}},
		}
		assert.NoError(suite.T(), tx.ReplaceWithdrawAddressProposal(ctx, second))
		assert.ErrorIs(suite.T(), tx.AddConfirmation(ctx, &models.Confirmation{Kind: flow.ConfirmationKindWithdrawAddress, SubjectID: first.ID, Owner: alice.Hex()}), ledger.ErrNotFound)

		pending, err := tx.FindWithdrawAddressProposal(ctx)
		assert.NoError(suite.T(), err)
		assert.Equal(suite.T(), contract.Hex(), pending.PendingAddress)
		assert.Equal(suite.T(), []string{bob.Hex()}, models.Owners(pending.Confirmations))

		assert.NoError(suite.T(), tx.ClearWithdrawAddressProposal(ctx))
		_, err = tx.FindWithdrawAddressProposal(ctx)
		assert.ErrorIs(suite.T(), err, ledger.ErrNotFound)
		return nil
	})
	assert.NoError(suite.T(), err)
}

func (suite *StoreTestSuite) TestEvents() {
	ctx := context.Background()
	err := suite.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		for i := 0; i < 3; i++ {
			assert.NoError(suite.T(), tx.InsertEvent(ctx, &models.Event{Type: flow.EventInvoiceRegistered, Payload: []byte(fmt.Sprintf(`{"invoice_id":%d}`, i)), CreatedAt: time.Now()}))
		}
		events, err := tx.Events(ctx, 0, 0)
		assert.NoError(suite.T(), err)
		assert.Len(suite.T(), events, 3)
		tail, err := tx.Events(ctx, events[0].ID, 1)
		assert.NoError(suite.T(), err)
		assert.Len(suite.T(), tail, 1)
		assert.Equal(suite.T(), events[1].ID, tail[0].ID)
		assert.JSONEq(suite.T(), `{"invoice_id":1}`, string(tail[0].Payload))
		return nil
	})
	assert.NoError(suite.T(), err)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
