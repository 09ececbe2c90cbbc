// Package ledger defines the single authoritative store the contract runs against.
// Every call of the contract executes inside one RunInTx: contract records, the event
// outbox and token balances commit together or not at all.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/db/models"
)

var (
	ErrNotFound              = errors.New("ledger: record not found")
	ErrInsufficientFunds     = errors.New("ledger: insufficient funds")
	ErrInsufficientAllowance = errors.New("ledger: insufficient allowance")
	ErrInvalidAmount         = errors.New("ledger: amount must be positive")
)

// NativeToken is the sentinel identifier of the ledger's base currency.
var NativeToken = common.Address{}

// TokenProvider is the transfer/allowance surface of every token the contract touches,
// the native currency included.
type TokenProvider interface {
	AllowanceOf(ctx context.Context, token, owner, spender common.Address) (int64, error)
	BalanceOf(ctx context.Context, token, holder common.Address) (int64, error)
	TransferFrom(ctx context.Context, token, spender, from, to common.Address, amount int64) error
	Transfer(ctx context.Context, token, from, to common.Address, amount int64) error
}

type Tx interface {
	TokenProvider
	Approve(ctx context.Context, token, owner, spender common.Address, amount int64) error
	Mint(ctx context.Context, token, to common.Address, amount int64) error

	Contract(ctx context.Context) (*models.Contract, error)
	SaveContract(ctx context.Context, contract *models.Contract) error

	FindInvoice(ctx context.Context, id int64) (*models.Invoice, error)
	InsertInvoice(ctx context.Context, invoice *models.Invoice) error
	DeleteInvoice(ctx context.Context, id int64) error
	InvoiceIDs(ctx context.Context) ([]int64, error)

	NextWithdrawRequestID(ctx context.Context) (int64, error)
	FindWithdrawRequest(ctx context.Context, id int64) (*models.WithdrawRequest, error)
	// InsertWithdrawRequest stores the request together with its initial confirmations.
	InsertWithdrawRequest(ctx context.Context, request *models.WithdrawRequest) error
	MarkWithdrawRequestExecuted(ctx context.Context, id int64, at time.Time) error

	FindWithdrawAddressProposal(ctx context.Context) (*models.WithdrawAddressProposal, error)
	// ReplaceWithdrawAddressProposal drops any pending proposal with its confirmations,
	// then stores proposal and its initial confirmations.
	ReplaceWithdrawAddressProposal(ctx context.Context, proposal *models.WithdrawAddressProposal) error
	ClearWithdrawAddressProposal(ctx context.Context) error

	AddConfirmation(ctx context.Context, confirmation *models.Confirmation) error

	InsertEvent(ctx context.Context, event *models.Event) error
	Events(ctx context.Context, afterID int64, limit int) ([]models.Event, error)
}

type Ledger interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
