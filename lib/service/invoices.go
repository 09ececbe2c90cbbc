package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
	flow "github.com/getAlby/invoiceflow/common"
	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/ledger"
)

// MaxExpiresInSeconds is the longest invoice lifetime a time.Duration can hold.
const MaxExpiresInSeconds = math.MaxInt64 / int64(time.Second)

type InvoiceEvent struct {
	InvoiceID int64     `json:"invoice_id"`
	Customer  string    `json:"customer"`
	Token     string    `json:"token"`
	Amount    int64     `json:"amount"`
	ExpiresAt time.Time `json:"expires_at"`
	Payer     string    `json:"payer,omitempty"`
}

func newInvoiceEvent(invoice *models.Invoice) InvoiceEvent {
	return InvoiceEvent{
		InvoiceID: invoice.ID,
		Customer:  invoice.Customer,
		Token:     invoice.Token,
		Amount:    invoice.Amount,
		ExpiresAt: invoice.ExpiresAt,
	}
}

func (svc *InvoiceFlowService) RegisterInvoice(ctx context.Context, caller common.Address, id int64, customer common.Address, amount int64, token common.Address, expiresInSeconds int64) (*models.Invoice, error) {
	if err := svc.requireOwner(caller); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, ErrInvalidInvoiceID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if customer == (common.Address{}) {
		return nil, ErrInvalidAddress
	}
	if !svc.Contract.IsTokenAccepted(token) {
		return nil, ErrTokenNotSupported
	}
	if expiresInSeconds <= 0 || expiresInSeconds > MaxExpiresInSeconds {
		return nil, ErrInvalidExpirationValue
	}

	var invoice *models.Invoice
	err := svc.call(ctx, func(ctx context.Context, t *txn) error {
		_, err := t.FindInvoice(ctx, id)
		if err == nil {
			return ErrInvoiceAlreadyExist
		}
		if !errors.Is(err, ledger.ErrNotFound) {
			return err
		}
		invoice = &models.Invoice{
			ID:        id,
			Customer:  customer.Hex(),
			Token:     token.Hex(),
			Amount:    amount,
			ExpiresAt: t.now.Add(time.Duration(expiresInSeconds) * time.Second),
			CreatedAt: t.now,
		}
		if err := t.InsertInvoice(ctx, invoice); err != nil {
			return err
		}
		return t.emit(ctx, flow.EventInvoiceRegistered, newInvoiceEvent(invoice))
	})
	if err != nil {
		return nil, err
	}
	svc.Logger.Infof("Invoice registered: id:%d customer:%s token:%s amount:%d expires_at:%s", invoice.ID, invoice.Customer, invoice.Token, invoice.Amount, invoice.ExpiresAt)
	return invoice, nil
}

// RemoveInvoice deletes a live invoice and returns the deleted record.
func (svc *InvoiceFlowService) RemoveInvoice(ctx context.Context, caller common.Address, id int64) (*models.Invoice, error) {
	if err := svc.requireOwner(caller); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, ErrInvalidInvoiceID
	}

	var invoice *models.Invoice
	err := svc.call(ctx, func(ctx context.Context, t *txn) error {
		var err error
		invoice, err = findInvoice(ctx, t, id)
		if err != nil {
			return err
		}
		if err := t.DeleteInvoice(ctx, id); err != nil {
			return err
		}
		return t.emit(ctx, flow.EventInvoiceRemoved, newInvoiceEvent(invoice))
	})
	if err != nil {
		return nil, err
	}
	svc.Logger.Infof("Invoice removed: id:%d by:%s", id, caller.Hex())
	return invoice, nil
}

// SettleInvoice pays invoice id on behalf of payer. sentValue is the native amount
// attached to the call; it must match a native invoice exactly and be zero otherwise.
// Anyone may settle, the customer recorded on the invoice is not enforced.
func (svc *InvoiceFlowService) SettleInvoice(ctx context.Context, payer common.Address, id int64, sentValue int64) (*models.Invoice, error) {
	contractAddress := svc.Contract.Address()

	var invoice *models.Invoice
	err := svc.call(ctx, func(ctx context.Context, t *txn) error {
		var err error
		invoice, err = findInvoice(ctx, t, id)
		if err != nil {
			return err
		}
		if invoice.IsExpired(t.now) {
			return ErrInvoiceExpired
		}

		token := common.HexToAddress(invoice.Token)
		if token == ledger.NativeToken {
			if sentValue != invoice.Amount {
				return ErrSentAmountNotMatch
			}
			if err := t.Transfer(ctx, ledger.NativeToken, payer, contractAddress, sentValue); err != nil {
				return fundsError(err)
			}
		} else {
			if sentValue != 0 {
				return ErrSentAmountNotMatch
			}
			allowance, err := t.AllowanceOf(ctx, token, payer, contractAddress)
			if err != nil {
				return err
			}
			if allowance < invoice.Amount {
				return ErrAllowanceNotSufficient
			}
			balance, err := t.BalanceOf(ctx, token, payer)
			if err != nil {
				return err
			}
			if balance < invoice.Amount {
				return ErrInsufficientBalance
			}
			if err := t.TransferFrom(ctx, token, contractAddress, payer, contractAddress, invoice.Amount); err != nil {
				return fundsError(err)
			}
		}

		if err := t.DeleteInvoice(ctx, id); err != nil {
			return err
		}
		paid := newInvoiceEvent(invoice)
		paid.Payer = payer.Hex()
		return t.emit(ctx, flow.EventInvoicePaid, paid)
	})
	if err != nil {
		return nil, err
	}
	svc.Logger.Infof("Invoice paid: id:%d payer:%s token:%s amount:%d", invoice.ID, payer.Hex(), invoice.Token, invoice.Amount)

	svc.recordReceipt(PaymentRecord{
		Contract:  contractAddress.Hex(),
		InvoiceID: invoice.ID,
		Payer:     payer.Hex(),
		Token:     invoice.Token,
		Amount:    invoice.Amount,
	})
	return invoice, nil
}

func findInvoice(ctx context.Context, tx ledger.Tx, id int64) (*models.Invoice, error) {
	if id <= 0 {
		return nil, ErrInvoiceNotFound
	}
	invoice, err := tx.FindInvoice(ctx, id)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, ErrInvoiceNotFound
	}
	return invoice, err
}
