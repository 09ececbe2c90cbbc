package service

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/ledger"
)

type Summary struct {
	Contract          common.Address
	Owners            []common.Address
	AcceptedTokens    []common.Address
	PayoutAddress     common.Address
	RequiredApprovals int
}

func (svc *InvoiceFlowService) GetSummary(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		Contract:          svc.Contract.Address(),
		Owners:            svc.Contract.Owners(),
		AcceptedTokens:    svc.Contract.AcceptedTokens(),
		RequiredApprovals: svc.Contract.RequiredApprovals(),
	}
	err := svc.read(ctx, func(ctx context.Context, tx ledger.Tx) error {
		contract, err := tx.Contract(ctx)
		if err != nil {
			return err
		}
		summary.PayoutAddress = common.HexToAddress(contract.PayoutAddress)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// GetInvoiceIDs returns the ids of all live invoices in ascending order.
func (svc *InvoiceFlowService) GetInvoiceIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := svc.read(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		ids, err = tx.InvoiceIDs(ctx)
		return err
	})
	return ids, err
}

func (svc *InvoiceFlowService) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := svc.read(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		invoice, err = findInvoice(ctx, tx, id)
		return err
	})
	return invoice, err
}

func (svc *InvoiceFlowService) GetWithdrawRequest(ctx context.Context, id int64) (*models.WithdrawRequest, error) {
	var request *models.WithdrawRequest
	err := svc.read(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		request, err = findWithdrawRequest(ctx, tx, id)
		return err
	})
	return request, err
}

// GetWithdrawAddressProposal returns the pending proposal, or an empty one when none is pending.
func (svc *InvoiceFlowService) GetWithdrawAddressProposal(ctx context.Context) (*models.WithdrawAddressProposal, error) {
	proposal := &models.WithdrawAddressProposal{Confirmations: []*models.Confirmation{}}
	err := svc.read(ctx, func(ctx context.Context, tx ledger.Tx) error {
		pending, err := tx.FindWithdrawAddressProposal(ctx)
		if errors.Is(err, ledger.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		proposal = pending
		return nil
	})
	return proposal, err
}

func (svc *InvoiceFlowService) Events(ctx context.Context, afterID int64, limit int) ([]models.Event, error) {
	var events []models.Event
	err := svc.read(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		events, err = tx.Events(ctx, afterID, limit)
		return err
	})
	return events, err
}
