package service

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	flow "github.com/getAlby/invoiceflow/common"
	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/ledger"
)

type WithdrawAddressEvent struct {
	PendingAddress string `json:"pending_address,omitempty"`
	Owner          string `json:"owner,omitempty"`
	Confirmations  int    `json:"confirmations"`
	OldAddress     string `json:"old_address,omitempty"`
	NewAddress     string `json:"new_address,omitempty"`
}

// ProposeWithdrawAddress replaces any pending proposal, earlier confirmations included,
// with a proposal for newAddress confirmed by the caller.
func (svc *InvoiceFlowService) ProposeWithdrawAddress(ctx context.Context, caller common.Address, newAddress common.Address) (*models.WithdrawAddressProposal, error) {
	if err := svc.requireOwner(caller); err != nil {
		return nil, err
	}
	if newAddress == (common.Address{}) || newAddress == svc.Contract.Address() {
		return nil, ErrInvalidAddress
	}

	var proposal *models.WithdrawAddressProposal
	err := svc.call(ctx, func(ctx context.Context, t *txn) error {
		contract, err := t.contract(ctx)
		if err != nil {
			return err
		}
		if common.HexToAddress(contract.PayoutAddress) == newAddress {
			return ErrNewAddressMustBeSet
		}
		proposal = &models.WithdrawAddressProposal{
			PendingAddress: newAddress.Hex(),
			Confirmations: []*models.Confirmation{{
				Kind:      flow.ConfirmationKindWithdrawAddress,
				Owner:     caller.Hex(),
				CreatedAt: t.now,
			}},
			CreatedAt: t.now,
		}
		if err := t.ReplaceWithdrawAddressProposal(ctx, proposal); err != nil {
			return err
		}
		err = t.emit(ctx, flow.EventWithdrawAddressChangeRequested, WithdrawAddressEvent{
			PendingAddress: proposal.PendingAddress,
			Owner:          caller.Hex(),
			Confirmations:  len(proposal.Confirmations),
		})
		if err != nil {
			return err
		}
		return svc.commitIfConfirmed(ctx, t, contract, proposal)
	})
	if err != nil {
		return nil, err
	}
	svc.Logger.Infof("Withdraw address change requested: pending:%s by:%s", newAddress.Hex(), caller.Hex())
	return proposal, nil
}

// ConfirmWithdrawAddressChange adds the caller to the pending proposal. The returned
// proposal is empty when this confirmation committed the change.
func (svc *InvoiceFlowService) ConfirmWithdrawAddressChange(ctx context.Context, caller common.Address) (*models.WithdrawAddressProposal, error) {
	if err := svc.requireOwner(caller); err != nil {
		return nil, err
	}

	var proposal *models.WithdrawAddressProposal
	err := svc.call(ctx, func(ctx context.Context, t *txn) error {
		var err error
		proposal, err = t.FindWithdrawAddressProposal(ctx)
		if errors.Is(err, ledger.ErrNotFound) {
			return ErrNewAddressMustBeSet
		}
		if err != nil {
			return err
		}
		if proposal.IsConfirmedBy(caller.Hex()) {
			return ErrAlreadyConfirmed
		}
		confirmation := &models.Confirmation{
			Kind:      flow.ConfirmationKindWithdrawAddress,
			SubjectID: proposal.ID,
			Owner:     caller.Hex(),
			CreatedAt: t.now,
		}
		if err := t.AddConfirmation(ctx, confirmation); err != nil {
			return err
		}
		proposal.Confirmations = append(proposal.Confirmations, confirmation)
		err = t.emit(ctx, flow.EventWithdrawAddressChangeApproved, WithdrawAddressEvent{
			PendingAddress: proposal.PendingAddress,
			Owner:          caller.Hex(),
			Confirmations:  len(proposal.Confirmations),
		})
		if err != nil {
			return err
		}
		contract, err := t.contract(ctx)
		if err != nil {
			return err
		}
		return svc.commitIfConfirmed(ctx, t, contract, proposal)
	})
	if err != nil {
		return nil, err
	}
	if proposal.PendingAddress == "" {
		svc.Logger.Infof("Withdraw address changed: confirmed by:%s", caller.Hex())
	} else {
		svc.Logger.Infof("Withdraw address change approved: by:%s confirmations:%d", caller.Hex(), len(proposal.Confirmations))
	}
	return proposal, nil
}

// commitIfConfirmed moves the payout address once the proposal reached the threshold
// and resets the proposal to none.
func (svc *InvoiceFlowService) commitIfConfirmed(ctx context.Context, t *txn, contract *models.Contract, proposal *models.WithdrawAddressProposal) error {
	if len(proposal.Confirmations) < svc.Contract.RequiredApprovals() {
		return nil
	}
	oldAddress := contract.PayoutAddress
	contract.PayoutAddress = proposal.PendingAddress
	if err := t.SaveContract(ctx, contract); err != nil {
		return err
	}
	if err := t.ClearWithdrawAddressProposal(ctx); err != nil {
		return err
	}
	err := t.emit(ctx, flow.EventWithdrawAddressChanged, WithdrawAddressEvent{
		OldAddress: oldAddress,
		NewAddress: contract.PayoutAddress,
	})
	if err != nil {
		return err
	}
	*proposal = models.WithdrawAddressProposal{Confirmations: []*models.Confirmation{}}
	return nil
}
