package service

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	flow "github.com/getAlby/invoiceflow/common"
	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/ledger"
)

type WithdrawRequestEvent struct {
	RequestID     int64  `json:"request_id"`
	Token         string `json:"token"`
	Amount        int64  `json:"amount"`
	Owner         string `json:"owner,omitempty"`
	Confirmations int    `json:"confirmations"`
	PayoutAddress string `json:"payout_address,omitempty"`
}

// RegisterWithdrawRequest queues the release of amount of token to the payout address.
// The submitting owner counts as the first confirmation, with a threshold of one the
// request executes right away.
func (svc *InvoiceFlowService) RegisterWithdrawRequest(ctx context.Context, caller common.Address, amount int64, token common.Address) (*models.WithdrawRequest, error) {
	if err := svc.requireOwner(caller); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !svc.Contract.IsTokenAccepted(token) {
		return nil, ErrTokenNotSupported
	}

	var request *models.WithdrawRequest
	err := svc.call(ctx, func(ctx context.Context, t *txn) error {
		balance, err := t.BalanceOf(ctx, token, svc.Contract.Address())
		if err != nil {
			return err
		}
		if amount > balance {
			return ErrInsufficientBalance
		}
		id, err := t.NextWithdrawRequestID(ctx)
		if err != nil {
			return err
		}
		request = &models.WithdrawRequest{
			ID:     id,
			Token:  token.Hex(),
			Amount: amount,
			Confirmations: []*models.Confirmation{{
				Kind:      flow.ConfirmationKindWithdrawRequest,
				SubjectID: id,
				Owner:     caller.Hex(),
				CreatedAt: t.now,
			}},
			CreatedAt: t.now,
		}
		if err := t.InsertWithdrawRequest(ctx, request); err != nil {
			return err
		}
		err = t.emit(ctx, flow.EventWithdrawRequestRegistered, WithdrawRequestEvent{
			RequestID:     request.ID,
			Token:         request.Token,
			Amount:        request.Amount,
			Owner:         caller.Hex(),
			Confirmations: len(request.Confirmations),
		})
		if err != nil {
			return err
		}
		return svc.executeIfConfirmed(ctx, t, request)
	})
	if err != nil {
		return nil, err
	}
	svc.Logger.Infof("Withdraw request registered: id:%d token:%s amount:%d by:%s executed:%v", request.ID, request.Token, request.Amount, caller.Hex(), request.Executed)
	return request, nil
}

func (svc *InvoiceFlowService) ApproveWithdrawRequest(ctx context.Context, caller common.Address, id int64) (*models.WithdrawRequest, error) {
	if err := svc.requireOwner(caller); err != nil {
		return nil, err
	}

	var request *models.WithdrawRequest
	err := svc.call(ctx, func(ctx context.Context, t *txn) error {
		var err error
		request, err = findWithdrawRequest(ctx, t, id)
		if err != nil {
			return err
		}
		if request.Executed {
			return ErrWithdrawAlreadyExecuted
		}
		if request.IsConfirmedBy(caller.Hex()) {
			return ErrAlreadyConfirmed
		}
		confirmation := &models.Confirmation{
			Kind:      flow.ConfirmationKindWithdrawRequest,
			SubjectID: request.ID,
			Owner:     caller.Hex(),
			CreatedAt: t.now,
		}
		if err := t.AddConfirmation(ctx, confirmation); err != nil {
			return err
		}
		request.Confirmations = append(request.Confirmations, confirmation)
		err = t.emit(ctx, flow.EventWithdrawRequestApproved, WithdrawRequestEvent{
			RequestID:     request.ID,
			Token:         request.Token,
			Amount:        request.Amount,
			Owner:         caller.Hex(),
			Confirmations: len(request.Confirmations),
		})
		if err != nil {
			return err
		}
		return svc.executeIfConfirmed(ctx, t, request)
	})
	if err != nil {
		return nil, err
	}
	svc.Logger.Infof("Withdraw request approved: id:%d by:%s confirmations:%d executed:%v", request.ID, caller.Hex(), len(request.Confirmations), request.Executed)
	return request, nil
}

// executeIfConfirmed releases the funds of request once it has reached the threshold.
// Registration and approval share it so a quorum of one executes on registration.
func (svc *InvoiceFlowService) executeIfConfirmed(ctx context.Context, t *txn, request *models.WithdrawRequest) error {
	if request.Executed || len(request.Confirmations) < svc.Contract.RequiredApprovals() {
		return nil
	}
	contract, err := t.contract(ctx)
	if err != nil {
		return err
	}
	token := common.HexToAddress(request.Token)
	payout := common.HexToAddress(contract.PayoutAddress)
	if err := t.Transfer(ctx, token, svc.Contract.Address(), payout, request.Amount); err != nil {
		return fundsError(err)
	}
	if err := t.MarkWithdrawRequestExecuted(ctx, request.ID, t.now); err != nil {
		return err
	}
	request.Executed = true
	request.ExecutedAt.Time = t.now
	return t.emit(ctx, flow.EventWithdrawRequestExecuted, WithdrawRequestEvent{
		RequestID:     request.ID,
		Token:         request.Token,
		Amount:        request.Amount,
		Confirmations: len(request.Confirmations),
		PayoutAddress: contract.PayoutAddress,
	})
}

func findWithdrawRequest(ctx context.Context, tx ledger.Tx, id int64) (*models.WithdrawRequest, error) {
	if id <= 0 {
		return nil, ErrWithdrawRequestNotFound
	}
	request, err := tx.FindWithdrawRequest(ctx, id)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, ErrWithdrawRequestNotFound
	}
	return request, err
}
