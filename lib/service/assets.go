package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/ledger"
)

type TokenBalance struct {
	Token   common.Address
	Balance int64
}

// Balances lists what holder owns of the native token and of every accepted token.
func (svc *InvoiceFlowService) Balances(ctx context.Context, holder common.Address) ([]TokenBalance, error) {
	tokens := append([]common.Address{ledger.NativeToken}, svc.Contract.AcceptedTokens()...)
	balances := make([]TokenBalance, 0, len(tokens))
	err := svc.read(ctx, func(ctx context.Context, tx ledger.Tx) error {
		for _, token := range tokens {
			balance, err := tx.BalanceOf(ctx, token, holder)
			if err != nil {
				return err
			}
			balances = append(balances, TokenBalance{Token: token, Balance: balance})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// ApproveContract lets the contract pull up to amount of token from owner when owner settles an invoice.
func (svc *InvoiceFlowService) ApproveContract(ctx context.Context, owner common.Address, token common.Address, amount int64) error {
	if token == ledger.NativeToken || !svc.Contract.IsTokenAccepted(token) {
		return ErrTokenNotSupported
	}
	if amount < 0 {
		return ErrInvalidAmount
	}
	return svc.call(ctx, func(ctx context.Context, t *txn) error {
		return fundsError(t.Approve(ctx, token, owner, svc.Contract.Address(), amount))
	})
}

// Mint credits amount of token to holder out of thin air. It backs the admin faucet.
func (svc *InvoiceFlowService) Mint(ctx context.Context, token common.Address, holder common.Address, amount int64) error {
	if !svc.Contract.IsTokenAccepted(token) {
		return ErrTokenNotSupported
	}
	if holder == (common.Address{}) {
		return ErrInvalidAddress
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	err := svc.call(ctx, func(ctx context.Context, t *txn) error {
		return fundsError(t.Mint(ctx, token, holder, amount))
	})
	if err != nil {
		return err
	}
	svc.Logger.Infof("Minted: token:%s holder:%s amount:%d", token.Hex(), holder.Hex(), amount)
	return nil
}

// Allowance returns how much of token the contract may still pull from owner.
func (svc *InvoiceFlowService) Allowance(ctx context.Context, token common.Address, owner common.Address) (int64, error) {
	var allowance int64
	err := svc.read(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		allowance, err = tx.AllowanceOf(ctx, token, owner, svc.Contract.Address())
		return err
	})
	return allowance, err
}
