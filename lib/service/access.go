package service

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/ledger"
)

// ContractConfig is fixed when the contract is created: the owner set, the accepted tokens
// and the approval threshold never change afterwards.
type ContractConfig struct {
	address           common.Address
	owners            []common.Address
	ownerSet          map[common.Address]struct{}
	acceptedTokens    []common.Address
	tokenSet          map[common.Address]struct{}
	requiredApprovals int
	initialPayout     common.Address
}

func NewContractConfig(address common.Address, owners []common.Address, acceptedTokens []common.Address, requiredApprovals int, payoutAddress common.Address) (*ContractConfig, error) {
	if address == (common.Address{}) {
		return nil, ErrInvalidAddress
	}
	if len(owners) == 0 {
		return nil, ErrInvalidAddress
	}
	cfg := &ContractConfig{
		address:           address,
		ownerSet:          make(map[common.Address]struct{}, len(owners)),
		tokenSet:          make(map[common.Address]struct{}, len(acceptedTokens)),
		requiredApprovals: requiredApprovals,
		initialPayout:     payoutAddress,
	}
	for _, owner := range owners {
		if owner == (common.Address{}) {
			return nil, ErrInvalidAddress
		}
		if _, dup := cfg.ownerSet[owner]; dup {
			return nil, ErrInvalidAddress
		}
		cfg.ownerSet[owner] = struct{}{}
		cfg.owners = append(cfg.owners, owner)
	}
	if requiredApprovals < 1 || requiredApprovals > len(owners) {
		return nil, ErrInvalidApprovalsNumber
	}
	if payoutAddress == (common.Address{}) || payoutAddress == address {
		return nil, ErrInvalidAddress
	}
	for _, token := range acceptedTokens {
		if token == ledger.NativeToken {
			return nil, ErrInvalidTokenAddress
		}
		if _, dup := cfg.tokenSet[token]; dup {
			return nil, ErrInvalidTokenAddress
		}
		cfg.tokenSet[token] = struct{}{}
		cfg.acceptedTokens = append(cfg.acceptedTokens, token)
	}
	return cfg, nil
}

// Address is the identity holding the custodied funds.
func (c *ContractConfig) Address() common.Address {
	return c.address
}

func (c *ContractConfig) Owners() []common.Address {
	return append([]common.Address(nil), c.owners...)
}

func (c *ContractConfig) AcceptedTokens() []common.Address {
	return append([]common.Address(nil), c.acceptedTokens...)
}

func (c *ContractConfig) RequiredApprovals() int {
	return c.requiredApprovals
}

func (c *ContractConfig) InitialPayoutAddress() common.Address {
	return c.initialPayout
}

func (c *ContractConfig) IsOwner(identity common.Address) bool {
	_, ok := c.ownerSet[identity]
	return ok
}

// IsTokenAccepted reports whether token may be used for invoices and withdrawals.
// The native token is always accepted.
func (c *ContractConfig) IsTokenAccepted(token common.Address) bool {
	if token == ledger.NativeToken {
		return true
	}
	_, ok := c.tokenSet[token]
	return ok
}

func (svc *InvoiceFlowService) IsOwner(identity common.Address) bool {
	return svc.Contract.IsOwner(identity)
}

func (svc *InvoiceFlowService) requireOwner(caller common.Address) error {
	if !svc.IsOwner(caller) {
		return ErrUnauthorized
	}
	return nil
}
