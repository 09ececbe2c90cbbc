package service_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/stretchr/testify/assert"
)

func TestNewContractConfig(t *testing.T) {
	testCases := []struct {
		name              string
		address           common.Address
		owners            []common.Address
		tokens            []common.Address
		requiredApprovals int
		payout            common.Address
		err               error
	}{
		{"valid", contractAddress, []common.Address{ownerA, ownerB}, []common.Address{tokenUSD}, 2, payoutAddress, nil},
		{"zero contract address", common.Address{}, []common.Address{ownerA}, nil, 1, payoutAddress, service.ErrInvalidAddress},
		{"no owners", contractAddress, nil, nil, 1, payoutAddress, service.ErrInvalidAddress},
		{"zero approvals", contractAddress, []common.Address{ownerA}, nil, 0, payoutAddress, service.ErrInvalidApprovalsNumber},
		{"approvals above owner count", contractAddress, []common.Address{ownerA, ownerB}, nil, 3, payoutAddress, service.ErrInvalidApprovalsNumber},
		{"zero owner", contractAddress, []common.Address{ownerA, {}}, nil, 1, payoutAddress, service.ErrInvalidAddress},
		{"duplicate owner", contractAddress, []common.Address{ownerA, ownerA}, nil, 1, payoutAddress, service.ErrInvalidAddress},
		{"zero owner and zero approvals", contractAddress, []common.Address{ownerA, {}}, nil, 0, payoutAddress, service.ErrInvalidAddress},
		{"duplicate owner and approvals above owner count", contractAddress, []common.Address{ownerA, ownerA}, nil, 3, payoutAddress, service.ErrInvalidAddress},
		{"payout is the contract", contractAddress, []common.Address{ownerA}, nil, 1, contractAddress, service.ErrInvalidAddress},
		{"zero payout", contractAddress, []common.Address{ownerA}, nil, 1, common.Address{}, service.ErrInvalidAddress},
		{"native token listed", contractAddress, []common.Address{ownerA}, []common.Address{{}}, 1, payoutAddress, service.ErrInvalidTokenAddress},
		{"duplicate token", contractAddress, []common.Address{ownerA}, []common.Address{tokenUSD, tokenUSD}, 1, payoutAddress, service.ErrInvalidTokenAddress},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := service.NewContractConfig(tc.address, tc.owners, tc.tokens, tc.requiredApprovals, tc.payout)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.Nil(t, cfg)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.owners, cfg.Owners())
			assert.Equal(t, tc.tokens, cfg.AcceptedTokens())
			assert.Equal(t, tc.requiredApprovals, cfg.RequiredApprovals())
		})
	}
}

func TestContractConfigAccess(t *testing.T) {
	cfg, err := service.NewContractConfig(contractAddress, []common.Address{ownerA, ownerB}, []common.Address{tokenUSD}, 1, payoutAddress)
	assert.NoError(t, err)

	assert.True(t, cfg.IsOwner(ownerA))
	assert.False(t, cfg.IsOwner(stranger))
	assert.True(t, cfg.IsTokenAccepted(common.Address{}))
	assert.True(t, cfg.IsTokenAccepted(tokenUSD))
	assert.False(t, cfg.IsTokenAccepted(tokenEUR))

	// returned slices are copies
	owners := cfg.Owners()
	owners[0] = stranger
	assert.True(t, cfg.IsOwner(ownerA))
	assert.Equal(t, ownerA, cfg.Owners()[0])
}

func TestConfigDecodeAddresses(t *testing.T) {
	var list service.AddressList
	assert.NoError(t, list.Decode(ownerA.Hex()+", "+ownerB.Hex()+","))
	assert.Equal(t, service.AddressList{ownerA, ownerB}, list)

	assert.Error(t, list.Decode("0x1234"))

	var item service.AddressItem
	assert.NoError(t, item.Decode(" "+payoutAddress.Hex()))
	assert.Equal(t, payoutAddress, item.Address())
	assert.Error(t, item.Decode("not-an-address"))
}
