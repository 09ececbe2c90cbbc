package security

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

func TestVerifyLogin(t *testing.T) {
	now := time.Unix(1700000000, 0)
	address, signature, err := SignLogin(testKey, now.Unix())
	assert.NoError(t, err)

	key, err := crypto.HexToECDSA(testKey)
	assert.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), address)

	assert.NoError(t, VerifyLogin(address, now.Unix(), signature, now.Add(time.Minute)))
	assert.ErrorIs(t, VerifyLogin(address, now.Unix(), signature, now.Add(time.Hour)), ErrLoginExpired)
	// the signature is bound to the timestamp
	assert.ErrorIs(t, VerifyLogin(address, now.Unix()+1, signature, now), ErrSignatureMismatch)

	other := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	assert.ErrorIs(t, VerifyLogin(other, now.Unix(), signature, now), ErrSignatureMismatch)
}

func TestVerifySignatureRejectsGarbage(t *testing.T) {
	address := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	assert.ErrorIs(t, VerifySignature(address, "hello", "0x1234"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature(address, "hello", "not hex"), ErrInvalidSignature)
}
