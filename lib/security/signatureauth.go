package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// MaxLoginMessageAge bounds how far a signed login message may be from the server clock.
const MaxLoginMessageAge = 5 * time.Minute

var (
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrSignatureMismatch = errors.New("signature does not match address")
	ErrLoginExpired      = errors.New("login message expired")
)

// LoginMessage is the text a wallet signs with personal_sign to obtain an access token.
func LoginMessage(address common.Address, timestamp int64) string {
	return fmt.Sprintf("Sign in to invoiceflow as %s at %d", address.Hex(), timestamp)
}

// VerifyLogin checks that signature is address's personal_sign of the login message for timestamp.
func VerifyLogin(address common.Address, timestamp int64, signature string, now time.Time) error {
	age := now.Sub(time.Unix(timestamp, 0))
	if age > MaxLoginMessageAge || age < -MaxLoginMessageAge {
		return ErrLoginExpired
	}
	return VerifySignature(address, LoginMessage(address, timestamp), signature)
}

// VerifySignature checks an EIP-191 personal_sign signature of message against address.
func VerifySignature(address common.Address, message string, signature string) error {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return ErrInvalidSignature
	}
	// wallets put the recovery id as 27/28
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return ErrInvalidSignature
	}
	if crypto.PubkeyToAddress(*pub) != address {
		return ErrSignatureMismatch
	}
	return nil
}

// SignLogin produces the signature VerifyLogin expects, for the keys CLI and tests.
func SignLogin(key string, timestamp int64) (common.Address, string, error) {
	privateKey, err := crypto.HexToECDSA(key)
	if err != nil {
		return common.Address{}, "", err
	}
	address := crypto.PubkeyToAddress(privateKey.PublicKey)
	sig, err := crypto.Sign(accounts.TextHash([]byte(LoginMessage(address, timestamp))), privateKey)
	if err != nil {
		return common.Address{}, "", err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return address, hexutil.Encode(sig), nil
}
