// generates owner keys and signs login messages for local testing
//
//	go run ./cmd/keys                 new key and its address
//	go run ./cmd/keys <private key>   /auth request body for that key
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/getAlby/invoiceflow/lib/security"
)

func main() {
	if len(os.Args) < 2 {
		key, err := crypto.GenerateKey()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println("private key:", hexutil.Encode(crypto.FromECDSA(key))[2:])
		fmt.Println("address:    ", crypto.PubkeyToAddress(key.PublicKey).Hex())
		return
	}

	timestamp := time.Now().Unix()
	address, signature, err := security.SignLogin(os.Args[1], timestamp)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	body, _ := json.MarshalIndent(map[string]interface{}{
		"address":   address.Hex(),
		"timestamp": timestamp,
		"signature": signature,
	}, "", "  ")
	fmt.Println(security.LoginMessage(address, timestamp))
	fmt.Println(string(body))
}
