package service_test

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/ledger"
	"github.com/getAlby/invoiceflow/lib/logging"
	"github.com/getAlby/invoiceflow/lib/service"
)

var (
	contractAddress = common.HexToAddress("0xc0ffee254729296a45a3885639AC7E10F9d54979")
	ownerA          = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	ownerB          = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	ownerC          = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	stranger        = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	customer        = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	payer           = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	payoutAddress   = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	newPayout       = common.HexToAddress("0x00000000000000000000000000000000000000e2")
	tokenUSD        = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	tokenEUR        = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

var errInjected = errors.New("injected ledger failure")

// failingLedger makes every event of type failOn fail to persist.
type failingLedger struct {
	*ledger.Memory
	failOn string
}

type failingTx struct {
	ledger.Tx
	failOn string
}

func (l *failingLedger) RunInTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	return l.Memory.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		return fn(ctx, &failingTx{Tx: tx, failOn: l.failOn})
	})
}

func (tx *failingTx) InsertEvent(ctx context.Context, event *models.Event) error {
	if event.Type == tx.failOn {
		return errInjected
	}
	return tx.Tx.InsertEvent(ctx, event)
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestService(l ledger.Ledger, requiredApprovals int, owners ...common.Address) (*service.InvoiceFlowService, *clock, error) {
	contract, err := service.NewContractConfig(contractAddress, owners, []common.Address{tokenUSD}, requiredApprovals, payoutAddress)
	if err != nil {
		return nil, nil, err
	}
	c := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := &service.InvoiceFlowService{
		Config:        &service.Config{},
		Contract:      contract,
		Ledger:        l,
		Logger:        logging.Logger(""),
		EventPubSub:   service.NewPubsub(),
		ReceiptMinter: service.NoopReceiptMinter{},
		Clock:         c.Now,
	}
	if err := svc.Init(context.Background()); err != nil {
		return nil, nil, err
	}
	return svc, c, nil
}

func eventTypes(events []models.Event) []string {
	types := make([]string, 0, len(events))
	for _, event := range events {
		types = append(types, event.Type)
	}
	return types
}
