package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/ledger"
	"github.com/getAlby/invoiceflow/rabbitmq"
	"github.com/ziflex/lecho/v3"
)

type InvoiceFlowService struct {
	Config         *Config
	Contract       *ContractConfig
	Ledger         ledger.Ledger
	Logger         *lecho.Logger
	EventPubSub    *Pubsub
	ReceiptMinter  ReceiptMinter
	RabbitMQClient rabbitmq.Client
	Metrics        *Metrics
	// Clock defaults to time.Now
	Clock func() time.Time

	// calls are applied one at a time
	mu         sync.Mutex
	background sync.WaitGroup
}

// Init records the contract in the ledger the first time the service starts against it.
// The payout address is only taken from the configuration on that first start, afterwards
// it belongs to the ledger and changes through governance only.
func (svc *InvoiceFlowService) Init(ctx context.Context) error {
	return svc.Ledger.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		contract, err := tx.Contract(ctx)
		if err == nil {
			if contract.Address != svc.Contract.Address().Hex() {
				return fmt.Errorf("ledger holds contract %s, configured contract is %s", contract.Address, svc.Contract.Address().Hex())
			}
			return nil
		}
		if !errors.Is(err, ledger.ErrNotFound) {
			return err
		}
		return tx.SaveContract(ctx, &models.Contract{
			ID:            1,
			Address:       svc.Contract.Address().Hex(),
			PayoutAddress: svc.Contract.InitialPayoutAddress().Hex(),
			CreatedAt:     svc.now(),
		})
	})
}

// WaitBackground blocks until the post-commit side effects started so far are done.
func (svc *InvoiceFlowService) WaitBackground() {
	svc.background.Wait()
}

func (svc *InvoiceFlowService) now() time.Time {
	if svc.Clock != nil {
		return svc.Clock()
	}
	return time.Now()
}

// txn is the view a contract call has of the ledger: the ledger transaction plus the call
// timestamp and the facts emitted so far.
type txn struct {
	ledger.Tx
	now    time.Time
	events []models.Event
}

func (t *txn) emit(ctx context.Context, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := models.Event{Type: eventType, Payload: body, CreatedAt: t.now}
	if err := t.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("insert %s event: %w", eventType, err)
	}
	t.events = append(t.events, event)
	return nil
}

func (t *txn) contract(ctx context.Context) (*models.Contract, error) {
	contract, err := t.Contract(ctx)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, errors.New("contract is not initialized")
	}
	return contract, err
}

// call runs fn as one atomic contract call and publishes its facts once committed.
func (svc *InvoiceFlowService) call(ctx context.Context, fn func(ctx context.Context, t *txn) error) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	var committed []models.Event
	err := svc.Ledger.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		t := &txn{Tx: tx, now: svc.now()}
		if err := fn(ctx, t); err != nil {
			return err
		}
		committed = t.events
		return nil
	})
	if err != nil {
		return err
	}
	svc.publishEvents(committed)
	return nil
}

// read runs fn against a consistent view of the ledger without taking part in call ordering.
func (svc *InvoiceFlowService) read(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	return svc.Ledger.RunInTx(ctx, fn)
}

// fundsError translates a token provider refusal into the contract's error taxonomy.
func fundsError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return ErrInsufficientBalance
	case errors.Is(err, ledger.ErrInsufficientAllowance):
		return ErrAllowanceNotSufficient
	case errors.Is(err, ledger.ErrInvalidAmount):
		return ErrInvalidAmount
	}
	return err
}
