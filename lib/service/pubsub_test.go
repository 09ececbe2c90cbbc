package service_test

import (
	"context"
	"testing"

	flow "github.com/getAlby/invoiceflow/common"
	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/ledger"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/stretchr/testify/assert"
)

func TestPubsub(t *testing.T) {
	ps := service.NewPubsub()
	paid := make(chan models.Event, 1)
	all := make(chan models.Event, 2)

	paidId, err := ps.Subscribe(flow.EventInvoicePaid, paid)
	assert.NoError(t, err)
	_, err = ps.Subscribe(service.TopicAll, all)
	assert.NoError(t, err)

	ps.Publish(flow.EventInvoiceRegistered, models.Event{ID: 1, Type: flow.EventInvoiceRegistered})
	ps.Publish(flow.EventInvoicePaid, models.Event{ID: 2, Type: flow.EventInvoicePaid})

	assert.Equal(t, int64(2), (<-paid).ID)
	assert.Equal(t, int64(1), (<-all).ID)
	assert.Equal(t, int64(2), (<-all).ID)

	ps.Unsubscribe(paidId, flow.EventInvoicePaid)
	_, open := <-paid
	assert.False(t, open)
	// publishing to a topic without subscribers is a no-op
	ps.Publish(flow.EventInvoicePaid, models.Event{ID: 3})
}

func TestSubscribeToEvents(t *testing.T) {
	ctx := context.Background()
	svc, _, err := newTestService(ledger.NewMemory(), 1, ownerA)
	assert.NoError(t, err)
	events, unsubscribe, err := svc.SubscribeToEvents()
	assert.NoError(t, err)
	defer unsubscribe()

	_, err = svc.RegisterInvoice(ctx, ownerA, 1, customer, 10, ledger.NativeToken, 60)
	assert.NoError(t, err)
	// rejected calls publish nothing
	_, err = svc.RegisterInvoice(ctx, ownerA, 1, customer, 10, ledger.NativeToken, 60)
	assert.Error(t, err)
	_, err = svc.RemoveInvoice(ctx, ownerA, 1)
	assert.NoError(t, err)

	registered := <-events
	assert.Equal(t, flow.EventInvoiceRegistered, registered.Type)
	removed := <-events
	assert.Equal(t, flow.EventInvoiceRemoved, removed.Type)
	assert.Greater(t, removed.ID, registered.ID)
	assert.Len(t, events, 0)

	payload := svc.NewEventPayload(removed)
	assert.Equal(t, contractAddress.Hex(), payload.Contract)
	assert.Equal(t, removed.CreatedAt.Unix(), payload.CreatedAt)
}
