package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	flow "github.com/getAlby/invoiceflow/common"
	"github.com/getAlby/invoiceflow/ledger"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/stretchr/testify/assert"
)

func TestWebhookSubscription(t *testing.T) {
	received := make(chan service.EventPayload, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := service.EventPayload{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		received <- payload
	}))
	defer srv.Close()

	svc, _, err := newTestService(ledger.NewMemory(), 1, ownerA)
	assert.NoError(t, err)
	svc.Config.WebhookUrl = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.StartWebhookSubscription(ctx)

	// the subscription starts asynchronously, keep registering until the first post arrives
	var payload service.EventPayload
	deadline := time.After(5 * time.Second)
	for id := int64(1); ; id++ {
		_, err := svc.RegisterInvoice(context.Background(), ownerA, id, customer, 10, ledger.NativeToken, 60)
		assert.NoError(t, err)
		select {
		case payload = <-received:
		case <-time.After(50 * time.Millisecond):
			continue
		case <-deadline:
			t.Fatal("webhook was never called")
		}
		break
	}
	assert.Equal(t, flow.EventInvoiceRegistered, payload.Type)
	assert.Equal(t, contractAddress.Hex(), payload.Contract)
}
