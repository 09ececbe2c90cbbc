package rabbitmq_test

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/rabbitmq"
	"github.com/getAlby/invoiceflow/rabbitmq/mock_rabbitmq"
	"github.com/golang/mock/gomock"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

//go:generate mockgen -destination=./mock_rabbitmq/rabbitmq.go github.com/getAlby/invoiceflow/rabbitmq AMQPClient

func encodeEvent(ctx context.Context, w io.Writer, event models.Event) error {
	return json.NewEncoder(w).Encode(event)
}

func TestStartPublishEvents(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	amqpClient := mock_rabbitmq.NewMockAMQPClient(ctrl)

	client, err := rabbitmq.NewClient(amqpClient, rabbitmq.WithEventExchange("test_events"))
	assert.NoError(t, err)

	events := make(chan models.Event, 2)
	events <- models.Event{ID: 1, Type: "InvoiceRegistered", Payload: json.RawMessage(`{"invoice_id":1}`)}
	events <- models.Event{ID: 2, Type: "InvoicePaid", Payload: json.RawMessage(`{"invoice_id":1}`)}

	var wg sync.WaitGroup
	wg.Add(2)

	amqpClient.EXPECT().
		ExchangeDeclare(gomock.Eq("test_events"), gomock.Eq("topic"), true, false, false, false, gomock.Any()).
		Times(1).
		Return(nil)
	amqpClient.EXPECT().
		PublishWithContext(gomock.Any(), gomock.Eq("test_events"), gomock.Eq("event.InvoiceRegistered"), false, false, gomock.Any()).
		Times(1).
		DoAndReturn(func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
			assert.Equal(t, "application/json", msg.ContentType)
			assert.Equal(t, "1", msg.MessageId)
			defer wg.Done()
			return nil
		})
	amqpClient.EXPECT().
		PublishWithContext(gomock.Any(), gomock.Eq("test_events"), gomock.Eq("event.InvoicePaid"), false, false, gomock.Any()).
		Times(1).
		DoAndReturn(func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
			event := models.Event{}
			assert.NoError(t, json.Unmarshal(msg.Body, &event))
			assert.Equal(t, int64(2), event.ID)
			defer wg.Done()
			return nil
		})

	unsubscribed := make(chan struct{})
	subscribe := func() (chan models.Event, func(), error) {
		return events, func() { close(unsubscribed) }, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- client.StartPublishEvents(ctx, subscribe, encodeEvent)
	}()

	wg.Wait()
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop")
	}
	<-unsubscribed
}

func TestStartPublishEventsExchangeError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	amqpClient := mock_rabbitmq.NewMockAMQPClient(ctrl)
	client, err := rabbitmq.NewClient(amqpClient)
	assert.NoError(t, err)

	amqpClient.EXPECT().
		ExchangeDeclare(gomock.Eq(rabbitmq.DefaultEventExchange), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(amqp.ErrClosed)

	subscribe := func() (chan models.Event, func(), error) {
		t.Fatal("must not subscribe when the exchange cannot be declared")
		return nil, nil, nil
	}
	err = client.StartPublishEvents(context.Background(), subscribe, encodeEvent)
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "event.WithdrawRequestExecuted", rabbitmq.RoutingKey(models.Event{Type: "WithdrawRequestExecuted"}))
}
