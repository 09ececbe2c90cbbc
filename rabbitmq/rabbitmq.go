package rabbitmq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ziflex/lecho/v3"
)

// bufPool lets concurrent publishers reuse encoding buffers instead of allocating one per event.
var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

const (
	contentTypeJSON = "application/json"

	DefaultEventExchange = "invoiceflow_events"
)

type (
	SubscribeToEventsFunc = func() (events chan models.Event, unsubscribe func(), err error)
	EncodeEventFunc       = func(ctx context.Context, w io.Writer, event models.Event) error
)

type Client interface {
	StartPublishEvents(context.Context, SubscribeToEventsFunc, EncodeEventFunc) error
	// Close will close all connections to rabbitmq
	Close() error
}

type DefaultClient struct {
	amqpClient AMQPClient

	logger *lecho.Logger

	eventExchange string
}

type ClientOption = func(client *DefaultClient)

func WithEventExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		if exchange != "" {
			client.eventExchange = exchange
		}
	}
}

func WithLogger(logger *lecho.Logger) ClientOption {
	return func(client *DefaultClient) {
		client.logger = logger
	}
}

func NewClient(amqpClient AMQPClient, options ...ClientOption) (Client, error) {
	client := &DefaultClient{
		amqpClient: amqpClient,

		logger: lecho.New(
			os.Stdout,
			lecho.WithLevel(log.DEBUG),
			lecho.WithTimestamp(),
		),

		eventExchange: DefaultEventExchange,
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

func (client *DefaultClient) Close() error { return client.amqpClient.Close() }

// RoutingKey is the key an event is published under, consumers bind to event.# or a single type.
func RoutingKey(event models.Event) string {
	return fmt.Sprintf("event.%s", event.Type)
}

// StartPublishEvents forwards every committed event to the event exchange until ctx is done.
func (client *DefaultClient) StartPublishEvents(ctx context.Context, subscribe SubscribeToEventsFunc, payloadFunc EncodeEventFunc) error {
	err := client.amqpClient.ExchangeDeclare(
		client.eventExchange,
		// topic is a type of exchange that allows routing messages to different queue's bases on a routing key
		"topic",
		// Durable and Non-Auto-Deleted exchanges will survive server restarts and remain
		// declared when there are no remaining bindings.
		true,
		false,
		// Non-Internal exchange's accept direct publishing
		false,
		// Nowait: We set this to false as we want to wait for a server response
		// to check whether the exchange was created succesfully
		false,
		nil,
	)
	if err != nil {
		return err
	}

	events, unsubscribe, err := subscribe()
	if err != nil {
		return err
	}
	defer unsubscribe()

	client.logger.Info("Starting rabbitmq event publisher")
	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case event, ok := <-events:
			if !ok {
				return nil
			}
			err = client.publishEvent(ctx, event, payloadFunc)
			if err != nil {
				captureErr(client.logger, err)
			}
		}
	}
}

func (client *DefaultClient) publishEvent(ctx context.Context, event models.Event, payloadFunc EncodeEventFunc) error {
	payload := bufPool.Get().(*bytes.Buffer)
	payload.Reset()
	defer bufPool.Put(payload)

	err := payloadFunc(ctx, payload, event)
	if err != nil {
		return err
	}

	err = client.amqpClient.PublishWithContext(ctx,
		client.eventExchange,
		RoutingKey(event),
		false,
		false,
		amqp.Publishing{
			ContentType: contentTypeJSON,
			MessageId:   fmt.Sprintf("%d", event.ID),
			Body:        payload.Bytes(),
		},
	)
	if err != nil {
		return err
	}

	client.logger.Debugf("Successfully published event to rabbitmq: id:%d type:%s", event.ID, event.Type)

	return nil
}

func captureErr(logger *lecho.Logger, err error) {
	logger.Error(err)
	sentry.CaptureException(err)
}
