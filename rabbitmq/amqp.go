package rabbitmq

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ziflex/lecho/v3"
)

const (
	defaultHeartbeat = 10 * time.Second
	defaultLocale    = "en_US"
)

var ErrReconnecting = errors.New("amqp: trying to publish during reconnect")

// AMQPClient is the part of an amqp connection the event publisher needs.
type AMQPClient interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Close() error
}

type defaultAMQPClient struct {
	uri string

	mu             sync.RWMutex
	conn           *amqp.Connection
	publishChannel *amqp.Channel

	notifyCloseChan chan *amqp.Error
	reconFlag       atomic.Bool
	closed          atomic.Bool

	logger *lecho.Logger
}

type AMQPOption = func(client *defaultAMQPClient)

func WithAmqpLogger(logger *lecho.Logger) AMQPOption {
	return func(client *defaultAMQPClient) {
		client.logger = logger
	}
}

// DialAMQP connects to the broker and keeps reconnecting in the background whenever
// the connection drops.
func DialAMQP(uri string, options ...AMQPOption) (AMQPClient, error) {
	client := &defaultAMQPClient{
		uri: uri,
		logger: lecho.New(
			os.Stdout,
			lecho.WithLevel(log.DEBUG),
			lecho.WithTimestamp(),
		),
	}
	for _, opt := range options {
		opt(client)
	}

	err := client.connect()
	if err != nil {
		return nil, err
	}

	go client.reconnectionLoop()

	return client, nil
}

func (c *defaultAMQPClient) connect() error {
	conn, err := amqp.DialConfig(c.uri, amqp.Config{
		Heartbeat: defaultHeartbeat,
		Locale:    defaultLocale,
		Dial:      amqp.DefaultDial(time.Second * 3),
	})
	if err != nil {
		return err
	}

	publishChannel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	notifyCloseChan := make(chan *amqp.Error, 1)
	conn.NotifyClose(notifyCloseChan)

	c.mu.Lock()
	c.conn = conn
	c.publishChannel = publishChannel
	c.notifyCloseChan = notifyCloseChan
	c.mu.Unlock()

	return nil
}

func (c *defaultAMQPClient) reconnectionLoop() {
	for {
		c.mu.RLock()
		notifyCloseChan := c.notifyCloseChan
		c.mu.RUnlock()

		amqpError, ok := <-notifyCloseChan
		if !ok || c.closed.Load() {
			return
		}
		c.logger.Error(amqpError)

		expontentialBackoff := backoff.NewExponentialBackOff()
		expontentialBackoff.MaxInterval = time.Second * 10
		expontentialBackoff.MaxElapsedTime = time.Minute

		c.reconFlag.Store(true)
		c.logger.Info("amqp: trying to reconnect...")
		err := backoff.Retry(c.connect, expontentialBackoff)
		if err != nil {
			c.logger.Errorf("amqp: giving up reconnecting: %v", err)
			return
		}
		c.reconFlag.Store(false)
		c.logger.Info("amqp: succesfully reconnected")
	}
}

func (c *defaultAMQPClient) Close() error {
	c.closed.Store(true)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn.Close()
}

func (c *defaultAMQPClient) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	// a short lived channel keeps the publish channel free of declaration errors
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	return ch.ExchangeDeclare(name, kind, durable, autoDelete, internal, noWait, args)
}

func (c *defaultAMQPClient) PublishWithContext(ctx context.Context, exchange string, key string, mandatory bool, immediate bool, msg amqp.Publishing) error {
	if c.reconFlag.Load() {
		expontentialBackoff := backoff.NewExponentialBackOff()
		expontentialBackoff.MaxInterval = time.Second * 10
		expontentialBackoff.MaxElapsedTime = time.Minute

		err := backoff.Retry(func() error {
			if c.reconFlag.Load() {
				return ErrReconnecting
			}
			return nil
		}, backoff.WithContext(expontentialBackoff, ctx))
		if err != nil {
			return err
		}
	}

	c.mu.RLock()
	publishChannel := c.publishChannel
	c.mu.RUnlock()

	return publishChannel.PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}
