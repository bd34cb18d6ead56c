package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vexoj/pkg/utils/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPConfig defines the fixed bindings for the judge request/result channels.
type AMQPConfig struct {
	URL          string `yaml:"url"`
	Exchange     string `yaml:"exchange"`
	ExchangeType string `yaml:"exchangeType"`
	PublishKey   string `yaml:"publishKey"`
	ConsumeQueue string `yaml:"consumeQueue"`
	ConsumeKey   string `yaml:"consumeKey"`
	ConsumerTag  string `yaml:"consumerTag"`
	MaxPriority  uint8  `yaml:"maxPriority"`
	Prefetch     int    `yaml:"prefetch"`
}

// SetDefaults fills zero-valued fields with sensible defaults.
func (c *AMQPConfig) SetDefaults() {
	if c.ExchangeType == "" {
		c.ExchangeType = "direct"
	}
	if c.MaxPriority == 0 {
		c.MaxPriority = 10
	}
	if c.Prefetch == 0 {
		c.Prefetch = 8
	}
}

// AMQPClient implements Producer and Consumer over one AMQP connection.
// Publishing and consuming use separate channels: a channel running a
// consume loop cannot serve the publish request/response cycle.
type AMQPClient struct {
	config AMQPConfig
	conn   *amqp.Connection

	mu         sync.Mutex
	pubCh      *amqp.Channel
	subscribed bool
	closed     bool
}

// NewAMQPClient dials the broker, opens the publish channel and declares
// the exchange.
func NewAMQPClient(cfg AMQPConfig) (*AMQPClient, error) {
	if cfg.URL == "" {
		return nil, errors.New("amqp url is required")
	}
	if cfg.Exchange == "" {
		return nil, errors.New("amqp exchange is required")
	}
	cfg.SetDefaults()

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp broker failed: %w", err)
	}
	pubCh, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open publish channel failed: %w", err)
	}
	if err := pubCh.ExchangeDeclare(cfg.Exchange, cfg.ExchangeType, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange failed: %w", err)
	}

	return &AMQPClient{config: cfg, conn: conn, pubCh: pubCh}, nil
}

// Publish emits a message on the configured exchange and routing key.
// Broker failures are returned to the caller, never swallowed.
func (c *AMQPClient) Publish(ctx context.Context, message *Message) error {
	if message == nil {
		return errors.New("message is nil")
	}
	if c.config.PublishKey == "" {
		return errors.New("publish routing key is not configured")
	}

	c.mu.Lock()
	ch := c.pubCh
	closed := c.closed
	c.mu.Unlock()
	if closed || ch == nil {
		return errors.New("amqp client is closed")
	}

	deliveryMode := amqp.Transient
	if message.Persistent {
		deliveryMode = amqp.Persistent
	}
	headers := amqp.Table{}
	for k, v := range message.Headers {
		headers[k] = v
	}
	ts := message.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	return ch.PublishWithContext(ctx, c.config.Exchange, c.config.PublishKey, false, false, amqp.Publishing{
		Headers:      headers,
		ContentType:  "application/json",
		DeliveryMode: deliveryMode,
		Priority:     message.Priority,
		MessageId:    message.ID,
		Timestamp:    ts,
		Type:         message.Type,
		Body:         message.Body,
	})
}

// Subscribe opens a dedicated consume channel, declares and binds the
// priority queue, and feeds deliveries to the handler. A handler error
// results in a negative acknowledgement; requeue policy stays with the
// broker. Subscribe may be called once per client.
func (c *AMQPClient) Subscribe(ctx context.Context, handler HandlerFunc) error {
	if handler == nil {
		return errors.New("handler is required")
	}
	if c.config.ConsumeQueue == "" {
		return errors.New("consume queue is not configured")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("amqp client is closed")
	}
	if c.subscribed {
		c.mu.Unlock()
		return errors.New("already subscribed")
	}
	c.subscribed = true
	c.mu.Unlock()

	subCh, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open consume channel failed: %w", err)
	}
	if _, err := subCh.QueueDeclare(c.config.ConsumeQueue, true, false, false, false, amqp.Table{
		"x-max-priority": int32(c.config.MaxPriority),
	}); err != nil {
		_ = subCh.Close()
		return fmt.Errorf("declare queue failed: %w", err)
	}
	if err := subCh.QueueBind(c.config.ConsumeQueue, c.config.ConsumeKey, c.config.Exchange, false, nil); err != nil {
		_ = subCh.Close()
		return fmt.Errorf("bind queue failed: %w", err)
	}
	if err := subCh.Qos(c.config.Prefetch, 0, false); err != nil {
		_ = subCh.Close()
		return fmt.Errorf("set qos failed: %w", err)
	}

	deliveries, err := subCh.Consume(c.config.ConsumeQueue, c.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		_ = subCh.Close()
		return fmt.Errorf("start consume failed: %w", err)
	}

	go c.consumeLoop(ctx, subCh, deliveries, handler)
	return nil
}

func (c *AMQPClient) consumeLoop(ctx context.Context, ch *amqp.Channel, deliveries <-chan amqp.Delivery, handler HandlerFunc) {
	defer func() {
		_ = ch.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Warn(ctx, "amqp delivery channel closed",
					zap.String("queue", c.config.ConsumeQueue))
				return
			}
			go c.handleDelivery(ctx, d, handler)
		}
	}
}

func (c *AMQPClient) handleDelivery(ctx context.Context, d amqp.Delivery, handler HandlerFunc) {
	headers := make(map[string]string, len(d.Headers))
	for k, v := range d.Headers {
		headers[k] = fmt.Sprint(v)
	}
	delivery := &Delivery{
		ID:      d.MessageId,
		Type:    d.Type,
		Body:    d.Body,
		Headers: headers,
	}

	if err := handler(ctx, delivery); err != nil {
		logger.Error(ctx, "message handler failed",
			zap.String("message_id", delivery.ID),
			zap.String("type", delivery.Type),
			zap.Error(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			logger.Error(ctx, "nack failed", zap.String("message_id", delivery.ID), zap.Error(nackErr))
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		logger.Error(ctx, "ack failed", zap.String("message_id", delivery.ID), zap.Error(ackErr))
	}
}

// Ping verifies the broker connection is alive.
func (c *AMQPClient) Ping(ctx context.Context) error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("amqp connection is closed")
	}
	return nil
}

// Close closes the publish channel and the connection.
func (c *AMQPClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	pubCh := c.pubCh
	c.pubCh = nil
	c.mu.Unlock()

	if pubCh != nil {
		_ = pubCh.Close()
	}
	return c.conn.Close()
}

var (
	_ Producer = (*AMQPClient)(nil)
	_ Consumer = (*AMQPClient)(nil)
)
