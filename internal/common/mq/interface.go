package mq

import (
	"context"
	"time"
)

// Message is one outbound unit for the judge request channel. Type and
// Priority are computed by the dispatcher, never set by callers directly.
type Message struct {
	// ID is the unique identifier for the message. For judge requests this
	// is the submission id, which brokers use for deduplication.
	ID string `json:"id"`

	// Type tags the message for routing on the consumer side.
	Type string `json:"type"`

	// Body is the message payload.
	Body []byte `json:"body"`

	// Headers contains metadata about the message.
	Headers map[string]string `json:"headers"`

	// Priority orders delivery within the queue, higher serviced first.
	Priority uint8 `json:"priority"`

	// Persistent messages survive a broker restart.
	Persistent bool `json:"persistent"`

	// Timestamp is when the message was created.
	Timestamp time.Time `json:"timestamp"`
}

// Delivery is one inbound unit handed to a HandlerFunc.
type Delivery struct {
	ID      string
	Type    string
	Body    []byte
	Headers map[string]string
}

// HandlerFunc is the function signature for message handlers.
// A nil return acknowledges the delivery; an error return signals a
// negative acknowledgement to the broker.
type HandlerFunc func(ctx context.Context, delivery *Delivery) error

// Producer defines the interface for publishing messages on the fixed
// outbound binding.
type Producer interface {
	Publish(ctx context.Context, message *Message) error
}

// Consumer defines the interface for the single long-lived inbound
// subscription. Subscribe transitions the consumer from idle to subscribed
// exactly once; there is no resubscribe.
type Consumer interface {
	Subscribe(ctx context.Context, handler HandlerFunc) error
}

// NewMessage creates a new message with the given body.
func NewMessage(body []byte) *Message {
	return &Message{
		Body:      body,
		Headers:   make(map[string]string),
		Timestamp: time.Now(),
	}
}
