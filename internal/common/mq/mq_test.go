package mq

import (
	"testing"
	"time"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg := NewMessage([]byte("payload"))
	if string(msg.Body) != "payload" {
		t.Errorf("body: got %q", msg.Body)
	}
	if msg.Headers == nil {
		t.Error("headers map must be initialized")
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp must be set")
	}
	if msg.Persistent {
		t.Error("messages are transient unless marked persistent")
	}
}

func TestAMQPConfigSetDefaults(t *testing.T) {
	t.Parallel()

	cfg := AMQPConfig{URL: "amqp://localhost", Exchange: "x"}
	cfg.SetDefaults()
	if cfg.ExchangeType != "direct" {
		t.Errorf("exchange type: got %q", cfg.ExchangeType)
	}
	if cfg.MaxPriority != 10 {
		t.Errorf("max priority: got %d", cfg.MaxPriority)
	}
	if cfg.Prefetch != 8 {
		t.Errorf("prefetch: got %d", cfg.Prefetch)
	}

	custom := AMQPConfig{ExchangeType: "topic", MaxPriority: 5, Prefetch: 1}
	custom.SetDefaults()
	if custom.ExchangeType != "topic" || custom.MaxPriority != 5 || custom.Prefetch != 1 {
		t.Errorf("explicit values must survive defaulting: %+v", custom)
	}
}

func TestNewAMQPClientValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewAMQPClient(AMQPConfig{Exchange: "x"}); err == nil {
		t.Fatal("want error for missing url")
	}
	if _, err := NewAMQPClient(AMQPConfig{URL: "amqp://localhost"}); err == nil {
		t.Fatal("want error for missing exchange")
	}
}

func TestNewKafkaProducerValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewKafkaProducer(KafkaConfig{}); err == nil {
		t.Fatal("want error for missing brokers")
	}
}

func TestKafkaProducerDefaults(t *testing.T) {
	t.Parallel()

	p, err := NewKafkaProducer(KafkaConfig{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("NewKafkaProducer: %v", err)
	}
	defer p.Close()

	if p.writer.BatchTimeout != 50*time.Millisecond {
		t.Errorf("batch timeout: got %v", p.writer.BatchTimeout)
	}
	if p.writer.WriteTimeout != 10*time.Second {
		t.Errorf("write timeout: got %v", p.writer.WriteTimeout)
	}
}
