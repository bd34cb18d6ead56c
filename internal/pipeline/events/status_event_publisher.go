package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vexoj/internal/common/mq"
	"vexoj/internal/pipeline/model"
	appErr "vexoj/pkg/errors"
)

// StatusEventType tags entries on the status event feed.
type StatusEventType string

// StatusEventFinal marks the terminal event for a submission.
const StatusEventFinal StatusEventType = "final"

// StatusEvent is one entry on the feed, consumed by downstream persistence
// and statistics services.
type StatusEvent struct {
	Type      StatusEventType        `json:"type"`
	Status    model.SubmissionStatus `json:"status"`
	CreatedAt int64                  `json:"created_at"`
}

// StatusEventPublisher publishes terminal judge statuses for async consumers.
type StatusEventPublisher interface {
	PublishFinalStatus(ctx context.Context, status model.SubmissionStatus) error
}

// TopicPublisher is the producer side the Kafka implementation needs.
type TopicPublisher interface {
	Publish(ctx context.Context, topic string, message *mq.Message) error
}

// KafkaStatusEventPublisher publishes status events to a Kafka topic.
type KafkaStatusEventPublisher struct {
	producer TopicPublisher
	topic    string
}

// NewKafkaStatusEventPublisher creates a new Kafka status event publisher.
func NewKafkaStatusEventPublisher(producer TopicPublisher, topic string) *KafkaStatusEventPublisher {
	return &KafkaStatusEventPublisher{producer: producer, topic: topic}
}

// PublishFinalStatus publishes a final status event.
func (p *KafkaStatusEventPublisher) PublishFinalStatus(ctx context.Context, status model.SubmissionStatus) error {
	if p == nil || p.producer == nil {
		return appErr.New(appErr.ServiceUnavailable).WithMessage("status publisher is not configured")
	}
	if p.topic == "" {
		return appErr.New(appErr.InvalidParams).WithMessage("status topic is required")
	}
	if status.SubmissionID == "" {
		return appErr.ValidationError("submission_id", "required")
	}

	event := StatusEvent{
		Type:      StatusEventFinal,
		Status:    status,
		CreatedAt: time.Now().Unix(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status event failed: %w", err)
	}
	message := mq.NewMessage(payload)
	message.ID = status.SubmissionID
	message.Type = string(StatusEventFinal)
	if err := p.producer.Publish(ctx, p.topic, message); err != nil {
		return appErr.Wrapf(err, appErr.ServiceUnavailable, "publish status event failed")
	}
	return nil
}

var _ StatusEventPublisher = (*KafkaStatusEventPublisher)(nil)
