package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"vexoj/internal/common/mq"
	"vexoj/internal/pipeline/model"
	appErr "vexoj/pkg/errors"
)

type publishCall struct {
	topic   string
	message *mq.Message
}

type fakeTopicPublisher struct {
	calls []publishCall
	err   error
}

func (f *fakeTopicPublisher) Publish(ctx context.Context, topic string, message *mq.Message) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, publishCall{topic: topic, message: message})
	return nil
}

func TestPublishFinalStatus(t *testing.T) {
	t.Parallel()
	producer := &fakeTopicPublisher{}
	p := NewKafkaStatusEventPublisher(producer, "judge.status.final")

	status := model.SubmissionStatus{
		SubmissionID: "sub-1",
		Verdict:      model.StatusAccepted,
		FinishedAt:   1750000000,
	}
	if err := p.PublishFinalStatus(context.Background(), status); err != nil {
		t.Fatalf("PublishFinalStatus: %v", err)
	}

	if len(producer.calls) != 1 {
		t.Fatalf("want one publish, got %d", len(producer.calls))
	}
	call := producer.calls[0]
	if call.topic != "judge.status.final" {
		t.Errorf("topic: got %q", call.topic)
	}
	if call.message.ID != "sub-1" {
		t.Errorf("message id: got %q, want submission id", call.message.ID)
	}
	if call.message.Type != string(StatusEventFinal) {
		t.Errorf("message type: got %q", call.message.Type)
	}

	var event StatusEvent
	if err := json.Unmarshal(call.message.Body, &event); err != nil {
		t.Fatalf("event payload: %v", err)
	}
	if event.Type != StatusEventFinal {
		t.Errorf("event type: got %q", event.Type)
	}
	if event.Status != status {
		t.Errorf("event status: got %+v, want %+v", event.Status, status)
	}
	if event.CreatedAt == 0 {
		t.Error("event must carry a creation timestamp")
	}
}

func TestPublishFinalStatusValidations(t *testing.T) {
	t.Parallel()

	t.Run("missing producer", func(t *testing.T) {
		t.Parallel()
		p := NewKafkaStatusEventPublisher(nil, "topic")
		if err := p.PublishFinalStatus(context.Background(), model.SubmissionStatus{SubmissionID: "s"}); err == nil {
			t.Fatal("want error for missing producer")
		}
	})
	t.Run("missing topic", func(t *testing.T) {
		t.Parallel()
		p := NewKafkaStatusEventPublisher(&fakeTopicPublisher{}, "")
		if err := p.PublishFinalStatus(context.Background(), model.SubmissionStatus{SubmissionID: "s"}); err == nil {
			t.Fatal("want error for missing topic")
		}
	})
	t.Run("missing submission id", func(t *testing.T) {
		t.Parallel()
		p := NewKafkaStatusEventPublisher(&fakeTopicPublisher{}, "topic")
		err := p.PublishFinalStatus(context.Background(), model.SubmissionStatus{})
		if !appErr.Is(err, appErr.ValidationFailed) {
			t.Fatalf("want validation error, got %v", err)
		}
	})
}

func TestPublishFinalStatusProducerFailure(t *testing.T) {
	t.Parallel()
	producer := &fakeTopicPublisher{err: errors.New("kafka down")}
	p := NewKafkaStatusEventPublisher(producer, "judge.status.final")

	err := p.PublishFinalStatus(context.Background(), model.SubmissionStatus{SubmissionID: "sub-2"})
	if !appErr.Is(err, appErr.ServiceUnavailable) {
		t.Fatalf("want ServiceUnavailable, got %v", err)
	}
}
