package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"vexoj/internal/common/mq"
	"vexoj/internal/pipeline/model"
	appErr "vexoj/pkg/errors"
)

type fakeProducer struct {
	published []*mq.Message
	err       error
}

func (f *fakeProducer) Publish(ctx context.Context, message *mq.Message) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, message)
	return nil
}

func TestNewDispatcherRequiresProducer(t *testing.T) {
	t.Parallel()
	if _, err := NewDispatcher(nil); err == nil {
		t.Fatal("want error for nil producer")
	}
}

func TestDispatchEnvelope(t *testing.T) {
	t.Parallel()
	producer := &fakeProducer{}
	d, err := NewDispatcher(producer)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	request := model.JudgeRequest{
		SubmissionID: "sub-1",
		ProblemID:    9001,
		LanguageID:   "cpp",
	}
	err = d.Dispatch(context.Background(), Input{
		SubmissionID: "sub-1",
		Request:      request,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(producer.published) != 1 {
		t.Fatalf("want exactly one message, got %d", len(producer.published))
	}
	msg := producer.published[0]
	if msg.ID != "sub-1" {
		t.Errorf("message id: got %q, want submission id", msg.ID)
	}
	if !msg.Persistent {
		t.Error("message must be persistent")
	}
	if msg.Type != string(model.MessageTypeJudge) {
		t.Errorf("type: got %q, want %q", msg.Type, model.MessageTypeJudge)
	}
	if msg.Priority != uint8(model.PriorityHigh) {
		t.Errorf("priority: got %d, want %d", msg.Priority, model.PriorityHigh)
	}

	var decoded model.JudgeRequest
	if err := json.Unmarshal(msg.Body, &decoded); err != nil {
		t.Fatalf("body is not a judge request: %v", err)
	}
	if decoded != request {
		t.Errorf("body round-trip: got %+v, want %+v", decoded, request)
	}
}

func TestDispatchRejudgePriority(t *testing.T) {
	t.Parallel()
	producer := &fakeProducer{}
	d, _ := NewDispatcher(producer)

	err := d.Dispatch(context.Background(), Input{
		SubmissionID: "sub-2",
		IsRejudge:    true,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	msg := producer.published[0]
	if msg.Type != string(model.MessageTypeJudge) {
		t.Errorf("rejudge keeps judge type, got %q", msg.Type)
	}
	if msg.Priority != uint8(model.PriorityLow) {
		t.Errorf("rejudge priority: got %d, want %d", msg.Priority, model.PriorityLow)
	}
}

func TestDispatchRequiresSubmissionID(t *testing.T) {
	t.Parallel()
	producer := &fakeProducer{}
	d, _ := NewDispatcher(producer)

	err := d.Dispatch(context.Background(), Input{})
	if !appErr.Is(err, appErr.ValidationFailed) {
		t.Fatalf("want validation error, got %v", err)
	}
	if len(producer.published) != 0 {
		t.Fatal("nothing may be published on validation failure")
	}
}

func TestDispatchBrokerFailurePropagates(t *testing.T) {
	t.Parallel()
	producer := &fakeProducer{err: errors.New("broker down")}
	d, _ := NewDispatcher(producer)

	err := d.Dispatch(context.Background(), Input{SubmissionID: "sub-3"})
	if !appErr.Is(err, appErr.DispatchFailed) {
		t.Fatalf("want DispatchFailed, got %v", err)
	}
}
