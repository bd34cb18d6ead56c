package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vexoj/internal/common/mq"
	"vexoj/internal/pipeline/model"
	appErr "vexoj/pkg/errors"
	"vexoj/pkg/utils/logger"

	"go.uber.org/zap"
)

// Dispatcher wraps judge requests in envelopes and emits them on the
// outbound channel. It performs no deduplication; callers must not
// re-dispatch a submission unless a rejudge is intended.
type Dispatcher struct {
	producer mq.Producer
}

// Input describes one dispatch call.
type Input struct {
	SubmissionID string
	Request      model.JudgeRequest
	IsTest       bool
	IsUserTest   bool
	IsRejudge    bool
}

// NewDispatcher creates a dispatcher over the given producer.
func NewDispatcher(producer mq.Producer) (*Dispatcher, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer is required")
	}
	return &Dispatcher{producer: producer}, nil
}

// Dispatch publishes exactly one envelope for the submission. The message id
// is the submission id and the message is persistent, so the request
// survives a broker restart. Broker failures propagate to the caller; the
// submission must not be recorded as judging when this returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, input Input) error {
	if input.SubmissionID == "" {
		return appErr.ValidationError("submission_id", "required")
	}

	payload, err := json.Marshal(input.Request)
	if err != nil {
		return appErr.Wrapf(err, appErr.InvalidParams, "marshal judge request failed")
	}

	cls := Classify(input.IsTest, input.IsUserTest, input.IsRejudge)
	message := mq.NewMessage(payload)
	message.ID = input.SubmissionID
	message.Type = string(cls.Type)
	message.Priority = uint8(cls.Priority)
	message.Persistent = true
	message.Timestamp = time.Now()

	if err := d.producer.Publish(ctx, message); err != nil {
		return appErr.Wrapf(err, appErr.DispatchFailed, "publish judge request failed")
	}

	logger.Info(ctx, "judge request dispatched",
		zap.String("submission_id", input.SubmissionID),
		zap.String("type", string(cls.Type)),
		zap.Uint8("priority", uint8(cls.Priority)),
		zap.Bool("rejudge", input.IsRejudge))
	return nil
}
