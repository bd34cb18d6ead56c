package broadcast

import (
	"context"
	"fmt"

	"vexoj/internal/pipeline/model"
	appErr "vexoj/pkg/errors"
	"vexoj/pkg/utils/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TopicFor returns the broadcast topic for one submission's live results.
func TopicFor(submissionID string) string {
	return "submission:" + submissionID
}

// Publisher streams testcase results onto per-submission topics. Its client
// must not be shared with a Subscriber: subscription blocks a connection's
// request/response cycle.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a publisher over the given client.
func NewPublisher(client *redis.Client) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Publisher{client: client}, nil
}

// Publish emits one result on the submission's topic. Delivery is
// best-effort and at-most-once; subscribers that joined later never see it.
func (p *Publisher) Publish(ctx context.Context, result model.TestcaseResult) error {
	if result.SubmissionID == "" {
		return appErr.ValidationError("submission_id", "required")
	}
	payload, err := EncodeTestcaseResult(result)
	if err != nil {
		return appErr.Wrapf(err, appErr.BroadcastPublishFailed, "encode testcase result failed")
	}
	if err := p.client.Publish(ctx, TopicFor(result.SubmissionID), payload).Err(); err != nil {
		return appErr.Wrapf(err, appErr.BroadcastPublishFailed, "publish testcase result failed")
	}
	return nil
}

// Subscriber opens dedicated pub/sub connections for live result consumers.
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber creates a subscriber over the given client.
func NewSubscriber(client *redis.Client) (*Subscriber, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Subscriber{client: client}, nil
}

// Subscription is the handle a caller uses to tear its subscription down.
// There is no automatic timeout; a forgotten handle leaks a connection.
type Subscription struct {
	pubsub *redis.PubSub
	done   chan struct{}
}

// Close tears down the subscription and its connection.
func (s *Subscription) Close() error {
	err := s.pubsub.Close()
	<-s.done
	return err
}

// Subscribe registers a callback for every result published on the
// submission's topic after this call returns. Multiple independent
// subscribers on one topic each receive every subsequent result. The
// callback runs on the subscription's own goroutine.
func (s *Subscriber) Subscribe(ctx context.Context, submissionID string, callback func(model.TestcaseResult)) (*Subscription, error) {
	if submissionID == "" {
		return nil, appErr.ValidationError("submission_id", "required")
	}
	if callback == nil {
		return nil, appErr.ValidationError("callback", "required")
	}

	pubsub := s.client.Subscribe(ctx, TopicFor(submissionID))
	// Wait for the subscribe confirmation so results published after this
	// call returns are guaranteed to be delivered.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, appErr.Wrapf(err, appErr.SubscribeFailed, "subscribe to submission topic failed")
	}

	sub := &Subscription{pubsub: pubsub, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		for msg := range pubsub.Channel() {
			result, err := DecodeTestcaseResult([]byte(msg.Payload))
			if err != nil {
				logger.Warn(ctx, "drop undecodable broadcast payload",
					zap.String("topic", msg.Channel),
					zap.Error(err))
				continue
			}
			callback(result)
		}
	}()
	return sub, nil
}
