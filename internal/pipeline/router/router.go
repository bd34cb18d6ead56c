package router

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"vexoj/internal/common/mq"
	"vexoj/internal/pipeline/model"
	appErr "vexoj/pkg/errors"
	"vexoj/pkg/utils/logger"

	"go.uber.org/zap"
)

// JudgeHandler consumes a decoded judge result.
type JudgeHandler func(ctx context.Context, result model.ResultMessage) error

// TestRunHandler consumes a decoded test-run result. userTest distinguishes
// user-supplied testcases from sample test runs.
type TestRunHandler func(ctx context.Context, result model.ResultMessage, userTest bool) error

// Router is the single long-lived listener on the inbound channel. It owns
// the handler registry; there is no process-wide handler state. Handlers may
// be registered before or after Run, and may be invoked concurrently with
// other messages, so they must synchronize any shared state themselves.
type Router struct {
	consumer mq.Consumer

	mu             sync.RWMutex
	judgeHandler   JudgeHandler
	testRunHandler TestRunHandler
	running        bool
}

// NewRouter creates a router over the given consumer.
func NewRouter(consumer mq.Consumer) (*Router, error) {
	if consumer == nil {
		return nil, fmt.Errorf("consumer is required")
	}
	return &Router{consumer: consumer}, nil
}

// OnJudgeResult registers the handler for Judge-type results.
func (r *Router) OnJudgeResult(handler JudgeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.judgeHandler = handler
}

// OnTestRunResult registers the handler for Run and UserTestcase results.
func (r *Router) OnTestRunResult(handler TestRunHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.testRunHandler = handler
}

// Run starts the subscription. The transition happens once; the router is
// not designed to be restarted.
func (r *Router) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("router is already running")
	}
	r.running = true
	r.mu.Unlock()

	if err := r.consumer.Subscribe(ctx, r.handle); err != nil {
		return appErr.Wrapf(err, appErr.BrokerUnavailable, "subscribe to result queue failed")
	}
	logger.Info(ctx, "result router subscribed")
	return nil
}

// handle decodes one delivery and routes it by declared type. A message
// arriving before its handler is registered is acknowledged as a no-op,
// since registration order across subsystems is not guaranteed. Handler and
// decode failures return an error, which the consumer turns into a negative
// acknowledgement; the subscription itself always survives.
func (r *Router) handle(ctx context.Context, delivery *mq.Delivery) error {
	var result model.ResultMessage
	if err := json.Unmarshal(delivery.Body, &result); err != nil {
		logger.Error(ctx, "decode result message failed",
			zap.String("message_id", delivery.ID),
			zap.String("type", delivery.Type),
			zap.Error(err))
		return appErr.Wrapf(err, appErr.MessageDecodeFailed, "decode result message failed")
	}

	switch model.MessageType(delivery.Type) {
	case model.MessageTypeRun, model.MessageTypeUserTestcase:
		handler := r.currentTestRunHandler()
		if handler == nil {
			logger.Debug(ctx, "no test-run handler registered, dropping result",
				zap.String("message_id", delivery.ID))
			return nil
		}
		userTest := model.MessageType(delivery.Type) == model.MessageTypeUserTestcase
		if err := handler(ctx, result, userTest); err != nil {
			return appErr.Wrapf(err, appErr.HandlerFailed, "test-run handler failed")
		}
	default:
		handler := r.currentJudgeHandler()
		if handler == nil {
			logger.Debug(ctx, "no judge handler registered, dropping result",
				zap.String("message_id", delivery.ID))
			return nil
		}
		if err := handler(ctx, result); err != nil {
			return appErr.Wrapf(err, appErr.HandlerFailed, "judge handler failed")
		}
	}
	return nil
}

func (r *Router) currentJudgeHandler() JudgeHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.judgeHandler
}

func (r *Router) currentTestRunHandler() TestRunHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.testRunHandler
}
