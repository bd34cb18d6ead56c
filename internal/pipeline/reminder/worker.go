package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vexoj/pkg/utils/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// StartReminderHandler returns the task handler delivering contest start
// notifications. A handler error makes asynq retry up to the job's bounded
// retry count.
func StartReminderHandler(notifier Notifier) func(ctx context.Context, task *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload StartReminderPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal reminder payload failed: %w", err)
		}

		startTime := time.Unix(payload.StartTime, 0)
		if err := notifier.NotifyContestStarting(ctx, payload.ContestID, payload.Title, startTime); err != nil {
			return fmt.Errorf("notify contest starting failed: %w", err)
		}

		logger.Info(ctx, "contest start reminder delivered",
			zap.String("contest_id", payload.ContestID),
			zap.Time("start_time", startTime))
		return nil
	}
}

// Worker consumes the reminder queue and delivers notifications.
type Worker struct {
	server   *asynq.Server
	notifier Notifier
}

// NewWorker creates a worker over the given redis connection.
func NewWorker(redisOpt asynq.RedisClientOpt, notifier Notifier, concurrency int) (*Worker, error) {
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{Queue: 1},
	})
	return &Worker{server: server, notifier: notifier}, nil
}

// Run blocks serving reminder tasks until Shutdown is called.
func (w *Worker) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeStartReminder, StartReminderHandler(w.notifier))
	return w.server.Run(mux)
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}
