package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	appErr "vexoj/pkg/errors"
	"vexoj/pkg/utils/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	// TaskTypeStartReminder names the delayed task handled by the worker.
	TaskTypeStartReminder = "contest:start-reminder"

	// Queue is the asynq queue reminders are enqueued on.
	Queue = "reminders"

	// startLead is how long before contest start the reminder fires.
	startLead = time.Hour

	maxRetry = 3
)

// JobKeyFor derives the deterministic job key for a contest. The key is a
// pure function of the contest id, which is what guarantees at most one
// live job per contest: a second schedule collides instead of duplicating.
func JobKeyFor(contestID string) string {
	return "contest:" + contestID + ":start-reminder"
}

// StartReminderPayload is the task payload.
type StartReminderPayload struct {
	ContestID string `json:"contest_id"`
	Title     string `json:"title"`
	StartTime int64  `json:"start_time"`
}

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type taskRemover interface {
	DeleteTask(queue, id string) error
}

// Scheduler manages the single delayed start-reminder job per contest.
// It relies on the job store's key uniqueness for race safety; there is no
// additional locking.
type Scheduler struct {
	client    taskEnqueuer
	inspector taskRemover
	closer    func() error
	now       func() time.Time
}

// NewScheduler creates a scheduler backed by the given redis connection.
func NewScheduler(redisOpt asynq.RedisClientOpt) *Scheduler {
	client := asynq.NewClient(redisOpt)
	return &Scheduler{
		client:    client,
		inspector: asynq.NewInspector(redisOpt),
		closer:    client.Close,
		now:       time.Now,
	}
}

func newSchedulerWith(client taskEnqueuer, inspector taskRemover, now func() time.Time) *Scheduler {
	return &Scheduler{client: client, inspector: inspector, now: now}
}

// ScheduleStartReminder enqueues a reminder firing one hour before start.
// A fire time already in the past is a deliberate no-op, and a key collision
// means the job already exists, which is success. Store failures surface to
// the contest-mutation caller.
func (s *Scheduler) ScheduleStartReminder(ctx context.Context, contestID, title string, startTime time.Time) error {
	if contestID == "" {
		return appErr.ValidationError("contest_id", "required")
	}

	fireAt := startTime.Add(-startLead)
	if !fireAt.After(s.now()) {
		logger.Info(ctx, "reminder fire time already past, skipping",
			zap.String("contest_id", contestID),
			zap.Time("start_time", startTime))
		return nil
	}

	payload, err := json.Marshal(StartReminderPayload{
		ContestID: contestID,
		Title:     title,
		StartTime: startTime.Unix(),
	})
	if err != nil {
		return appErr.Wrapf(err, appErr.SchedulingFailed, "marshal reminder payload failed")
	}

	task := asynq.NewTask(TaskTypeStartReminder, payload)
	_, err = s.client.EnqueueContext(ctx, task,
		asynq.Queue(Queue),
		asynq.TaskID(JobKeyFor(contestID)),
		asynq.ProcessAt(fireAt),
		asynq.MaxRetry(maxRetry),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			logger.Info(ctx, "reminder already scheduled",
				zap.String("contest_id", contestID))
			return nil
		}
		return appErr.Wrapf(err, appErr.SchedulingFailed, "enqueue reminder failed")
	}

	logger.Info(ctx, "contest start reminder scheduled",
		zap.String("contest_id", contestID),
		zap.Time("fire_at", fireAt))
	return nil
}

// CancelStartReminder removes the contest's job by its deterministic key.
// Absence is not an error. Cancellation is only meaningful pre-fire.
func (s *Scheduler) CancelStartReminder(ctx context.Context, contestID string) error {
	if contestID == "" {
		return appErr.ValidationError("contest_id", "required")
	}

	err := s.inspector.DeleteTask(Queue, JobKeyFor(contestID))
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return nil
		}
		return appErr.Wrapf(err, appErr.CancelFailed, "delete reminder failed")
	}

	logger.Info(ctx, "contest start reminder cancelled",
		zap.String("contest_id", contestID))
	return nil
}

// RescheduleStartReminder replaces the job wholesale: cancel then schedule,
// never an in-place mutation, so fire time and retry state are always
// derived from the new start time.
func (s *Scheduler) RescheduleStartReminder(ctx context.Context, contestID, title string, startTime time.Time) error {
	if err := s.CancelStartReminder(ctx, contestID); err != nil {
		return err
	}
	return s.ScheduleStartReminder(ctx, contestID, title, startTime)
}

// Close closes the underlying client connection.
func (s *Scheduler) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
