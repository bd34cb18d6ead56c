package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

type notifyCall struct {
	contestID string
	title     string
	startTime time.Time
}

type fakeNotifier struct {
	calls []notifyCall
	err   error
}

func (f *fakeNotifier) NotifyContestStarting(ctx context.Context, contestID, title string, startTime time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, notifyCall{contestID: contestID, title: title, startTime: startTime})
	return nil
}

func reminderTask(t *testing.T, payload StartReminderPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return asynq.NewTask(TaskTypeStartReminder, data)
}

func TestStartReminderHandlerNotifies(t *testing.T) {
	t.Parallel()
	notifier := &fakeNotifier{}
	handler := StartReminderHandler(notifier)

	start := time.Date(2026, time.April, 5, 9, 0, 0, 0, time.UTC)
	task := reminderTask(t, StartReminderPayload{
		ContestID: "contest-1",
		Title:     "Spring Open",
		StartTime: start.Unix(),
	})
	if err := handler(context.Background(), task); err != nil {
		t.Fatalf("handler: %v", err)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("want one notification, got %d", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.contestID != "contest-1" || call.title != "Spring Open" {
		t.Errorf("notification: got %+v", call)
	}
	if !call.startTime.Equal(start) {
		t.Errorf("start time: got %v, want %v", call.startTime, start)
	}
}

func TestStartReminderHandlerBadPayload(t *testing.T) {
	t.Parallel()
	handler := StartReminderHandler(&fakeNotifier{})

	task := asynq.NewTask(TaskTypeStartReminder, []byte("{broken"))
	if err := handler(context.Background(), task); err == nil {
		t.Fatal("want error for undecodable payload")
	}
}

func TestStartReminderHandlerNotifierFailure(t *testing.T) {
	t.Parallel()
	notifier := &fakeNotifier{err: errors.New("channel down")}
	handler := StartReminderHandler(notifier)

	task := reminderTask(t, StartReminderPayload{ContestID: "contest-2", StartTime: time.Now().Unix()})
	if err := handler(context.Background(), task); err == nil {
		t.Fatal("notifier failure must surface so the task retries")
	}
}

func TestNewWorkerRequiresNotifier(t *testing.T) {
	t.Parallel()
	if _, err := NewWorker(asynq.RedisClientOpt{Addr: "localhost:6379"}, nil, 4); err == nil {
		t.Fatal("want error for nil notifier")
	}
}
