package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appErr "vexoj/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// Notifier delivers a contest start notification to its audience.
type Notifier interface {
	NotifyContestStarting(ctx context.Context, contestID, title string, startTime time.Time) error
}

// NotificationTopicFor returns the pub/sub channel the realtime gateway
// listens on for one contest's notifications.
func NotificationTopicFor(contestID string) string {
	return "notifications:contest:" + contestID
}

// RedisNotifier publishes contest notifications on a pub/sub channel.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a notifier over the given client.
func NewRedisNotifier(client *redis.Client) (*RedisNotifier, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisNotifier{client: client}, nil
}

type contestNotification struct {
	ContestID string `json:"contest_id"`
	Title     string `json:"title"`
	StartTime int64  `json:"start_time"`
}

// NotifyContestStarting publishes the start notification.
func (n *RedisNotifier) NotifyContestStarting(ctx context.Context, contestID, title string, startTime time.Time) error {
	payload, err := json.Marshal(contestNotification{
		ContestID: contestID,
		Title:     title,
		StartTime: startTime.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal contest notification failed: %w", err)
	}
	if err := n.client.Publish(ctx, NotificationTopicFor(contestID), payload).Err(); err != nil {
		return appErr.Wrapf(err, appErr.ServiceUnavailable, "publish contest notification failed")
	}
	return nil
}

var _ Notifier = (*RedisNotifier)(nil)
