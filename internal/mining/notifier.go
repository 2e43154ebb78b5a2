package mining

import (
	"context"

	"go.uber.org/zap"

	"github.com/bsn-social/mining/internal/cache"
	"github.com/bsn-social/mining/pkg/logging"
)

// UnlockNotification is the one-time message surfaced when an achievement
// completes.
type UnlockNotification struct {
	AchievementID string  `json:"achievement_id"`
	Title         string  `json:"title"`
	TokenReward   float64 `json:"token_reward"`
	PointsReward  int64   `json:"points_reward"`
}

// Notifier delivers transient user-facing messages. Delivery is fire and
// forget: a failed notification is never a data-consistency concern.
type Notifier interface {
	NotifyUnlock(ctx context.Context, account string, n UnlockNotification)
	NotifyStatus(ctx context.Context, account, status, reason string)
}

// NopNotifier discards all notifications
type NopNotifier struct{}

// NotifyUnlock implements Notifier
func (NopNotifier) NotifyUnlock(context.Context, string, UnlockNotification) {}

// NotifyStatus implements Notifier
func (NopNotifier) NotifyStatus(context.Context, string, string, string) {}

// RedisNotifier publishes notifications on the account's Redis pub/sub
// channel for connected clients to display.
type RedisNotifier struct {
	cache  *cache.Cache
	logger *zap.Logger
}

// NewRedisNotifier creates a notifier backed by the Redis cache. A nil cache
// yields a notifier that only logs.
func NewRedisNotifier(c *cache.Cache) *RedisNotifier {
	return &RedisNotifier{
		cache:  c,
		logger: logging.WithComponent("notifier"),
	}
}

type notifyMessage struct {
	Kind    string      `json:"kind"`
	Account string      `json:"account"`
	Payload interface{} `json:"payload"`
}

// NotifyUnlock implements Notifier
func (r *RedisNotifier) NotifyUnlock(ctx context.Context, account string, n UnlockNotification) {
	r.publish(ctx, account, notifyMessage{Kind: "achievement_unlocked", Account: account, Payload: n})
}

// NotifyStatus implements Notifier
func (r *RedisNotifier) NotifyStatus(ctx context.Context, account, status, reason string) {
	r.publish(ctx, account, notifyMessage{
		Kind:    "mining_status",
		Account: account,
		Payload: map[string]string{"status": status, "reason": reason},
	})
}

func (r *RedisNotifier) publish(ctx context.Context, account string, msg notifyMessage) {
	err := r.cache.Publish(ctx, cache.NotifyChannel(account), msg)
	if err != nil && err != cache.ErrCacheDisabled {
		r.logger.Warn("Failed to publish notification",
			zap.String("account", account),
			zap.String("kind", msg.Kind),
			zap.Error(err))
	}
}
