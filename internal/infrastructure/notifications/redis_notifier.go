package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	redisclient "github.com/zatekoja/mediflow-admin/internal/infrastructure/clients/redis"
	"github.com/zatekoja/mediflow-admin/internal/infrastructure/observability"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes notifications as JSON on a Redis pub/sub channel,
// where any dashboard surface subscribed to it renders them as toasts.
type RedisNotifier struct {
	publisher publisher
	channel   string
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewRedisNotifier creates a notifier publishing on channel
func NewRedisNotifier(client *redisclient.Client, channel string, metrics *observability.Metrics) *RedisNotifier {
	return newRedisNotifier(client.Client(), channel, metrics)
}

func newRedisNotifier(p publisher, channel string, metrics *observability.Metrics) *RedisNotifier {
	return &RedisNotifier{
		publisher: p,
		channel:   channel,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Notify implements providers.Notifier
func (n *RedisNotifier) Notify(ctx context.Context, kind entities.NotificationKind, message string) {
	logger := observability.LoggerFromContext(ctx)

	data, err := json.Marshal(newNotification(kind, message, n.now()))
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode notification")
		return
	}

	pubCtx, cancel := deliveryContext(ctx)
	defer cancel()
	if err := n.publisher.Publish(pubCtx, n.channel, data).Err(); err != nil {
		logger.Warn().Err(err).Str("channel", n.channel).Msg("failed to publish notification")
		return
	}
	observability.RecordNotificationMetric(ctx, n.metrics, string(kind), "redis")
}
