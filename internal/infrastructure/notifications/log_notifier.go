package notifications

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	"github.com/zatekoja/mediflow-admin/internal/infrastructure/observability"
)

// LogNotifier writes notifications to a zerolog logger
type LogNotifier struct {
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewLogNotifier creates a notifier writing to logger
func NewLogNotifier(logger zerolog.Logger, metrics *observability.Metrics) *LogNotifier {
	return &LogNotifier{logger: logger, metrics: metrics}
}

// Notify implements providers.Notifier
func (n *LogNotifier) Notify(ctx context.Context, kind entities.NotificationKind, message string) {
	event := n.logger.Info()
	if kind == entities.NotificationError {
		event = n.logger.Warn()
	}
	event.Str("kind", string(kind)).Msg(message)
	observability.RecordNotificationMetric(ctx, n.metrics, string(kind), "log")
}
