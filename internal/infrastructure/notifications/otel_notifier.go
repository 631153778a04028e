package notifications

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	"github.com/zatekoja/mediflow-admin/internal/infrastructure/observability"
)

const otelLoggerName = "github.com/zatekoja/mediflow-admin/notifications"

type emitter interface {
	Emit(ctx context.Context, record otellog.Record)
}

// OTelNotifier exports notifications as OpenTelemetry log records
type OTelNotifier struct {
	logger  emitter
	metrics *observability.Metrics
	now     func() time.Time
}

// NewOTelNotifier creates a notifier on the global logger provider
func NewOTelNotifier(metrics *observability.Metrics) *OTelNotifier {
	return newOTelNotifier(global.GetLoggerProvider().Logger(otelLoggerName), metrics)
}

func newOTelNotifier(logger emitter, metrics *observability.Metrics) *OTelNotifier {
	return &OTelNotifier{logger: logger, metrics: metrics, now: time.Now}
}

// Notify implements providers.Notifier
func (n *OTelNotifier) Notify(ctx context.Context, kind entities.NotificationKind, message string) {
	notification := newNotification(kind, message, n.now())

	var record otellog.Record
	record.SetTimestamp(notification.CreatedAt)
	record.SetBody(otellog.StringValue(notification.Message))
	if kind == entities.NotificationError {
		record.SetSeverity(otellog.SeverityWarn)
		record.SetSeverityText("WARN")
	} else {
		record.SetSeverity(otellog.SeverityInfo)
		record.SetSeverityText("INFO")
	}
	record.AddAttributes(
		otellog.String("notification.id", notification.ID),
		otellog.String("notification.kind", string(kind)),
	)

	n.logger.Emit(ctx, record)
	observability.RecordNotificationMetric(ctx, n.metrics, string(kind), "otel")
}
