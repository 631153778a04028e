package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	"github.com/zatekoja/mediflow-admin/internal/domain/providers"
)

// deliveryTimeout bounds a single delivery; notifications outlive the caller's context.
const deliveryTimeout = 3 * time.Second

func newNotification(kind entities.NotificationKind, message string, now time.Time) entities.Notification {
	return entities.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now.UTC(),
	}
}

func deliveryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
}

type multiNotifier []providers.Notifier

// Multi fans a notification out to every non-nil notifier in order
func Multi(notifiers ...providers.Notifier) providers.Notifier {
	out := make(multiNotifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multiNotifier) Notify(ctx context.Context, kind entities.NotificationKind, message string) {
	for _, n := range m {
		n.Notify(ctx, kind, message)
	}
}
