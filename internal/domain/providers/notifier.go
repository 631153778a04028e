package providers

import (
	"context"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
)

// Notifier delivers user-visible toasts. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, kind entities.NotificationKind, message string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, kind entities.NotificationKind, message string)

// Notify implements Notifier
func (f NotifierFunc) Notify(ctx context.Context, kind entities.NotificationKind, message string) {
	f(ctx, kind, message)
}
