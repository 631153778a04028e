package notifications

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	"github.com/zatekoja/mediflow-admin/internal/domain/providers"
)

const defaultQueueSize = 64

type queuedNotification struct {
	ctx     context.Context
	kind    entities.NotificationKind
	message string
}

// AsyncNotifier hands notifications to a background goroutine so a slow delivery never
// holds up the caller. When the queue is full the notification is dropped and logged.
type AsyncNotifier struct {
	next  providers.Notifier
	queue chan queuedNotification
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncNotifier starts delivering to next. queueSize <= 0 uses a default of 64.
func NewAsyncNotifier(next providers.Notifier, queueSize int) *AsyncNotifier {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	n := &AsyncNotifier{
		next:  next,
		queue: make(chan queuedNotification, queueSize),
		done:  make(chan struct{}),
	}
	go n.run()
	return n
}

// Notify implements providers.Notifier
func (n *AsyncNotifier) Notify(ctx context.Context, kind entities.NotificationKind, message string) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}

	select {
	case n.queue <- queuedNotification{ctx: context.WithoutCancel(ctx), kind: kind, message: message}:
	default:
		log.Warn().Str("kind", string(kind)).Msg("notification queue full, dropping notification")
	}
}

// Close stops accepting notifications and waits until the queued ones are delivered
// or ctx is done.
func (n *AsyncNotifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *AsyncNotifier) run() {
	defer close(n.done)
	for item := range n.queue {
		n.next.Notify(item.ctx, item.kind, item.message)
	}
}
