package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	"github.com/zatekoja/mediflow-admin/internal/infrastructure/observability"
)

// WebhookNotifier posts notifications as JSON to an HTTP endpoint
type WebhookNotifier struct {
	url        string
	token      string
	httpClient *http.Client
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewWebhookNotifier creates a webhook notifier. token is sent as a bearer token when set.
func NewWebhookNotifier(url, token string, metrics *observability.Metrics) (*WebhookNotifier, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook url must be set")
	}
	return &WebhookNotifier{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: deliveryTimeout,
		},
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// Notify implements providers.Notifier
func (w *WebhookNotifier) Notify(ctx context.Context, kind entities.NotificationKind, message string) {
	if err := w.send(ctx, newNotification(kind, message, w.now())); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to deliver notification")
		return
	}
	observability.RecordNotificationMetric(ctx, w.metrics, string(kind), "webhook")
}

func (w *WebhookNotifier) send(ctx context.Context, notification entities.Notification) error {
	jsonData, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	sendCtx, cancel := deliveryContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, w.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}
