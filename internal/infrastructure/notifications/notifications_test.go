package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	"github.com/zatekoja/mediflow-admin/internal/domain/providers"
)

type fakePublisher struct {
	channel string
	payload []byte
	err     error
	ctxErr  error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	f.ctxErr = ctx.Err()
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf), nil)

	n.Notify(context.Background(), entities.NotificationError, "Failed to add doctor")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "error", entry["kind"])
	assert.Equal(t, "Failed to add doctor", entry["message"])
}

func TestRedisNotifier_Publishes(t *testing.T) {
	pub := &fakePublisher{}
	n := newRedisNotifier(pub, "mediflow:notifications", nil)
	n.now = func() time.Time { return time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.Notify(ctx, entities.NotificationSuccess, "Appointment scheduled successfully!")

	assert.Equal(t, "mediflow:notifications", pub.channel)
	assert.NoError(t, pub.ctxErr, "delivery must not inherit the caller's cancellation")

	var got entities.Notification
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, entities.NotificationSuccess, got.Kind)
	assert.Equal(t, "Appointment scheduled successfully!", got.Message)
	assert.True(t, got.CreatedAt.Equal(time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC)))
}

func TestRedisNotifier_PublishFailureIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	n := newRedisNotifier(pub, "toasts", nil)

	assert.NotPanics(t, func() {
		n.Notify(context.Background(), entities.NotificationError, "boom")
	})
	assert.Equal(t, "toasts", pub.channel)
}

func TestWebhookNotifier(t *testing.T) {
	var (
		mu   sync.Mutex
		got  entities.Notification
		auth string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(server.URL, "hook-token", nil)
	require.NoError(t, err)

	n.Notify(context.Background(), entities.NotificationSuccess, "Doctor removed successfully")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Bearer hook-token", auth)
	assert.Equal(t, "Doctor removed successfully", got.Message)
}

func TestWebhookNotifier_RequiresURL(t *testing.T) {
	_, err := NewWebhookNotifier("", "", nil)
	assert.Error(t, err)
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(server.URL, "", nil)
	require.NoError(t, err)

	err = n.send(context.Background(), newNotification(entities.NotificationError, "x", time.Now()))
	assert.ErrorContains(t, err, "status 502")
}

func TestMulti(t *testing.T) {
	var got []string
	record := func(prefix string) providers.Notifier {
		return providers.NotifierFunc(func(ctx context.Context, kind entities.NotificationKind, message string) {
			got = append(got, prefix+":"+string(kind)+":"+message)
		})
	}

	Multi(record("a"), nil, record("b")).Notify(context.Background(), entities.NotificationSuccess, "ok")

	assert.Equal(t, []string{"a:success:ok", "b:success:ok"}, got)
}

type recordingEmitter struct {
	records []otellog.Record
}

func (r *recordingEmitter) Emit(_ context.Context, record otellog.Record) {
	r.records = append(r.records, record)
}

func TestOTelNotifier(t *testing.T) {
	rec := &recordingEmitter{}
	n := newOTelNotifier(rec, nil)
	n.now = func() time.Time { return time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC) }

	n.Notify(context.Background(), entities.NotificationSuccess, "Doctor added successfully")
	n.Notify(context.Background(), entities.NotificationError, "Failed to add doctor")

	require.Len(t, rec.records, 2)
	assert.Equal(t, "Doctor added successfully", rec.records[0].Body().AsString())
	assert.Equal(t, otellog.SeverityInfo, rec.records[0].Severity())
	assert.Equal(t, time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC), rec.records[0].Timestamp())
	assert.Equal(t, otellog.SeverityWarn, rec.records[1].Severity())

	kinds := map[string]string{}
	rec.records[1].WalkAttributes(func(kv otellog.KeyValue) bool {
		kinds[kv.Key] = kv.Value.AsString()
		return true
	})
	assert.Equal(t, "error", kinds["notification.kind"])
	assert.NotEmpty(t, kinds["notification.id"])
}

func TestAsyncNotifier(t *testing.T) {
	t.Run("slow delivery does not block the caller", func(t *testing.T) {
		release := make(chan struct{})
		var mu sync.Mutex
		var got []string
		slow := providers.NotifierFunc(func(_ context.Context, _ entities.NotificationKind, message string) {
			<-release
			mu.Lock()
			got = append(got, message)
			mu.Unlock()
		})
		n := NewAsyncNotifier(slow, 4)

		returned := make(chan struct{})
		go func() {
			n.Notify(context.Background(), entities.NotificationSuccess, "Patient created successfully")
			n.Notify(context.Background(), entities.NotificationSuccess, "Patient removed successfully")
			close(returned)
		}()
		select {
		case <-returned:
		case <-time.After(time.Second):
			t.Fatal("Notify blocked on delivery")
		}

		close(release)
		require.NoError(t, n.Close(context.Background()))
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"Patient created successfully", "Patient removed successfully"}, got)
	})

	t.Run("full queue drops instead of blocking", func(t *testing.T) {
		release := make(chan struct{})
		var mu sync.Mutex
		delivered := 0
		n := NewAsyncNotifier(providers.NotifierFunc(func(context.Context, entities.NotificationKind, string) {
			<-release
			mu.Lock()
			delivered++
			mu.Unlock()
		}), 1)

		for i := 0; i < 10; i++ {
			n.Notify(context.Background(), entities.NotificationSuccess, "tick")
		}
		close(release)
		require.NoError(t, n.Close(context.Background()))

		mu.Lock()
		defer mu.Unlock()
		assert.GreaterOrEqual(t, delivered, 1)
		assert.LessOrEqual(t, delivered, 2)
	})

	t.Run("notify after close is ignored", func(t *testing.T) {
		calls := 0
		n := NewAsyncNotifier(providers.NotifierFunc(func(context.Context, entities.NotificationKind, string) { calls++ }), 1)
		require.NoError(t, n.Close(context.Background()))

		n.Notify(context.Background(), entities.NotificationSuccess, "late")
		assert.Zero(t, calls)
		require.NoError(t, n.Close(context.Background()))
	})

	t.Run("close gives up when the context ends", func(t *testing.T) {
		block := make(chan struct{})
		defer close(block)
		n := NewAsyncNotifier(providers.NotifierFunc(func(context.Context, entities.NotificationKind, string) { <-block }), 1)
		n.Notify(context.Background(), entities.NotificationSuccess, "stuck")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, n.Close(ctx), context.DeadlineExceeded)
	})
}
