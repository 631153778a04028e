package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordOperationMetric(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := newMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	RecordOperationMetric(ctx, metrics, "patients", "create", true, 12*time.Millisecond)
	RecordOperationMetric(ctx, metrics, "patients", "remove", false, 3*time.Millisecond)
	RecordAPIMetric(ctx, metrics, "GET", "/api/patients", 200, time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]metricdata.Aggregation{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = m.Data
	}

	count, ok := names["collection.operation.count"].(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range count.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)
	assert.Contains(t, names, "api.client.request.duration")
}

func TestRecordMetrics_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordOperationMetric(context.Background(), nil, "patients", "create", true, time.Millisecond)
		RecordAPIMetric(context.Background(), nil, "GET", "/", 200, time.Millisecond)
		RecordNotificationMetric(context.Background(), nil, "success", "log")
	})
}
