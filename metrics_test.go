package sqlmap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumInt64(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "%T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordsQueriesConnectionsAndTransactions(t *testing.T) {
	h := NewTestHelper(t)
	p := h.Pool()
	reader := sdkmetric.NewManualReader()
	p.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	p.EnableMetrics(true)
	ctx := context.Background()

	err := p.WithConn(ctx, func(c *Conn) error {
		if _, err := c.Exec(ctx, "SELECT 1"); err != nil {
			return err
		}
		_, _ = c.Exec(ctx, "SELECT FROM nowhere")
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, p.WithinTx(ctx, func(tx *Tx) error { return nil }))

	got := collect(t, reader)
	require.Contains(t, got, "sqlmap_queries_total")
	assert.Equal(t, int64(2), sumInt64(t, got["sqlmap_queries_total"]))
	assert.Equal(t, int64(1), sumInt64(t, got["sqlmap_connections_total"]))
	assert.Equal(t, int64(0), sumInt64(t, got["sqlmap_connections_active"]))
	assert.Equal(t, int64(1), sumInt64(t, got["sqlmap_transactions_total"]))
	assert.Contains(t, got, "sqlmap_query_duration_seconds")
	assert.Contains(t, got, "sqlmap_connection_duration_seconds")
	assert.Contains(t, got, "sqlmap_transaction_duration_seconds")
}

func TestMetrics_Disabled(t *testing.T) {
	h := NewTestHelper(t)
	p := h.Pool()
	reader := sdkmetric.NewManualReader()
	p.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	err := p.WithConn(context.Background(), func(c *Conn) error {
		_, err := c.Exec(context.Background(), "SELECT 1")
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, collect(t, reader))
}

func TestStats_TracksBorrowedConnections(t *testing.T) {
	h := NewTestHelper(t)
	p := h.Pool()
	ctx := context.Background()

	before := p.Stats()
	c1, err := p.Acquire(ctx)
	require.NoError(t, err)
	c2, err := p.Acquire(ctx)
	require.NoError(t, err)

	st := p.Stats()
	assert.Equal(t, before.Borrowed+2, st.Borrowed)
	assert.Equal(t, int64(2), st.InUse)
	assert.GreaterOrEqual(t, st.OpenConnections, 2)

	require.NoError(t, c1.Close())
	require.NoError(t, c2.Close())
	require.NoError(t, c2.Close(), "second close is a no-op")
	assert.Equal(t, int64(0), p.Stats().InUse)

	var nilPool *Pool
	assert.Equal(t, PoolStats{}, nilPool.Stats())
}
