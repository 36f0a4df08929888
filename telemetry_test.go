package sqlmap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func tracedPool(t *testing.T) (*Pool, *tracetest.InMemoryExporter) {
	t.Helper()
	h := NewTestHelper(t)
	exporter := tracetest.NewInMemoryExporter()
	p := h.Pool()
	p.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))
	p.EnableTelemetry(true)
	return p, exporter
}

func attrValue(attrs []attribute.KeyValue, key string) string {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.Emit()
		}
	}
	return ""
}

func TestTelemetry_QuerySpan(t *testing.T) {
	p, exporter := tracedPool(t)
	ctx := context.Background()

	err := p.WithConn(ctx, func(c *Conn) error {
		_, err := Query[int64](ctx, c, "SELECT COUNT(*) FROM massive_user_list", nil)
		return err
	})
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "sqlmap.query", s.Name)
	assert.Equal(t, codes.Ok, s.Status.Code)
	assert.Equal(t, "sqlite", attrValue(s.Attributes, "db.system"))
	assert.Equal(t, "query", attrValue(s.Attributes, "db.operation"))
	assert.Equal(t, "SELECT COUNT(*) FROM massive_user_list", attrValue(s.Attributes, "db.statement"))
	assert.Equal(t, "github.com/swiftkick/sqlmap", s.InstrumentationScope.Name)
}

func TestTelemetry_ErrorSpan(t *testing.T) {
	p, exporter := tracedPool(t)
	ctx := context.Background()

	err := p.WithConn(ctx, func(c *Conn) error {
		_, err := c.Exec(ctx, "SELECT FROM nowhere")
		return err
	})
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "sqlmap.exec", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.NotEmpty(t, spans[0].Events, "error should be recorded as an event")
}

func TestTelemetry_NoRowsIsNotAnError(t *testing.T) {
	p, exporter := tracedPool(t)
	ctx := context.Background()

	err := p.WithConn(ctx, func(c *Conn) error {
		_, err := QueryFirst[int64](ctx, c, "SELECT id FROM massive_user_list", nil)
		return err
	})
	assert.True(t, IsNotFound(err))

	for _, s := range exporter.GetSpans() {
		assert.NotEqual(t, codes.Error, s.Status.Code, s.Name)
	}
}

func TestTelemetry_Disabled(t *testing.T) {
	p, exporter := tracedPool(t)
	p.EnableTelemetry(false)

	err := p.WithConn(context.Background(), func(c *Conn) error {
		_, err := c.Exec(context.Background(), "SELECT 1")
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, exporter.GetSpans())
}
