package sqlmap

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all the metric instruments
type Metrics struct {
	connectionsActive  metric.Int64UpDownCounter
	connectionsTotal   metric.Int64Counter
	connectionDuration metric.Float64Histogram

	queriesTotal  metric.Int64Counter
	queryDuration metric.Float64Histogram

	transactionsTotal   metric.Int64Counter
	transactionDuration metric.Float64Histogram
}

// PoolStats combines database/sql pool statistics with borrow counters.
type PoolStats struct {
	sql.DBStats
	// Borrowed counts every Acquire since the pool was opened.
	Borrowed int64
	// InUse counts Conns that have been acquired and not yet closed.
	InUse int64
}

// Stats returns a snapshot of pool usage.
func (p *Pool) Stats() PoolStats {
	if p == nil || p.db == nil {
		return PoolStats{}
	}
	return PoolStats{
		DBStats:  p.db.Stats(),
		Borrowed: p.borrowed.Load(),
		InUse:    p.inUse.Load(),
	}
}

// EnableMetrics enables or disables metrics collection for this pool
func (p *Pool) EnableMetrics(enabled bool) {
	if p == nil {
		return
	}
	p.metricsEnabled = enabled
	if enabled && p.metrics == nil {
		p.initMetrics()
	}
}

// SetMeterProvider sets a custom meter provider for metrics
func (p *Pool) SetMeterProvider(provider metric.MeterProvider) {
	if p == nil {
		return
	}
	p.meterProvider = provider
	if p.metricsEnabled {
		p.initMetrics()
	}
}

func (p *Pool) initMetrics() {
	var meter metric.Meter
	if p.meterProvider != nil {
		meter = p.meterProvider.Meter(instrumentationName)
	} else {
		meter = otel.Meter(instrumentationName)
	}

	m := &Metrics{}
	m.connectionsActive, _ = meter.Int64UpDownCounter(
		"sqlmap_connections_active",
		metric.WithDescription("Number of connections currently borrowed from the pool"),
	)
	m.connectionsTotal, _ = meter.Int64Counter(
		"sqlmap_connections_total",
		metric.WithDescription("Total number of connections borrowed from the pool"),
	)
	m.connectionDuration, _ = meter.Float64Histogram(
		"sqlmap_connection_duration_seconds",
		metric.WithDescription("How long borrowed connections were held"),
		metric.WithUnit("s"),
	)
	m.queriesTotal, _ = meter.Int64Counter(
		"sqlmap_queries_total",
		metric.WithDescription("Total number of database queries"),
	)
	m.queryDuration, _ = meter.Float64Histogram(
		"sqlmap_query_duration_seconds",
		metric.WithDescription("Duration of database queries"),
		metric.WithUnit("s"),
	)
	m.transactionsTotal, _ = meter.Int64Counter(
		"sqlmap_transactions_total",
		metric.WithDescription("Total number of database transactions"),
	)
	m.transactionDuration, _ = meter.Float64Histogram(
		"sqlmap_transaction_duration_seconds",
		metric.WithDescription("Duration of database transactions"),
		metric.WithUnit("s"),
	)
	p.metrics = m
}

func (p *Pool) onBorrow(ctx context.Context) {
	p.borrowed.Inc()
	p.inUse.Inc()
	if !p.metricsEnabled || p.metrics == nil {
		return
	}
	p.metrics.connectionsActive.Add(ctx, 1)
	p.metrics.connectionsTotal.Add(ctx, 1)
}

func (p *Pool) onReturn(ctx context.Context, held time.Duration) {
	p.inUse.Dec()
	if !p.metricsEnabled || p.metrics == nil {
		return
	}
	p.metrics.connectionsActive.Add(ctx, -1)
	p.metrics.connectionDuration.Record(ctx, held.Seconds())
}

func statusOf(err error) string {
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "error"
	}
	return "success"
}

// recordQuery records query execution metrics
func (p *Pool) recordQuery(ctx context.Context, operation string, duration time.Duration, err error) {
	if p == nil || !p.metricsEnabled || p.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", statusOf(err)),
	)
	p.metrics.queriesTotal.Add(ctx, 1, attrs)
	p.metrics.queryDuration.Record(ctx, duration.Seconds(), attrs)
}

// recordTransaction records transaction execution metrics
func (p *Pool) recordTransaction(ctx context.Context, duration time.Duration, err error) {
	if p == nil || !p.metricsEnabled || p.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", statusOf(err)))
	p.metrics.transactionsTotal.Add(ctx, 1, attrs)
	p.metrics.transactionDuration.Record(ctx, duration.Seconds(), attrs)
}

// observe runs fn with tracing, metrics and logging around it.
func (p *Pool) observe(ctx context.Context, operation, query string, args []any, fn func(context.Context) error) error {
	start := time.Now()
	spanCtx, span := p.startSpan(ctx, operation, query)
	err := fn(spanCtx)
	duration := time.Since(start)

	p.logQuery(ctx, operation, query, args, duration, err)
	p.recordQuery(ctx, operation, duration, err)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		p.finishSpan(span, nil)
	} else {
		p.finishSpan(span, err)
	}
	return err
}
