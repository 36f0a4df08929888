package sqlmap

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ConnectPolicy controls how NewPool retries the initial ping.
type ConnectPolicy struct {
	// MaxAttempts is the total number of pings; zero or one means no retry.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

func (c ConnectPolicy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if c.InitialInterval > 0 {
		eb.InitialInterval = c.InitialInterval
	}
	if c.MaxInterval > 0 {
		eb.MaxInterval = c.MaxInterval
	}
	if c.MaxElapsed > 0 {
		eb.MaxElapsedTime = c.MaxElapsed
	}
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)
}

// PingWithRetry pings until the database answers or the policy gives up.
// Only connection-level and transient errors are retried.
func (p *Pool) PingWithRetry(ctx context.Context, policy ConnectPolicy) error {
	if p == nil || p.db == nil {
		return errors.New("nil pool")
	}
	attempt := 0
	op := func() error {
		attempt++
		start := time.Now()
		err := p.db.PingContext(ctx)
		if err == nil {
			return nil
		}
		p.logConnection(ctx, "ping", time.Since(start), err)
		switch Classify(err) {
		case ErrClassConnection, ErrClassRetryable:
			return err
		default:
			return backoff.Permanent(err)
		}
	}
	return backoff.Retry(op, policy.backOff(ctx))
}

// HealthStatus is a point-in-time view of pool health.
type HealthStatus struct {
	Healthy      bool
	LastChecked  time.Time
	ResponseTime time.Duration
	Stats        PoolStats
	Err          error
}

// HealthCheck pings the database once and reports pool statistics.
func (p *Pool) HealthCheck(ctx context.Context) HealthStatus {
	start := time.Now()
	st := HealthStatus{LastChecked: start}
	st.Err = p.Ping(ctx)
	st.ResponseTime = time.Since(start)
	st.Healthy = st.Err == nil
	st.Stats = p.Stats()
	return st
}
