package sqlmap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockPool_Dialect(t *testing.T) {
	p, _, err := NewMockPool(Config{})
	require.NoError(t, err)
	assert.Equal(t, MySQL, p.Dialect())
	_ = p.Close()

	p, _, err = NewMockPool(Config{Dialect: "postgres"})
	require.NoError(t, err)
	assert.Equal(t, Postgres, p.Dialect())
	_ = p.Close()

	_, _, err = NewMockPool(Config{Dialect: "oracle"})
	assert.Error(t, err)
}

func TestNewPool_UnknownDriver(t *testing.T) {
	_, err := NewPool(context.Background(), Config{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestPool_NilSafety(t *testing.T) {
	var p *Pool
	ctx := context.Background()

	assert.NoError(t, p.Close())
	assert.Nil(t, p.DB())
	assert.Error(t, p.Ping(ctx))
	_, err := p.Acquire(ctx)
	assert.Error(t, err)
	assert.Error(t, p.WithConn(ctx, func(*Conn) error { return nil }))

	p.EnableLogging(true)
	p.EnableMetrics(true)
	p.EnableTelemetry(true)
	p.SetSlowQueryThreshold(0)
}

func TestConn_ClosedConnRejectsCalls(t *testing.T) {
	h := NewTestHelper(t)
	ctx := context.Background()

	c, err := h.Pool().Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Exec(ctx, "SELECT 1")
	assert.Error(t, err)
	_, err = c.Queryx(ctx, "SELECT 1")
	assert.Error(t, err)
	_, _, err = c.Prepare(ctx, "SELECT 1")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, Version())
}
