//go:build integration

package sqlmap

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DockerTestConfig holds configuration for the MySQL test container
type DockerTestConfig struct {
	MySQLVersion string
	Database     string
	Username     string
	Password     string
	StartTimeout time.Duration
}

// DefaultDockerTestConfig returns default configuration for Docker tests
func DefaultDockerTestConfig() DockerTestConfig {
	return DockerTestConfig{
		MySQLVersion: "8.0",
		Database:     "GriffCoUnlimited",
		Username:     "sqlmap",
		Password:     "sqlmap",
		StartTimeout: 90 * time.Second,
	}
}

// NewMySQLTestPool starts a MySQL container, opens a migrated pool on it and
// returns a cleanup func that closes the pool and removes the container.
func NewMySQLTestPool(ctx context.Context, config DockerTestConfig) (*Pool, func(), error) {
	container, err := mysql.Run(ctx,
		"mysql:"+config.MySQLVersion,
		mysql.WithDatabase(config.Database),
		mysql.WithUsername(config.Username),
		mysql.WithPassword(config.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithOccurrence(1).
				WithStartupTimeout(config.StartTimeout),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start MySQL container: %w", err)
	}
	terminate := func() { _ = testcontainers.TerminateContainer(container) }

	host, err := container.Host(ctx)
	if err != nil {
		terminate()
		return nil, nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		terminate()
		return nil, nil, fmt.Errorf("failed to get container port: %w", err)
	}

	pool, err := NewPool(ctx, Config{
		Driver:   "mysql",
		Host:     host,
		Port:     port.Int(),
		Username: config.Username,
		Password: config.Password,
		Database: config.Database,
		Connect:  ConnectPolicy{MaxAttempts: 10, InitialInterval: 500 * time.Millisecond},
	})
	if err != nil {
		terminate()
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Migrate(ctx); err != nil {
		_ = pool.Close()
		terminate()
		return nil, nil, err
	}
	return pool, func() {
		_ = pool.Close()
		terminate()
	}, nil
}
