package sqlmap

import (
	"fmt"

	"github.com/DATA-DOG/go-sqlmock"
)

// NewMockPool creates a Pool backed by go-sqlmock. SQL is matched exactly, so
// expectations must use the statement as sent, placeholders included.
// cfg.Dialect picks the placeholder style (MySQL when empty).
func NewMockPool(cfg Config) (*Pool, sqlmock.Sqlmock, error) {
	dialect := MySQL
	if cfg.Dialect != "" {
		d, err := ParseDialect(cfg.Dialect)
		if err != nil {
			return nil, nil, err
		}
		dialect = d
	}
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlmock: %w", err)
	}
	p := newPool(db, "sqlmock", dialect, !cfg.StrictMapping)
	p.slowQueryThreshold = cfg.SlowQueryThreshold
	if cfg.Logging.Enabled {
		p.logger = cfg.Logging.logger()
		p.loggingEnabled = true
	}
	return p, mock, nil
}
