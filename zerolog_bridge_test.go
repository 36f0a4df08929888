package sqlmap

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_LevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("hello", "count", 3, "ok", true, "took", 1500*time.Millisecond, "name", "jim")
	logger.Error("broken")

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "hello", lines[0]["message"])
	assert.EqualValues(t, 3, lines[0]["count"])
	assert.Equal(t, true, lines[0]["ok"])
	assert.Equal(t, "jim", lines[0]["name"])
	assert.Contains(t, lines[0], "took")
	assert.Contains(t, lines[0], "time")

	assert.Equal(t, "error", lines[1]["level"])
}

func TestNewLogger_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelDebug).
		With("run_id", "r1").
		WithGroup("db").
		With("dialect", "sqlite")

	logger.Warn("grouped", "table", "massive_user_list", slog.Group("pool", "in_use", 2))

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	l := lines[0]
	assert.Equal(t, "warn", l["level"])
	assert.Equal(t, "r1", l["run_id"])
	assert.Equal(t, "sqlite", l["db.dialect"])
	assert.Equal(t, "massive_user_list", l["db.table"])
	assert.EqualValues(t, 2, l["db.pool.in_use"])
}

func TestZerologHandler_EmptyGroup(t *testing.T) {
	h := &zerologHandler{level: slog.LevelInfo}
	assert.Same(t, h, h.WithGroup(""))
}
