package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"api_key", "sk-1", "task_id", "t-1", "Redis_Password", "pw", "dangling"})
	assert.Equal(t, []interface{}{"api_key", "[REDACTED]", "task_id", "t-1", "Redis_Password", "[REDACTED]", "dangling"}, out)
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "worker").Info("task done", "task_id", "abc", "secret_key", "x")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "worker", fields["component"])
		assert.Equal(t, "abc", fields["task_id"])
		assert.Equal(t, "[REDACTED]", fields["secret_key"])
	}
}

func TestNewLevels(t *testing.T) {
	prod, err := New("production", "")
	require.NoError(t, err)
	assert.False(t, prod.SugaredLogger.Desugar().Core().Enabled(zap.DebugLevel))
	assert.True(t, prod.SugaredLogger.Desugar().Core().Enabled(zap.InfoLevel))

	dev, err := New("development", "")
	require.NoError(t, err)
	assert.True(t, dev.SugaredLogger.Desugar().Core().Enabled(zap.DebugLevel))

	quiet, err := New("development", "warn")
	require.NoError(t, err)
	assert.False(t, quiet.SugaredLogger.Desugar().Core().Enabled(zap.InfoLevel))

	_, err = New("production", "loud")
	assert.Error(t, err)
}
