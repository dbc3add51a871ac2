package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[llm]
model = "gpt-4o-mini"

[ars]
poll_interval = "2s"
timeout = "5m"

[concurrency]
justifications = 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, float32(0.8), cfg.LLM.Temperature)
	assert.Equal(t, 256, cfg.LLM.MaxTokens)
	assert.Equal(t, 2*time.Second, cfg.ARS.PollInterval.Duration)
	assert.Equal(t, 5*time.Minute, cfg.ARS.Timeout.Duration)
	assert.Equal(t, 8, cfg.Concurrency.Justifications)
	assert.Equal(t, "annotation", cfg.Redis.Queue)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ars]\npoll_interval = \"soon\"\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.ARS.PollInterval.Duration)
}

func TestApplyEnvReadsSecretFiles(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "openai")
	secretFile := filepath.Join(dir, "secret")
	require.NoError(t, os.WriteFile(keyFile, []byte("  sk-test  \nignored\n"), 0o600))
	require.NoError(t, os.WriteFile(secretFile, []byte("s3cret\n"), 0o600))

	t.Setenv("OPENAI_API_KEY_FILE", keyFile)
	t.Setenv("SECRET_KEY_FILE", secretFile)
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "s3cret", cfg.Server.SecretKey)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestApplyEnvLeavesSecretKeyEmpty(t *testing.T) {
	t.Setenv("SECRET_KEY_FILE", "")
	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))
	assert.Empty(t, cfg.Server.SecretKey)
}

func TestApplyEnvRequireKeyWithoutSecret(t *testing.T) {
	t.Setenv("SECRET_KEY_FILE", "")
	cfg := Default()
	cfg.Server.RequireKey = true
	assert.Error(t, ApplyEnv(cfg))
}

func TestApplyEnvBadWorkerConcurrency(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "many")
	assert.Error(t, ApplyEnv(Default()))
}
