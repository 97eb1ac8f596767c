package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.HistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, def.SettingsDir, cfg.SettingsDir)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lousa.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
log_level: debug
history_limit: 10
upstream_timeout: 30s
camera_urls:
  - http://192.168.1.20:8080/shot.jpg
redis:
  addr: localhost:6379
  prefix: "test:"
providers:
  openai:
    url: http://localhost:1234/v1/chat/completions
    key_env: MY_OPENAI_KEY
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "test:", cfg.Redis.Prefix)
	assert.Equal(t, []string{"http://192.168.1.20:8080/shot.jpg"}, cfg.CameraURLs)

	ups := cfg.Upstreams()
	require.Len(t, ups, 2)
	assert.Equal(t, "http://localhost:1234/v1/chat/completions", ups[0].URL)
	assert.Equal(t, "MY_OPENAI_KEY", ups[0].KeyEnv)
	assert.Equal(t, "gpt-4o-mini", ups[0].DefaultModel)
	assert.Equal(t, "OPENROUTER_API_KEY", ups[1].KeyEnv)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lousa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"addr": ":7000"}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lousa.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":                "8080",
		"LOUSA_HISTORY_LIMIT": "5",
		"LOUSA_REDIS_ADDR":    "redis:6379",
		"LOUSA_CAMERA_URLS":   "http://cam-a/snap.png, ,http://cam-b/snap.png",
	}
	cfg := Default()
	cfg.applyEnv(func(k string) string { return env[k] })

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5, cfg.HistoryLimit)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"http://cam-a/snap.png", "http://cam-b/snap.png"}, cfg.CameraURLs)
}

func TestLevel_Fallback(t *testing.T) {
	cfg := Config{LogLevel: "loud"}
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}
