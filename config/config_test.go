package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
http:
  addr: ":9090"
registry:
  backend: memory
  seed_path: /data/seed.json
allocation:
  operation_timeout_seconds: 30
metrics:
  prometheus_addr: ":2112"
  sinks:
    - type: prometheus
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "memory", cfg.Registry.Backend)
	assert.Equal(t, "/data/seed.json", cfg.Registry.SeedPath)
	assert.Equal(t, 30, cfg.Allocation.OperationTimeoutSeconds)
	assert.Equal(t, ":2112", cfg.Metrics.PrometheusAddr)
	require.Len(t, cfg.Metrics.Sinks, 1)
	assert.Equal(t, "prometheus", cfg.Metrics.Sinks[0].Type)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "registry": {"backend": "rest", "rest": {"base_url": "http://backend:3000", "timeout_seconds": 5}}
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rest", cfg.Registry.Backend)
	assert.Equal(t, "http://backend:3000", cfg.Registry.REST.BaseURL)
	assert.Equal(t, 5, cfg.Registry.REST.TimeoutSeconds)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `{}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "memory", cfg.Registry.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LG_HTTP__ADDR", ":7070")
	t.Setenv("LG_LOGGING__LEVEL", "warn")
	path := writeConfig(t, "config.yaml", `
http:
  addr: ":9090"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
registry:
  backend: postgres
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRESTRequiresBaseURL(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
registry:
  backend: rest
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
logging:
  level: verbose
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", `x = 1`)
	_, err := Load(path)
	assert.Error(t, err)
}
