package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
	assert.Equal(t, ":8080", cfg.App.Addr)
	assert.Equal(t, 10, cfg.QR.ModulePixels)
	assert.False(t, cfg.TLS.Enabled())
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
app:
  addr: ":9090"
  log_level: debug
qr:
  module_pixels: 6
  foreground: "#1a237e"
  escape_values: true
security:
  token_ttl: 15m
`)
	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.App.Addr)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 6, cfg.QR.ModulePixels)
	assert.Equal(t, "#1a237e", cfg.QR.Foreground)
	assert.Equal(t, "#ffffff", cfg.QR.Background)
	assert.True(t, cfg.QR.EscapeValues)
	assert.Equal(t, 15*time.Minute, cfg.Security.TokenTTL)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "config.yaml", "qr:\n  box_size: 10\n")
	_, err := Load(path, "")
	assert.Error(t, err)
}

func TestLoadCommentOnlyFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "# nothing here\n")
	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.App.Addr)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "app:\n  addr: \":9090\"\n")
	t.Setenv("QRFORGE_ADDR", ":7070")
	t.Setenv("QRFORGE_QR_MODULE_PIXELS", "4")
	t.Setenv("QRFORGE_QR_ESCAPE_VALUES", "true")
	t.Setenv("QRFORGE_TOKEN_TTL", "2h")
	t.Setenv("QRFORGE_RATE_LIMIT", "2.5")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.App.Addr)
	assert.Equal(t, 4, cfg.QR.ModulePixels)
	assert.True(t, cfg.QR.EscapeValues)
	assert.Equal(t, 2*time.Hour, cfg.Security.TokenTTL)
	assert.Equal(t, 2.5, cfg.Limits.RequestsPerSecond)
}

func TestDotEnvFile(t *testing.T) {
	// Registered so t.Setenv restores the variable godotenv sets.
	t.Setenv("QRFORGE_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("QRFORGE_LOG_LEVEL"))

	envFile := writeFile(t, ".env", "QRFORGE_LOG_LEVEL=warn\n")
	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.App.LogLevel)

	_, err = Load("", filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestEnvErrorsAccumulate(t *testing.T) {
	t.Setenv("QRFORGE_QR_MODULE_PIXELS", "ten")
	t.Setenv("QRFORGE_QR_ESCAPE_VALUES", "maybe")

	_, err := Load("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QRFORGE_QR_MODULE_PIXELS must be a valid integer")
	assert.Contains(t, err.Error(), "QRFORGE_QR_ESCAPE_VALUES must be a valid boolean")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QR.Foreground = "#nothex"
	cfg.TLS.CertFile = "cert.pem"
	cfg.QR.ModulePixels = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qr.foreground")
	assert.Contains(t, err.Error(), "tls.cert_file and tls.key_file")
	assert.Contains(t, err.Error(), "qr.module_pixels")
}
