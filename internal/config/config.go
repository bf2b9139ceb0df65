// Package config loads server settings from defaults, an optional YAML file
// and the environment, in that order of increasing priority.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/harrylevesque/qrforge/internal/files"
	"github.com/harrylevesque/qrforge/internal/qr"
)

// Config holds all qrforge configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	QR       QRConfig       `yaml:"qr"`
	Security SecurityConfig `yaml:"security"`
	Limits   LimitsConfig   `yaml:"limits"`
	TLS      TLSConfig      `yaml:"tls"`
}

// AppConfig contains process level settings.
type AppConfig struct {
	Env             string        `yaml:"env"`
	Addr            string        `yaml:"addr"`
	LogLevel        string        `yaml:"log_level"`
	LogFile         string        `yaml:"log_file"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// QRConfig controls rendering.
type QRConfig struct {
	ModulePixels    int    `yaml:"module_pixels"`
	DisableBorder   bool   `yaml:"disable_border"`
	Foreground      string `yaml:"foreground"`
	Background      string `yaml:"background"`
	EscapeValues    bool   `yaml:"escape_values"`
	MaxPayloadBytes int    `yaml:"max_payload_bytes"`
}

// SecurityConfig locates the master key used for download tokens.
type SecurityConfig struct {
	MasterKeyHex  string        `yaml:"master_key_hex"`
	MasterKeyFile string        `yaml:"master_key_file"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
}

// LimitsConfig bounds request volume and upload size.
type LimitsConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	MaxUploadBytes    int64   `yaml:"max_upload_bytes"`
}

// TLSConfig enables HTTPS when both files are set.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// Enabled reports whether both certificate and key are configured.
func (t TLSConfig) Enabled() bool { return t.CertFile != "" && t.KeyFile != "" }

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		App: AppConfig{
			Env:             "development",
			Addr:            ":8080",
			LogLevel:        "info",
			ShutdownTimeout: 10 * time.Second,
		},
		QR: QRConfig{
			ModulePixels:    qr.DefaultModulePixels,
			Foreground:      "#000000",
			Background:      "#ffffff",
			MaxPayloadBytes: qr.MaxPayloadBytes,
		},
		Security: SecurityConfig{
			MasterKeyFile: files.DefaultMasterKeyFile,
			TokenTTL:      time.Hour,
		},
		Limits: LimitsConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			MaxUploadBytes:    4 << 20,
		},
	}
}

// Load applies the YAML file at path (skipped when empty or missing), then
// the .env file at envFile (skipped when missing), then QRFORGE_* variables,
// and validates the result.
func Load(path, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: loading %s: %w", envFile, err)
		}
	}

	ldr := &envLoader{}
	ldr.apply(&cfg)
	if err := ldr.validate(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	var errs []string
	if c.App.Addr == "" {
		errs = append(errs, "app.addr cannot be empty")
	}
	if c.QR.ModulePixels <= 0 || c.QR.ModulePixels > 64 {
		errs = append(errs, fmt.Sprintf("qr.module_pixels must be in 1..64, got %d", c.QR.ModulePixels))
	}
	if c.QR.MaxPayloadBytes <= 0 || c.QR.MaxPayloadBytes > qr.MaxPayloadBytes {
		errs = append(errs, fmt.Sprintf("qr.max_payload_bytes must be in 1..%d, got %d", qr.MaxPayloadBytes, c.QR.MaxPayloadBytes))
	}
	if _, err := qr.ParseColor(c.QR.Foreground); err != nil {
		errs = append(errs, "qr.foreground: "+err.Error())
	}
	if _, err := qr.ParseColor(c.QR.Background); err != nil {
		errs = append(errs, "qr.background: "+err.Error())
	}
	if c.Security.TokenTTL <= 0 {
		errs = append(errs, "security.token_ttl must be positive")
	}
	if c.Limits.RequestsPerSecond < 0 || c.Limits.Burst < 0 {
		errs = append(errs, "limits must not be negative")
	}
	if c.Limits.MaxUploadBytes <= 0 {
		errs = append(errs, "limits.max_upload_bytes must be positive")
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		errs = append(errs, "tls.cert_file and tls.key_file must be set together")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

type envLoader struct {
	errs []string
}

func (l *envLoader) apply(cfg *Config) {
	cfg.App.Env = l.getString("QRFORGE_ENV", cfg.App.Env)
	cfg.App.Addr = l.getString("QRFORGE_ADDR", cfg.App.Addr)
	cfg.App.LogLevel = l.getString("QRFORGE_LOG_LEVEL", cfg.App.LogLevel)
	cfg.App.LogFile = l.getString("QRFORGE_LOG_FILE", cfg.App.LogFile)
	cfg.App.ShutdownTimeout = l.getDuration("QRFORGE_SHUTDOWN_TIMEOUT", cfg.App.ShutdownTimeout)

	cfg.QR.ModulePixels = l.getInt("QRFORGE_QR_MODULE_PIXELS", cfg.QR.ModulePixels)
	cfg.QR.DisableBorder = l.getBool("QRFORGE_QR_DISABLE_BORDER", cfg.QR.DisableBorder)
	cfg.QR.Foreground = l.getString("QRFORGE_QR_FOREGROUND", cfg.QR.Foreground)
	cfg.QR.Background = l.getString("QRFORGE_QR_BACKGROUND", cfg.QR.Background)
	cfg.QR.EscapeValues = l.getBool("QRFORGE_QR_ESCAPE_VALUES", cfg.QR.EscapeValues)
	cfg.QR.MaxPayloadBytes = l.getInt("QRFORGE_QR_MAX_PAYLOAD_BYTES", cfg.QR.MaxPayloadBytes)

	// MASTER_KEY_HEX is honoured for compatibility with genmasterkey docs.
	cfg.Security.MasterKeyHex = l.getString("MASTER_KEY_HEX", cfg.Security.MasterKeyHex)
	cfg.Security.MasterKeyHex = l.getString("QRFORGE_MASTER_KEY_HEX", cfg.Security.MasterKeyHex)
	cfg.Security.MasterKeyFile = l.getString("QRFORGE_MASTER_KEY_FILE", cfg.Security.MasterKeyFile)
	cfg.Security.TokenTTL = l.getDuration("QRFORGE_TOKEN_TTL", cfg.Security.TokenTTL)

	cfg.Limits.RequestsPerSecond = l.getFloat("QRFORGE_RATE_LIMIT", cfg.Limits.RequestsPerSecond)
	cfg.Limits.Burst = l.getInt("QRFORGE_RATE_BURST", cfg.Limits.Burst)
	cfg.Limits.MaxUploadBytes = int64(l.getInt("QRFORGE_MAX_UPLOAD_BYTES", int(cfg.Limits.MaxUploadBytes)))

	cfg.TLS.CertFile = l.getString("QRFORGE_TLS_CERT_FILE", cfg.TLS.CertFile)
	cfg.TLS.KeyFile = l.getString("QRFORGE_TLS_KEY_FILE", cfg.TLS.KeyFile)
}

func (l *envLoader) validate() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(l.errs, "; "))
}

func (l *envLoader) lookup(key string) (string, bool) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	val = strings.TrimSpace(val)
	return val, val != ""
}

func (l *envLoader) getString(key, def string) string {
	if val, ok := l.lookup(key); ok {
		return val
	}
	return def
}

func (l *envLoader) getInt(key string, def int) int {
	val, ok := l.lookup(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid integer", key))
		return def
	}
	return i
}

func (l *envLoader) getFloat(key string, def float64) float64 {
	val, ok := l.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid number", key))
		return def
	}
	return f
}

func (l *envLoader) getBool(key string, def bool) bool {
	val, ok := l.lookup(key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid boolean", key))
		return def
	}
	return parsed
}

func (l *envLoader) getDuration(key string, def time.Duration) time.Duration {
	val, ok := l.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid duration", key))
		return def
	}
	return d
}

func (l *envLoader) addError(err string) {
	l.errs = append(l.errs, err)
}
