package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultBackendURL, cfg.Backend.BaseURL)
	assert.Equal(t, "profiles", cfg.Supabase.ProfilesTable)
	assert.Equal(t, "text", cfg.App.DefaultFormat)
	assert.True(t, cfg.Backend.CircuitBreaker.Enabled)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), ".proedualt", "session.json"), cfg.Session.File)
	assert.False(t, cfg.HasIdentity())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PROEDUALT_BACKEND_BASEURL", "http://localhost:9000/")
	t.Setenv("PROEDUALT_SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("PROEDUALT_SUPABASE_ANONKEY", "anon")
	t.Setenv("PROEDUALT_SESSION_FILE", "/tmp/s.json")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.Backend.BaseURL)
	assert.Equal(t, "/tmp/s.json", cfg.Session.File)
	assert.True(t, cfg.HasIdentity())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := []byte("backend:\n  baseURL: https://staging.example.com\napp:\n  logLevel: debug\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0600))

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "https://staging.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.True(t, cfg.Observability.Console.Enabled)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Backend: BackendConfig{BaseURL: "https://api.example.com", Timeout: 1},
			Server:  ServerConfig{Port: "8080"},
			App:     AppConfig{LogLevel: "info", DefaultFormat: "json", SupportedFormats: []string{"json", "text"}},
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing url", mutate: func(c *Config) { c.Backend.BaseURL = "" }, expectError: "base URL is required"},
		{name: "relative url", mutate: func(c *Config) { c.Backend.BaseURL = "api.example.com" }, expectError: "absolute http(s) URL"},
		{name: "zero timeout", mutate: func(c *Config) { c.Backend.Timeout = 0 }, expectError: "timeout must be positive"},
		{name: "bad threshold", mutate: func(c *Config) { c.Backend.CircuitBreaker.FailureThreshold = 1.5 }, expectError: "failure threshold"},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, expectError: "port is required"},
		{name: "bad log level", mutate: func(c *Config) { c.App.LogLevel = "verbose" }, expectError: "invalid log level"},
		{name: "bad format", mutate: func(c *Config) { c.App.DefaultFormat = "xml" }, expectError: "invalid default format"},
		{name: "negative refresh margin", mutate: func(c *Config) { c.Session.RefreshMargin = -time.Second }, expectError: "refresh margin"},
		{name: "refresh margin above token lifetime", mutate: func(c *Config) { c.Session.RefreshMargin = 2 * time.Hour }, expectError: "refresh margin"},
		{name: "max refresh margin", mutate: func(c *Config) { c.Session.RefreshMargin = MaxRefreshMargin }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.expectError)
		})
	}
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "***NOT SET***", maskSecret(""))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "abcd****6789", maskSecret("abcdefgh6789"))
}
