package config

import (
	"fmt"
	"log"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// Supabase key precedence order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (PROEDUALT_SUPABASE_ANONKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	Backend       BackendConfig       `mapstructure:"backend"`
	Supabase      SupabaseConfig      `mapstructure:"supabase"`
	Session       SessionConfig       `mapstructure:"session"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// BackendConfig holds settings for the remote analysis backend
type BackendConfig struct {
	BaseURL        string               `mapstructure:"baseURL"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	UserAgent      string               `mapstructure:"userAgent"`
	MaxResumeSize  int64                `mapstructure:"maxResumeSize"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
	RateLimit      ClientRateLimit      `mapstructure:"rateLimit"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// ClientRateLimit paces outbound backend requests
type ClientRateLimit struct {
	Enabled        bool `mapstructure:"enabled"`
	RequestsPerMin int  `mapstructure:"requestsPerMin"`
	BurstCapacity  int  `mapstructure:"burstCapacity"`
}

// SupabaseConfig holds identity provider settings
type SupabaseConfig struct {
	URL           string `mapstructure:"url"`
	AnonKey       string `mapstructure:"anonKey"`
	ProfilesTable string `mapstructure:"profilesTable"`
}

// SessionConfig controls where the signed-in session is persisted
type SessionConfig struct {
	File          string        `mapstructure:"file"`
	Watch         bool          `mapstructure:"watch"`
	RefreshMargin time.Duration `mapstructure:"refreshMargin"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// ServerConfig holds HTTP server configuration for the portfolio site
type ServerConfig struct {
	Host               string          `mapstructure:"host"`
	Port               string          `mapstructure:"port"`
	ReadTimeout        time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout       time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout        time.Duration   `mapstructure:"idleTimeout"`
	CORSAllowedOrigins []string        `mapstructure:"corsAllowedOrigins"`
	RateLimit          RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`        // Enable/disable rate limiting
	RequestsPerMin int  `mapstructure:"requestsPerMin"` // Requests allowed per minute
	BurstCapacity  int  `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	SampleRate      float64          `mapstructure:"sampleRate"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	Console         ConsoleConfig    `mapstructure:"console"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	setDefaults(v)

	v.SetEnvPrefix("PROEDUALT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/proedualt/")
	v.AddConfigPath("$HOME/.proedualt")
	v.AddConfigPath(".")

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required (set PROEDUALT_BACKEND_BASEURL environment variable)")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend base URL must be an absolute http(s) URL: %q", c.Backend.BaseURL)
	}

	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}

	if t := c.Backend.CircuitBreaker.FailureThreshold; t < 0 || t > 1 {
		return fmt.Errorf("circuit breaker failure threshold must be within [0,1], got %v", t)
	}

	if m := c.Session.RefreshMargin; m < 0 || m > MaxRefreshMargin {
		return fmt.Errorf("session refresh margin must be within [0, %s], got %s", MaxRefreshMargin, m)
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.App.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.App.LogLevel)
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	return nil
}

// HasIdentity reports whether the identity provider is configured.
func (c *Config) HasIdentity() bool {
	return c.Supabase.URL != "" && c.Supabase.AnonKey != ""
}
