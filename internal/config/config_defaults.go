package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultBackendURL is the hosted ProEduAlt backend.
const DefaultBackendURL = "https://proedualt-backend63.onrender.com"

// MaxRefreshMargin bounds session.refreshMargin. Access tokens live an
// hour by default, so a larger margin would refresh on every use.
const MaxRefreshMargin = 30 * time.Minute

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Backend
	v.SetDefault("backend.baseURL", DefaultBackendURL)
	v.SetDefault("backend.timeout", 90*time.Second) // analysis and plan generation are slow
	v.SetDefault("backend.userAgent", "proedualt-cli")
	v.SetDefault("backend.maxResumeSize", 5*1024*1024)

	v.SetDefault("backend.circuitBreaker.enabled", true)
	v.SetDefault("backend.circuitBreaker.maxRequests", 3)
	v.SetDefault("backend.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("backend.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("backend.circuitBreaker.minRequests", 3)
	v.SetDefault("backend.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("backend.rateLimit.enabled", false)
	v.SetDefault("backend.rateLimit.requestsPerMin", 120)
	v.SetDefault("backend.rateLimit.burstCapacity", 10)

	// Supabase
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.anonKey", "")
	v.SetDefault("supabase.profilesTable", "profiles")

	// Session
	v.SetDefault("session.file", "") // resolved to $HOME/.proedualt/session.json
	v.SetDefault("session.watch", true)
	v.SetDefault("session.refreshMargin", 60*time.Second)
	v.SetDefault("session.debounceDelay", 250*time.Millisecond)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.corsAllowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("server.rateLimit.enabled", true)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)

	// App Configuration
	v.SetDefault("app.logLevel", "warn")
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.supabaseKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.serviceName", "proedualt")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
