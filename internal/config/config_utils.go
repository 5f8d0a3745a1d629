package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// applyFallbacks fills in values that depend on the environment
func (c *Config) applyFallbacks() {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	c.Supabase.URL = strings.TrimRight(strings.TrimSpace(c.Supabase.URL), "/")

	c.applySessionDefaults()
	c.applyObservabilityDefaults()
}

// applySessionDefaults resolves the session file location
func (c *Config) applySessionDefaults() {
	if c.Session.File != "" {
		return
	}
	if home, err := os.UserHomeDir(); err == nil {
		c.Session.File = filepath.Join(home, ".proedualt", "session.json")
		return
	}
	c.Session.File = filepath.Join(".proedualt", "session.json")
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
	if c.App.LogLevel == "debug" && !c.Observability.Console.Enabled {
		c.Observability.Console.Enabled = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// maskSecret hides all but the edges of a secret value
func maskSecret(value string) string {
	switch {
	case value == "":
		return "***NOT SET***"
	case len(value) > 8:
		return value[:4] + "****" + value[len(value)-4:]
	default:
		return "****"
	}
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"PROEDUALT_BACKEND_BASEURL",
		"PROEDUALT_SUPABASE_URL",
		"PROEDUALT_SUPABASE_ANONKEY",
		"PROEDUALT_SESSION_FILE",
		"PROEDUALT_SERVER_PORT",
		"PROEDUALT_APP_LOGLEVEL",
		"PROEDUALT_VAULT_ENABLED",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if strings.Contains(strings.ToLower(envVar), "key") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] Backend URL: %s", c.Backend.BaseURL)
	log.Printf("[CONFIG] Backend Timeout: %s", c.Backend.Timeout)
	log.Printf("[CONFIG] Supabase URL: %s", c.Supabase.URL)
	log.Printf("[CONFIG] Supabase Key: %s", maskSecret(c.Supabase.AnonKey))
	log.Printf("[CONFIG] Session File: %s", c.Session.File)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Println("[CONFIG] =====================================")
}
