package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"proedualt/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault
type VaultSecrets struct {
	// SupabaseKey is a KVv2 path holding "anon_key" and optionally "url".
	SupabaseKey string `mapstructure:"supabaseKey"`
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// NewVaultClient creates a new Vault client from configuration
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !config.Enabled {
		logger.Debug("Vault integration disabled")
		return nil, nil
	}

	logger.Debug("Initializing Vault client",
		"address", config.Address,
		"namespace", config.Namespace,
		"token_file", config.TokenFile,
		"has_token", config.Token != "")

	vaultConfig := api.DefaultConfig()
	if config.Address != "" {
		vaultConfig.Address = config.Address
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		logger.LogError(err, "Failed to create Vault client")
		return nil, errors.NewConfigError(errors.ErrCodeSecretLoad, "failed to create vault client", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config, logger)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		logger.LogError(err, "Failed to connect to Vault", "address", config.Address)
		return nil, errors.NewConfigError(errors.ErrCodeSecretLoad, "failed to connect to vault", err).
			WithContext("address", config.Address)
	}
	logger.Info("Connected to Vault", "address", config.Address, "version", health.Version, "sealed", health.Sealed)

	return &VaultClient{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// resolveVaultToken resolves the Vault token from config or file
func resolveVaultToken(config VaultConfig, logger *errors.Logger) (string, error) {
	token := config.Token

	if token == "" && config.TokenFile != "" {
		logger.Debug("Reading Vault token from file", "file", config.TokenFile)
		tokenBytes, err := os.ReadFile(config.TokenFile)
		if err != nil {
			logger.LogError(err, "Failed to read Vault token file", "file", config.TokenFile)
			return "", errors.NewConfigError(errors.ErrCodeSecretLoad, "failed to read vault token file", err).
				WithContext("file", config.TokenFile)
		}
		token = strings.TrimSpace(string(tokenBytes))
	}

	if token == "" {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "vault token is required when vault is enabled", nil)
	}

	return token, nil
}

// VaultSecret represents a secret read from Vault's KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	vc.logger.Debug("Reading secret from Vault", "path", path)

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		vc.logger.LogError(err, "Failed to read secret from Vault", "path", path)
		return nil, errors.NewConfigError(errors.ErrCodeSecretLoad, "failed to read secret", err).WithContext("path", path)
	}
	if secret == nil || secret.Data == nil {
		return nil, errors.NewConfigError(errors.ErrCodeSecretLoad, "secret not found", nil).WithContext("path", path)
	}

	return decodeKVv2(secret.Data, path)
}

// decodeKVv2 unpacks the data and metadata envelopes of a KVv2 read
func decodeKVv2(raw map[string]any, path string) (*VaultSecret, error) {
	data, ok := raw["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}

	metadata, ok := raw["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	versionRaw, ok := metadata["version"]
	if !ok {
		return nil, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}
	version, err := parseVersionValue(versionRaw, path)
	if err != nil {
		return nil, err
	}

	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue parses version value from various types
func parseVersionValue(versionRaw any, path string) (int64, error) {
	switch v := versionRaw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, versionRaw)
	}
}

// ApplyVaultSecrets loads secrets from Vault and applies them to the config
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		logger.Debug("Vault integration disabled, skipping secret loading")
		return nil
	}
	if config.Vault.Secrets.SupabaseKey == "" {
		logger.Warn("Vault enabled but no secret paths configured")
		return nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return err
	}

	secret, err := client.GetSecretV2(config.Vault.Secrets.SupabaseKey)
	if err != nil {
		return err
	}

	if err := applySupabaseSecret(config, secret); err != nil {
		return err
	}

	logger.Info("Supabase credentials loaded from Vault",
		"path", config.Vault.Secrets.SupabaseKey,
		"version", secret.Version,
		"masked_key", maskSecret(config.Supabase.AnonKey))
	return nil
}

// applySupabaseSecret copies the anon key, and the URL when present, into config
func applySupabaseSecret(config *Config, secret *VaultSecret) error {
	key, ok := secret.Data["anon_key"].(string)
	if !ok || key == "" {
		return errors.NewConfigError(errors.ErrCodeSecretLoad, "vault secret is missing a string 'anon_key' field", nil)
	}
	config.Supabase.AnonKey = key

	if u, ok := secret.Data["url"].(string); ok && u != "" {
		config.Supabase.URL = strings.TrimRight(u, "/")
	}
	return nil
}
