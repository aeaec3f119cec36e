package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*RuleAPIConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultRuleAPIConfig
	v.SetDefault("rule_api.host", "0.0.0.0")
	v.SetDefault("rule_api.port", 8080)
	v.SetDefault("rule_api.request_timeout", "30s")
	v.SetDefault("rule_api.shutdown_timeout", "30s")
	v.SetDefault("rule_api.max_body_bytes", 1024*1024)

	// Bind environment variables with RG_ prefix
	v.SetEnvPrefix("RG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject secrets in config files
	// Secrets must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &RuleAPIConfig{
		Host:            v.GetString("rule_api.host"),
		Port:            v.GetInt("rule_api.port"),
		RequestTimeout:  v.GetDuration("rule_api.request_timeout"),
		ShutdownTimeout: v.GetDuration("rule_api.shutdown_timeout"),
		MaxBodyBytes:    v.GetInt64("rule_api.max_body_bytes"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range and positive values for timeouts and body limit.
func validateConfig(cfg *RuleAPIConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %v", cfg.ShutdownTimeout)
	}
	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", cfg.MaxBodyBytes)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("hmac_secret") || v.IsSet("rule_api.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use RG_HMAC_SECRET environment variable)")
	}
	return nil
}
