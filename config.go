package momo

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// SandboxBaseURL is the MTN developer sandbox
	SandboxBaseURL = "https://sandbox.momodeveloper.mtn.com/"

	// ProductionBaseURL is the live collection gateway
	ProductionBaseURL = "https://ericssonbasicapi1.azure-api.net/"

	// DefaultEnvironment is the X-Target-Environment used when none is set
	DefaultEnvironment = "sandbox"

	// DefaultConnectionTimeout bounds connection establishment
	DefaultConnectionTimeout = 30 * time.Second

	// DefaultRequestTimeout bounds one full request/response exchange
	DefaultRequestTimeout = 60 * time.Second
)

// Config holds the credentials and settings for a provider client
type Config struct {
	APIUser           string        `mapstructure:"api_user"`
	APIKey            string        `mapstructure:"api_key"`
	SubscriptionKey   string        `mapstructure:"subscription_key"`
	Environment       string        `mapstructure:"environment"`
	BaseURL           string        `mapstructure:"base_url"`
	CallbackURL       string        `mapstructure:"callback_url"`
	Production        bool          `mapstructure:"production"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

// LoadConfig reads configuration from an optional momo.yaml in path and
// from MOMO_-prefixed environment variables, the environment winning.
// It fails before any network activity when a required setting is
// missing.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigName("momo")
	v.SetConfigType("yaml")
	if path == "" {
		path = "."
	}
	v.AddConfigPath(path)

	v.SetEnvPrefix("MOMO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("environment", DefaultEnvironment)
	v.SetDefault("production", false)
	v.SetDefault("connection_timeout", DefaultConnectionTimeout)
	v.SetDefault("request_timeout", DefaultRequestTimeout)

	// Bind explicitly so env-only settings survive Unmarshal
	for _, key := range []string{
		"api_user", "api_key", "subscription_key", "environment",
		"base_url", "callback_url", "production",
		"connection_timeout", "request_timeout",
	} {
		_ = v.BindEnv(key)
	}

	// The config file is optional; only a malformed one is an error
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that every required setting is present
func (c *Config) Validate() error {
	var missing []string

	if strings.TrimSpace(c.APIUser) == "" {
		missing = append(missing, "api_user")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "api_key")
	}
	if strings.TrimSpace(c.SubscriptionKey) == "" {
		missing = append(missing, "subscription_key")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	return nil
}

// applyDefaults fills unset optional settings and normalizes the base
// URL to end with a separator
func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}

	if c.BaseURL == "" {
		if c.Production {
			c.BaseURL = ProductionBaseURL
		} else {
			c.BaseURL = SandboxBaseURL
		}
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}

	if c.ConnectionTimeout <= 0 {
		c.ConnectionTimeout = DefaultConnectionTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}
