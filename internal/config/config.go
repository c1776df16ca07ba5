// Package config loads and validates the module configuration file. The
// core engine never parses files; it consumes the already-validated result.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"

	"github.com/wrale/oauth2-device-auth/internal/devicegrant"
)

// Defaults applied when the file omits a field.
const (
	DefaultTimeoutSeconds = 300
	DefaultLogLevel       = "info"
)

// Config is the on-disk configuration, conventionally
// /etc/oauth2-device-login/config.json.
type Config struct {
	DeviceAuthURL    string `mapstructure:"oauth_device_url"`
	TokenURL         string `mapstructure:"oauth_token_url"`
	IntrospectURL    string `mapstructure:"oauth_introspect_url"`
	ClientID         string `mapstructure:"client_id"`
	ClientSecret     string `mapstructure:"client_secret"`
	Scope            string `mapstructure:"scope"`
	TimeoutSeconds   int    `mapstructure:"timeout"`
	QREnabled        bool   `mapstructure:"qr_enabled"`
	UsernameSuffix   string `mapstructure:"username_suffix"`
	RequiredAudience string `mapstructure:"required_audience"`
	LogPath          string `mapstructure:"log_path"`
	LogLevel         string `mapstructure:"log_level"`
}

// Load reads the JSON configuration at path and validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("timeout", DefaultTimeoutSeconds)
	v.SetDefault("log_level", DefaultLogLevel)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the fields the core depends on.
func (c *Config) Validate() error {
	endpoints := []struct {
		name string
		raw  string
	}{
		{"oauth_device_url", c.DeviceAuthURL},
		{"oauth_token_url", c.TokenURL},
		{"oauth_introspect_url", c.IntrospectURL},
	}
	for _, ep := range endpoints {
		if ep.raw == "" {
			return fmt.Errorf("%s is required", ep.name)
		}
		u, err := url.Parse(ep.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", ep.name, err)
		}
		if !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("%s: %q is not an absolute URL", ep.name, ep.raw)
		}
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.TimeoutSeconds)
	}
	return nil
}

// ClientConfig maps the file fields onto the device grant client
// configuration.
func (c *Config) ClientConfig() devicegrant.Config {
	return devicegrant.Config{
		DeviceAuthURL: c.DeviceAuthURL,
		TokenURL:      c.TokenURL,
		IntrospectURL: c.IntrospectURL,
		ClientID:      c.ClientID,
		ClientSecret:  c.ClientSecret,
		Scope:         c.Scope,
		PollTimeout:   time.Duration(c.TimeoutSeconds) * time.Second,
	}
}
