package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/modpanel/cli/internal/api"
	"github.com/modpanel/cli/internal/logger"
	"github.com/spf13/viper"
)

// DefaultAPIBaseURL is the moderation API the binary talks to. It is a
// deploy-time setting: set it with
// -ldflags "-X github.com/modpanel/cli/internal/config.DefaultAPIBaseURL=https://..."
// or through api_base_url in the config file.
var DefaultAPIBaseURL = "https://modpanel-api.workers.dev"

const (
	DefaultPollInterval   = 5 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

type Config struct {
	// All operations must happen to the configuration file,
	// so they must operate on separate Viper instances.
	v *viper.Viper

	APIBaseURL         string          `mapstructure:"api_base_url" json:"api_base_url"`
	AuthMode           api.AuthMode    `mapstructure:"auth_mode" json:"auth_mode"`
	WebPanelURL        string          `mapstructure:"web_panel_url" json:"web_panel_url"`
	LogLevel           logger.LogLevel `mapstructure:"log_level" json:"log_level"`
	PollInterval       time.Duration   `mapstructure:"poll_interval" json:"poll_interval"`
	RequestTimeout     time.Duration   `mapstructure:"request_timeout" json:"request_timeout"`
	DisableUpdateCheck bool            `mapstructure:"disable_update_check" json:"disable_update_check"`
}

// envKeys are the settings that MODPANEL_<KEY> may override.
var envKeys = []string{
	"auth_mode",
	"web_panel_url",
	"log_level",
	"poll_interval",
	"request_timeout",
	"disable_update_check",
}

func newConfigViper() (*viper.Viper, error) {
	v := viper.New()

	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	// Bind to environment variables of the same name. api_base_url is
	// deploy-time only and has no environment override.
	v.SetEnvPrefix("MODPANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	v.SetConfigFile(filepath.Join(dir, "config.json"))
	v.SetConfigType("json")

	// Defaults
	v.SetDefault("api_base_url", DefaultAPIBaseURL)
	v.SetDefault("auth_mode", string(api.AuthModeBearer))
	v.SetDefault("web_panel_url", "")
	v.SetDefault("log_level", string(logger.LogLevelInfo))
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("disable_update_check", false)

	return v, nil
}

func LoadConfig() (*Config, error) {
	v, err := newConfigViper()
	if err != nil {
		return nil, err
	}

	cfg := Config{v: v}

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.AuthMode = api.AuthMode(strings.ToLower(strings.TrimSpace(string(cfg.AuthMode))))
	cfg.LogLevel = logger.LogLevel(strings.ToLower(strings.TrimSpace(string(cfg.LogLevel))))

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case logger.LogLevelDebug, logger.LogLevelInfo:
	default:
		return fmt.Errorf("invalid log level: %v", c.LogLevel)
	}

	switch c.AuthMode {
	case api.AuthModeBearer, api.AuthModeCookie:
	default:
		return fmt.Errorf("invalid auth mode: %q (want %q or %q)", c.AuthMode, api.AuthModeBearer, api.AuthModeCookie)
	}

	if strings.TrimSpace(c.APIBaseURL) == "" {
		return errors.New("api_base_url is not set")
	}
	if _, err := url.Parse(c.APIBaseURL); err != nil {
		return fmt.Errorf("invalid api_base_url: %w", err)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.RequestTimeout)
	}

	return nil
}

// PanelURL returns the web panel address, defaulting to the API base URL.
func (c *Config) PanelURL() string {
	if c.WebPanelURL != "" {
		return c.WebPanelURL
	}
	return c.APIBaseURL
}

// Dir returns the path to the modpanel configuration directory
func Dir() (string, error) {
	homeDir, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "modpanel"), nil
}

// SessionsDir returns the directory holding one credential file per API origin.
func SessionsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

// userHomeDir returns the home directory of the original user
// (the user who invoked the command, not the effective user when running with sudo).
func userHomeDir() (string, error) {
	sudoUser := os.Getenv("SUDO_USER")
	if sudoUser != "" {
		u, err := user.Lookup(sudoUser)
		if err != nil {
			return "", fmt.Errorf("failed to lookup original user %s: %w", sudoUser, err)
		}
		return u.HomeDir, nil
	}

	return os.UserHomeDir()
}
