package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// BackendConfig holds connection settings for the marketplace backend.
type BackendConfig struct {
	// BaseURL is the root URL of the messaging API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// UserID is the identifier of the signed-in user; messages
	// authored by this user never trigger notifications.
	UserID string `mapstructure:"user_id" yaml:"user_id"`

	// UserName is the display name used when composing messages.
	UserName string `mapstructure:"user_name" yaml:"user_name"`

	// PollIntervalSec is how often (in seconds) the feed poller and
	// connectivity monitor run.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// EmailBridgeConfig holds the optional IMAP digest settings. When
// enabled, unseen mail in the registry inbox surfaces as system
// notifications.
type EmailBridgeConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	Host            string `mapstructure:"host" yaml:"host"`
	Port            string `mapstructure:"port" yaml:"port"`
	Username        string `mapstructure:"username" yaml:"username"`
	TLS             bool   `mapstructure:"tls" yaml:"tls"`
	Mailbox         string `mapstructure:"mailbox" yaml:"mailbox"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// NativeNotifications controls whether urgent messages attempt a
	// desktop notification in addition to the in-app toast.
	NativeNotifications bool `mapstructure:"native_notifications" yaml:"native_notifications"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend BackendConfig     `mapstructure:"backend" yaml:"backend"`
	Email   EmailBridgeConfig `mapstructure:"email" yaml:"email"`
	Display DisplayConfig     `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/comms-center/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "comms-center", "config.yaml")
}

// DefaultCachePath returns the default path for the local message cache.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "cache.db")
	}
	return filepath.Join(home, ".config", "comms-center", "cache.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			PollIntervalSec: 30,
		},
		Email: EmailBridgeConfig{
			Mailbox:         "INBOX",
			PollIntervalSec: 300,
		},
		Display: DisplayConfig{
			Theme:               "default",
			NativeNotifications: true,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("backend.poll_interval_sec", 30)
	v.SetDefault("email.mailbox", "INBOX")
	v.SetDefault("email.poll_interval_sec", 300)
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.native_notifications", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Backend.PollIntervalSec <= 0 {
		cfg.Backend.PollIntervalSec = 30
	}
	if cfg.Email.PollIntervalSec <= 0 {
		cfg.Email.PollIntervalSec = 300
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("email", cfg.Email)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
