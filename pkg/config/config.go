// Package config provides YAML-based configuration loading for fbbridge.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	// AppName is used in log fields and as the default UI peer id prefix
	AppName string `mapstructure:"app_name"`

	// Log holds logging configuration
	Log LogConfig `mapstructure:"log"`

	// Transport selects the channel link between host and UI
	Transport TransportConfig `mapstructure:"transport"`

	// Net holds dial retry options used by the UI side
	Net NetConfig `mapstructure:"net"`

	// Host configures the host-side collaborators
	Host HostConfig `mapstructure:"host"`

	// Debug configures the optional metrics/health HTTP listener
	Debug DebugConfig `mapstructure:"debug"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: list of outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	// Rotation controls file rotation when writing to files
	Rotation RotationConfig `mapstructure:"rotation"`
	// Development toggles development-friendly logging options
	Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// DebugConfig enables the gin debug server when Listen is set.
type DebugConfig struct {
	Listen string `mapstructure:"listen"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		AppName: "fbbridge",
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			Outputs:     []string{"stderr"},
			Development: true,
			Rotation: RotationConfig{
				Enable:     false,
				Filename:   "logs/fbbridge.log",
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Transport: TransportConfig{
			Kind:   "tcp",
			Listen: []string{"127.0.0.1:7341"},
			Dial:   "127.0.0.1:7341",
			Format: "json",
		},
		Net: NetConfig{DialBackoffInitialMS: 500, DialBackoffMaxMS: 30000, DialBackoffJitterMS: 100},
		Host: HostConfig{
			FirebaseBinary: "firebase",
			Emulators: EmulatorsConfig{
				StartTimeoutMS: 120000,
				StopTimeoutMS:  30000,
				ExportDir:      ".emulator-data",
			},
			ChannelsTTLMS: 60000,
		},
	}
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment overrides.
// Environment variables use the prefix FBBRIDGE and `.`/`-` are replaced with `_`.
// Example: FBBRIDGE_LOG_LEVEL=debug
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FBBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults for viper so env-only configs work
	v.SetDefault("app_name", cfg.AppName)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("transport.kind", cfg.Transport.Kind)
	v.SetDefault("transport.listen", cfg.Transport.Listen)
	v.SetDefault("transport.dial", cfg.Transport.Dial)
	v.SetDefault("transport.format", cfg.Transport.Format)
	v.SetDefault("transport.compress", cfg.Transport.Compress)
	v.SetDefault("net.dial_backoff_initial_ms", cfg.Net.DialBackoffInitialMS)
	v.SetDefault("net.dial_backoff_max_ms", cfg.Net.DialBackoffMaxMS)
	v.SetDefault("net.dial_backoff_jitter_ms", cfg.Net.DialBackoffJitterMS)
	v.SetDefault("host.monospace", cfg.Host.Monospace)
	v.SetDefault("host.project_dir", cfg.Host.ProjectDir)
	v.SetDefault("host.workspace_folders", cfg.Host.WorkspaceFolders)
	v.SetDefault("host.firebase_binary", cfg.Host.FirebaseBinary)
	v.SetDefault("host.users", cfg.Host.Users)
	v.SetDefault("host.channels_ttl_ms", cfg.Host.ChannelsTTLMS)
	v.SetDefault("host.emulators.start_timeout_ms", cfg.Host.Emulators.StartTimeoutMS)
	v.SetDefault("host.emulators.stop_timeout_ms", cfg.Host.Emulators.StopTimeoutMS)
	v.SetDefault("host.emulators.export_dir", cfg.Host.Emulators.ExportDir)
	v.SetDefault("host.emulators.extra_args", cfg.Host.Emulators.ExtraArgs)
	v.SetDefault("host.deploy.extra_args", cfg.Host.Deploy.ExtraArgs)
	v.SetDefault("debug.listen", cfg.Debug.Listen)

	// Choose config file
	if path == "" {
		if envPath := os.Getenv("FBBRIDGE_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fbbridge")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".fbbridge"))
		}
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var viperConfigFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &viperConfigFileNotFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	lvl := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch lvl {
	case "debug", "info", "warn", "warning", "error":
		// ok
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}

	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}
	if strings.TrimSpace(c.AppName) == "" {
		c.AppName = "fbbridge"
	}

	c.Transport.Kind = strings.ToLower(strings.TrimSpace(c.Transport.Kind))
	if c.Transport.Kind == "" {
		return errors.New("transport.kind is required")
	}
	c.Transport.Format = strings.ToLower(strings.TrimSpace(c.Transport.Format))
	switch c.Transport.Format {
	case "", "json", "cbor", "proto", "protobuf":
	default:
		return fmt.Errorf("invalid transport.format: %q", c.Transport.Format)
	}

	for i, u := range c.Host.Users {
		if strings.TrimSpace(u.Email) == "" {
			return fmt.Errorf("host.users[%d]: email is required", i)
		}
	}
	if c.Host.FirebaseBinary == "" {
		c.Host.FirebaseBinary = "firebase"
	}
	return nil
}
