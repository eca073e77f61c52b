package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tacogips/stackzip/internal/debug"
)

// Loader defines the interface for loading configuration files.
type Loader interface {
	// Load loads configuration from the specified file path.
	Load(path string) (*Config, error)
	// LoadOrDefault loads configuration or returns defaults if file doesn't exist.
	LoadOrDefault(path string) (*Config, error)
	// Validate validates the configuration.
	Validate(config *Config) error
}

// ViperLoader implements Loader with viper. YAML and JSON files are
// supported, and every key can be overridden by a STACKZIP_* environment
// variable (server.port -> STACKZIP_SERVER_PORT).
type ViperLoader struct{}

// NewLoader creates a new ViperLoader instance.
func NewLoader() Loader {
	return &ViperLoader{}
}

// Load loads configuration from the specified file path.
func (l *ViperLoader) Load(path string) (*Config, error) {
	return l.load(path, true)
}

// LoadOrDefault loads configuration or returns defaults if file doesn't exist.
// Environment overrides apply in both cases.
func (l *ViperLoader) LoadOrDefault(path string) (*Config, error) {
	cfg, err := l.load(path, true)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Type == ConfigNotFound {
			debug.Debug("[config] No configuration file at %q, using defaults", path)
			return l.load("", false)
		}
		return nil, err
	}
	return cfg, nil
}

func (l *ViperLoader) load(path string, requireFile bool) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if requireFile {
		if path == "" {
			return nil, NewConfigError(ConfigNotFound, path, "no configuration file specified")
		}
		v.SetConfigFile(path)
		if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, NewConfigErrorWithCause(ConfigNotFound, path, "configuration file not found", err)
			}
			return nil, NewConfigErrorWithCause(ConfigInvalid, path, "failed to parse configuration file", err)
		}
		debug.Debug("[config] Loaded configuration file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, NewConfigErrorWithCause(ConfigInvalid, path, "failed to decode configuration", err)
	}
	return &cfg, nil
}

// Validate validates the configuration.
func (l *ViperLoader) Validate(config *Config) error {
	return Validate(config)
}

// Save writes cfg as YAML to path, creating parent directories. An existing
// file is only replaced when overwrite is set.
func Save(path string, cfg *Config, overwrite bool) error {
	cleanPath := filepath.Clean(path)
	if !overwrite {
		if _, err := os.Stat(cleanPath); err == nil {
			return NewConfigError(ConfigInvalid, cleanPath, "configuration file already exists (use --force to overwrite)")
		}
	}

	if dir := filepath.Dir(cleanPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return NewConfigErrorWithCause(ConfigInvalid, cleanPath, "failed to create directory "+dir, err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return NewConfigErrorWithCause(ConfigInvalid, cleanPath, "failed to marshal configuration", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o644); err != nil {
		return NewConfigErrorWithCause(ConfigInvalid, cleanPath, "failed to write configuration file", err)
	}
	return nil
}
