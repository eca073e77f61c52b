package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tacogips/stackzip/internal/template/model"
)

// EnvPrefix prefixes every environment override, e.g. STACKZIP_SERVER_PORT.
const EnvPrefix = "STACKZIP"

// Provider names accepted in source.provider.
const (
	ProviderHTTP   = "http"
	ProviderGitHub = "github"
	ProviderFile   = "file"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "",
			Port:              8000,
			AllowedOrigins:    []string{"*"},
			MaxBodyBytes:      1 << 20,
			BufferResponses:   false,
			ReadHeaderTimeout: 10,
			ShutdownTimeout:   15,
		},
		Source: SourceConfig{
			Provider:   ProviderHTTP,
			Repository: "dhuruvandb/zero-config-templates",
			Ref:        "main",
			APIURL:     "https://api.github.com",
			Timeout:    30,
		},
		Templates: TemplatesConfig{
			Available:          append([]string(nil), model.DefaultTemplateNames...),
			IgnorePatterns:     []string{},
			PreserveExecutable: true,
		},
		Archive: ArchiveConfig{
			MaxSizeMB:   100,
			SpoolToDisk: false,
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			Requests:      5,
			WindowSeconds: 60,
		},
		Output: OutputConfig{
			Color:   true,
			Verbose: false,
			Quiet:   false,
		},
	}
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "stackzip", "config.yaml")
}

// setDefaults registers every key with v so that environment overrides
// apply even when no configuration file sets the key.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.allowed_origins", cfg.Server.AllowedOrigins)
	v.SetDefault("server.max_body_bytes", cfg.Server.MaxBodyBytes)
	v.SetDefault("server.buffer_responses", cfg.Server.BufferResponses)
	v.SetDefault("server.read_header_timeout", cfg.Server.ReadHeaderTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)

	v.SetDefault("source.provider", cfg.Source.Provider)
	v.SetDefault("source.repository", cfg.Source.Repository)
	v.SetDefault("source.ref", cfg.Source.Ref)
	v.SetDefault("source.url", cfg.Source.URL)
	v.SetDefault("source.api_url", cfg.Source.APIURL)
	v.SetDefault("source.token", cfg.Source.Token)
	v.SetDefault("source.timeout", cfg.Source.Timeout)

	v.SetDefault("templates.available", cfg.Templates.Available)
	v.SetDefault("templates.ignore_patterns", cfg.Templates.IgnorePatterns)
	v.SetDefault("templates.preserve_executable", cfg.Templates.PreserveExecutable)

	v.SetDefault("archive.max_size_mb", cfg.Archive.MaxSizeMB)
	v.SetDefault("archive.spool_to_disk", cfg.Archive.SpoolToDisk)
	v.SetDefault("archive.temp_dir", cfg.Archive.TempDir)

	v.SetDefault("rate_limit.enabled", cfg.RateLimit.Enabled)
	v.SetDefault("rate_limit.requests", cfg.RateLimit.Requests)
	v.SetDefault("rate_limit.window_seconds", cfg.RateLimit.WindowSeconds)

	v.SetDefault("output.color", cfg.Output.Color)
	v.SetDefault("output.verbose", cfg.Output.Verbose)
	v.SetDefault("output.quiet", cfg.Output.Quiet)
}
