package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// templateNamePattern matches a single top-level folder name.
var templateNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Validate validates the configuration.
func Validate(config *Config) error {
	if config == nil {
		return NewConfigError(ConfigValidationFailed, "", "configuration cannot be nil")
	}
	if err := validateServer(config.Server); err != nil {
		return err
	}
	if err := validateSource(config.Source); err != nil {
		return err
	}
	if err := validateTemplates(config.Templates); err != nil {
		return err
	}
	if config.Archive.MaxSizeMB < 0 {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "archive.max_size_mb", "max size cannot be negative")
	}
	if config.RateLimit.Enabled {
		if config.RateLimit.Requests < 1 {
			return NewConfigErrorWithField(ConfigValidationFailed, "", "rate_limit.requests", "must allow at least 1 request per window")
		}
		if config.RateLimit.WindowSeconds < 1 {
			return NewConfigErrorWithField(ConfigValidationFailed, "", "rate_limit.window_seconds", "window must be at least 1 second")
		}
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.Port < 1 || s.Port > 65535 {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "server.port",
			fmt.Sprintf("port %d out of range (1-65535)", s.Port))
	}
	if s.MaxBodyBytes <= 0 {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "server.max_body_bytes", "max body size must be positive")
	}
	if s.ReadHeaderTimeout < 0 {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "server.read_header_timeout", "timeout cannot be negative")
	}
	if s.ShutdownTimeout < 0 {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "server.shutdown_timeout", "timeout cannot be negative")
	}
	return nil
}

func validateSource(s SourceConfig) error {
	if s.Timeout < 0 {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "source.timeout", "timeout cannot be negative")
	}

	switch s.Provider {
	case ProviderHTTP:
		if s.URL != "" {
			if err := validateArchiveURL(s.URL); err != nil {
				return NewConfigErrorWithField(ConfigValidationFailed, "", "source.url", err.Error())
			}
			return nil
		}
	case ProviderGitHub:
		if s.APIURL != "" {
			if err := validateArchiveURL(s.APIURL); err != nil {
				return NewConfigErrorWithField(ConfigValidationFailed, "", "source.api_url", err.Error())
			}
		}
	case ProviderFile:
		if strings.TrimSpace(s.URL) == "" {
			return NewConfigErrorWithField(ConfigValidationFailed, "", "source.url", "file provider requires a path to a zip archive")
		}
		return nil
	default:
		return NewConfigErrorWithField(ConfigValidationFailed, "", "source.provider",
			fmt.Sprintf("unknown provider %q (supported: %s, %s, %s)", s.Provider, ProviderHTTP, ProviderGitHub, ProviderFile))
	}

	if strings.TrimSpace(s.Repository) == "" {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "source.repository", "repository is required")
	}
	if strings.TrimSpace(s.Ref) == "" {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "source.ref", "ref is required")
	}
	return nil
}

func validateTemplates(t TemplatesConfig) error {
	if len(t.Available) == 0 {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "templates.available", "at least one template must be available")
	}
	for _, name := range t.Available {
		if !templateNamePattern.MatchString(name) {
			return NewConfigErrorWithField(ConfigValidationFailed, "", "templates.available",
				fmt.Sprintf("invalid template name %q (must be a single folder name)", name))
		}
	}
	return nil
}

// validateArchiveURL checks that u is an absolute http or https URL.
func validateArchiveURL(u string) error {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return fmt.Errorf("invalid URL format: %v", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("unsupported URL scheme %q (supported: https, http)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL has no host: %s", u)
	}
	return nil
}
