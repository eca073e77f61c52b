package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tacogips/stackzip/internal/template/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Source.Provider != ProviderHTTP {
		t.Errorf("Source.Provider = %q, want %q", cfg.Source.Provider, ProviderHTTP)
	}
	if cfg.Source.Repository != "dhuruvandb/zero-config-templates" || cfg.Source.Ref != "main" {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if !reflect.DeepEqual(cfg.Templates.Available, model.DefaultTemplateNames) {
		t.Errorf("Templates.Available = %v", cfg.Templates.Available)
	}
	if cfg.RateLimit.Requests != 5 || cfg.RateLimit.WindowSeconds != 60 {
		t.Errorf("RateLimit = %+v, want 5 per 60s", cfg.RateLimit)
	}
	if cfg.Server.BufferResponses {
		t.Error("streaming should be the default")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default configuration should validate: %v", err)
	}

	// The allow-list must be a copy so callers cannot mutate the package default.
	cfg.Templates.Available[0] = "mutated"
	if model.DefaultTemplateNames[0] == "mutated" {
		t.Error("DefaultConfig shares the allow-list slice with model.DefaultTemplateNames")
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		check    func(t *testing.T, cfg *Config)
	}{
		{
			name:     "yaml overrides and keeps defaults",
			filename: "config.yaml",
			content: `server:
  port: 9090
source:
  ref: v1.2.0
templates:
  available: [react, vue]
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 9090 {
					t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
				}
				if cfg.Source.Ref != "v1.2.0" {
					t.Errorf("Source.Ref = %q", cfg.Source.Ref)
				}
				if !reflect.DeepEqual(cfg.Templates.Available, []string{"react", "vue"}) {
					t.Errorf("Templates.Available = %v", cfg.Templates.Available)
				}
				if cfg.Source.Repository != "dhuruvandb/zero-config-templates" {
					t.Errorf("default repository lost: %q", cfg.Source.Repository)
				}
				if cfg.RateLimit.Requests != 5 {
					t.Errorf("default rate limit lost: %d", cfg.RateLimit.Requests)
				}
			},
		},
		{
			name:     "json file",
			filename: "config.json",
			content:  `{"archive": {"spool_to_disk": true, "max_size_mb": 10}}`,
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Archive.SpoolToDisk || cfg.Archive.MaxSizeMB != 10 {
					t.Errorf("Archive = %+v", cfg.Archive)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.filename)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg, err := NewLoader().Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) || cfgErr.Type != ConfigNotFound {
			t.Fatalf("expected ConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid syntax", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("server: [port: 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := NewLoader().Load(path)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) || cfgErr.Type != ConfigInvalid {
			t.Fatalf("expected ConfigInvalid, got %v", err)
		}
	})
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := NewLoader().LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("LoadOrDefault() error = %v", err)
		}
		assertSameSettings(t, cfg, DefaultConfig())
	})

	t.Run("environment overrides without file", func(t *testing.T) {
		t.Setenv("STACKZIP_SERVER_PORT", "9999")
		t.Setenv("STACKZIP_SOURCE_PROVIDER", "github")
		t.Setenv("STACKZIP_RATE_LIMIT_ENABLED", "false")

		cfg, err := NewLoader().LoadOrDefault("")
		if err != nil {
			t.Fatalf("LoadOrDefault() error = %v", err)
		}
		if cfg.Server.Port != 9999 {
			t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
		}
		if cfg.Source.Provider != ProviderGitHub {
			t.Errorf("Source.Provider = %q", cfg.Source.Provider)
		}
		if cfg.RateLimit.Enabled {
			t.Error("RateLimit.Enabled should be overridden to false")
		}
	})

	t.Run("environment beats file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("source:\n  ref: develop\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("STACKZIP_SOURCE_REF", "release")

		cfg, err := NewLoader().LoadOrDefault(path)
		if err != nil {
			t.Fatalf("LoadOrDefault() error = %v", err)
		}
		if cfg.Source.Ref != "release" {
			t.Errorf("Source.Ref = %q, want release", cfg.Source.Ref)
		}
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	if err := Save(path, DefaultConfig(), false); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	cfg, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() after Save() error = %v", err)
	}
	assertSameSettings(t, cfg, DefaultConfig())

	if err := Save(path, DefaultConfig(), false); err == nil {
		t.Error("Save() should refuse to overwrite without force")
	}
	if err := Save(path, DefaultConfig(), true); err != nil {
		t.Errorf("Save() with overwrite error = %v", err)
	}
}

func assertSameSettings(t *testing.T, got, want *Config) {
	t.Helper()
	if !reflect.DeepEqual(got.Server, want.Server) {
		t.Errorf("Server = %+v, want %+v", got.Server, want.Server)
	}
	if !reflect.DeepEqual(got.Source, want.Source) {
		t.Errorf("Source = %+v, want %+v", got.Source, want.Source)
	}
	if !reflect.DeepEqual(got.Templates.Available, want.Templates.Available) {
		t.Errorf("Templates.Available = %v, want %v", got.Templates.Available, want.Templates.Available)
	}
	if len(got.Templates.IgnorePatterns) != len(want.Templates.IgnorePatterns) {
		t.Errorf("Templates.IgnorePatterns = %v, want %v", got.Templates.IgnorePatterns, want.Templates.IgnorePatterns)
	}
	if got.Archive != want.Archive {
		t.Errorf("Archive = %+v, want %+v", got.Archive, want.Archive)
	}
	if got.RateLimit != want.RateLimit {
		t.Errorf("RateLimit = %+v, want %+v", got.RateLimit, want.RateLimit)
	}
	if got.Output != want.Output {
		t.Errorf("Output = %+v, want %+v", got.Output, want.Output)
	}
}
