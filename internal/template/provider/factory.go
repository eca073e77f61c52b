package provider

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/tacogips/stackzip/internal/config"
)

// NewSpooler creates the spooler described by cfg.
func NewSpooler(cfg config.ArchiveConfig, fs afero.Fs) *Spooler {
	maxBytes := int64(cfg.MaxSizeMB) << 20
	if cfg.SpoolToDisk {
		return NewDiskSpooler(fs, cfg.TempDir, maxBytes)
	}
	return NewMemorySpooler(maxBytes)
}

// NewFetcher creates the fetcher selected by cfg.Provider. The GitHub API
// fetcher falls back to GITHUB_TOKEN or GH_TOKEN when no token is
// configured; the plain HTTP fetcher only sends an explicitly configured token.
func NewFetcher(cfg config.SourceConfig, spool *Spooler, fs afero.Fs) (Fetcher, error) {
	timeout := time.Duration(cfg.Timeout) * time.Second

	switch cfg.Provider {
	case config.ProviderFile:
		f, err := NewFileFetcher(fs, cfg.URL)
		if err != nil {
			return nil, err
		}
		return f, nil

	case config.ProviderGitHub:
		repo, err := repositoryFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		token := cfg.Token
		if token == "" {
			token = GetGitHubTokenFromEnv()
		}
		f, err := NewGitHubFetcher(*repo, spool,
			WithToken(token), WithAPIURL(cfg.APIURL), WithTimeout(timeout))
		if err != nil {
			return nil, err
		}
		return f, nil

	case config.ProviderHTTP, "":
		archiveURL := cfg.URL
		if archiveURL == "" {
			repo, err := repositoryFromConfig(cfg)
			if err != nil {
				return nil, err
			}
			archiveURL = ArchiveURL(*repo)
		}
		f := NewHTTPFetcher(archiveURL, timeout, spool)
		f.Token = cfg.Token
		return f, nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func repositoryFromConfig(cfg config.SourceConfig) (*Repository, error) {
	repo, err := ParseRepository(cfg.Repository)
	if err != nil {
		return nil, NewInvalidURLError(cfg.Provider, cfg.Repository, err)
	}
	if cfg.Ref != "" {
		repo.Ref = cfg.Ref
	}
	return repo, nil
}

// GetGitHubTokenFromEnv retrieves the GitHub token from environment variables.
// Checks GITHUB_TOKEN first, then falls back to GH_TOKEN.
func GetGitHubTokenFromEnv() string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	return os.Getenv("GH_TOKEN")
}
