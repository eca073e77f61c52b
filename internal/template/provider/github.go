package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v67/github"

	"github.com/tacogips/stackzip/internal/debug"
)

const publicAPIURL = "https://api.github.com"

// GitHubFetcher resolves the repository zipball through the GitHub REST API
// and downloads it. Unlike HTTPFetcher it works with GitHub Enterprise and
// with private repositories when a token is configured.
type GitHubFetcher struct {
	client     *github.Client
	httpClient *http.Client
	repo       Repository
	spool      *Spooler
	timeout    time.Duration
}

type githubConfig struct {
	client  *github.Client
	token   string
	apiURL  string
	timeout time.Duration
}

// GitHubOption configures a GitHubFetcher.
type GitHubOption func(*githubConfig) error

// WithGitHubClient uses a preconfigured go-github client.
func WithGitHubClient(client *github.Client) GitHubOption {
	return func(cfg *githubConfig) error {
		if client == nil {
			return errors.New("client cannot be nil")
		}
		cfg.client = client
		return nil
	}
}

// WithToken authenticates API requests.
func WithToken(token string) GitHubOption {
	return func(cfg *githubConfig) error {
		cfg.token = token
		return nil
	}
}

// WithAPIURL points the client at a GitHub Enterprise API.
func WithAPIURL(apiURL string) GitHubOption {
	return func(cfg *githubConfig) error {
		cfg.apiURL = apiURL
		return nil
	}
}

// WithTimeout bounds every request made by the fetcher.
func WithTimeout(d time.Duration) GitHubOption {
	return func(cfg *githubConfig) error {
		cfg.timeout = d
		return nil
	}
}

// NewGitHubFetcher creates a fetcher for repo.
func NewGitHubFetcher(repo Repository, spool *Spooler, opts ...GitHubOption) (*GitHubFetcher, error) {
	cfg := &githubConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if spool == nil {
		spool = NewMemorySpooler(0)
	}

	httpClient := &http.Client{Timeout: cfg.timeout}
	client := cfg.client
	if client == nil {
		client = github.NewClient(httpClient)
		if cfg.token != "" {
			client = client.WithAuthToken(cfg.token)
		}
		if apiURL := strings.TrimSuffix(cfg.apiURL, "/"); apiURL != "" && apiURL != publicAPIURL {
			enterprise, err := client.WithEnterpriseURLs(apiURL, apiURL)
			if err != nil {
				return nil, NewInvalidURLError("github", cfg.apiURL, err)
			}
			client = enterprise
		}
	}

	return &GitHubFetcher{
		client:     client,
		httpClient: httpClient,
		repo:       repo,
		spool:      spool,
		timeout:    cfg.timeout,
	}, nil
}

// Name returns the provider name.
func (f *GitHubFetcher) Name() string {
	return "github"
}

// Location returns the repository reference.
func (f *GitHubFetcher) Location() string {
	return "github.com/" + f.repo.String()
}

// Fetch resolves the zipball link and downloads it.
func (f *GitHubFetcher) Fetch(ctx context.Context) (*Archive, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	debug.Debug("[github] Resolving archive link for %s", f.repo)

	link, resp, err := f.client.Repositories.GetArchiveLink(ctx, f.repo.Owner, f.repo.Repo,
		github.Zipball, &github.RepositoryContentGetOptions{Ref: f.repo.Ref}, 1)
	if err != nil {
		return nil, f.wrapError(err, resp)
	}
	debug.Debug("[github] Archive link resolved: %s", link.Redacted())

	archive, err := download(ctx, f.httpClient, f.Name(), link.String(), "", f.spool)
	if err != nil {
		return nil, err
	}
	archive.Location = f.Location()
	return archive, nil
}

// wrapError maps go-github failures onto provider error types.
func (f *GitHubFetcher) wrapError(err error, resp *github.Response) error {
	statusCode := 0
	if resp != nil && resp.Response != nil {
		statusCode = resp.StatusCode
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		statusCode = ghErr.Response.StatusCode
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return NewFetchError(f.Name(), f.Location(),
			fmt.Errorf("rate limit exceeded, resets at %s: %w", rateErr.Rate.Reset.Time.Format(time.RFC3339), err))
	}

	if statusCode != 0 {
		if statusErr := checkStatus(f.Name(), f.Location(), statusCode); statusErr != nil {
			var provErr *ProviderError
			if errors.As(statusErr, &provErr) && provErr.Cause == nil {
				provErr.Cause = err
			}
			return statusErr
		}
	}
	return classifyTransportError(f.Name(), f.Location(), err)
}
