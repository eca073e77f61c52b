package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/tacogips/stackzip/internal/debug"
	"github.com/tacogips/stackzip/internal/version"
)

// HTTPFetcher downloads an archive from a fixed URL.
type HTTPFetcher struct {
	// HTTPClient is the HTTP client used for the download.
	HTTPClient *http.Client
	// URL is the archive location.
	URL string
	// Token is an optional GitHub token sent as an Authorization header.
	Token string

	spool *Spooler
}

// NewHTTPFetcher creates a fetcher for archiveURL.
func NewHTTPFetcher(archiveURL string, timeout time.Duration, spool *Spooler) *HTTPFetcher {
	if spool == nil {
		spool = NewMemorySpooler(0)
	}
	return &HTTPFetcher{
		HTTPClient: &http.Client{Timeout: timeout},
		URL:        archiveURL,
		spool:      spool,
	}
}

// Name returns the provider name.
func (f *HTTPFetcher) Name() string {
	return "http"
}

// Location returns the archive URL.
func (f *HTTPFetcher) Location() string {
	return f.URL
}

// Fetch downloads the archive.
func (f *HTTPFetcher) Fetch(ctx context.Context) (*Archive, error) {
	debug.Debug("[http] Fetching archive: %s", f.URL)
	return download(ctx, f.HTTPClient, f.Name(), f.URL, f.Token, f.spool)
}

// download GETs archiveURL and spools the body. Shared by every remote fetcher.
func download(ctx context.Context, client *http.Client, provider, archiveURL, token string, spool *Spooler) (*Archive, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, NewInvalidURLError(provider, archiveURL, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}
	req.Header.Set("User-Agent", "stackzip/"+version.Version)
	req.Header.Set("Accept", "application/zip, application/octet-stream")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, classifyTransportError(provider, archiveURL, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(provider, archiveURL, resp.StatusCode); err != nil {
		return nil, err
	}
	if limit := spool.MaxBytes(); limit > 0 && resp.ContentLength > limit {
		return nil, NewTooLargeError(provider, archiveURL, limit)
	}

	archive, err := spool.Spool(resp.Body, provider, archiveURL)
	if err != nil {
		var provErr *ProviderError
		if errors.As(err, &provErr) && provErr.Cause != nil {
			if timeoutErr := classifyTransportError(provider, archiveURL, provErr.Cause); timeoutErr.Type == ProviderTimeout {
				return nil, timeoutErr
			}
		}
		return nil, err
	}
	debug.Debug("[%s] Downloaded %d bytes in %s", provider, archive.Size, time.Since(start).Round(time.Millisecond))
	return archive, nil
}

func checkStatus(provider, archiveURL string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return NewNotFoundError(provider, archiveURL)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return NewAuthError(provider, archiveURL)
	default:
		return NewFetchError(provider, archiveURL, fmt.Errorf("unexpected status code: %d", status))
	}
}

func classifyTransportError(provider, archiveURL string, err error) *ProviderError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		timeoutErr := NewTimeoutError(provider, archiveURL)
		timeoutErr.Cause = err
		return timeoutErr
	}
	return NewFetchError(provider, archiveURL, err)
}
