package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-github/v67/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGitHubServer serves the zipball redirect endpoint under prefix and the
// archive download it redirects to.
func newGitHubServer(t *testing.T, prefix string) (*httptest.Server, *string) {
	t.Helper()
	var gotAuth string
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc(prefix+"/repos/owner/repo/zipball/v1.0.0", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Location", server.URL+"/codeload/owner/repo/zip/v1.0.0")
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc(prefix+"/repos/owner/private/zipball/main", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/codeload/owner/repo/zip/v1.0.0", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("PK-zipball"))
	})
	return server, &gotAuth
}

func TestGitHubFetcher_Fetch(t *testing.T) {
	server, _ := newGitHubServer(t, "")

	client := github.NewClient(nil)
	baseURL, err := client.BaseURL.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	f, err := NewGitHubFetcher(Repository{"owner", "repo", "v1.0.0"}, nil, WithGitHubClient(client))
	require.NoError(t, err)

	a, err := f.Fetch(context.Background())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "PK-zipball", readAll(t, a))
	assert.Equal(t, "github.com/owner/repo@v1.0.0", a.Location)
	assert.Equal(t, "github", f.Name())
}

func TestGitHubFetcher_EnterpriseWithToken(t *testing.T) {
	server, gotAuth := newGitHubServer(t, "/api/v3")

	f, err := NewGitHubFetcher(Repository{"owner", "repo", "v1.0.0"}, nil,
		WithAPIURL(server.URL), WithToken("ghp_test"), WithTimeout(5*time.Second))
	require.NoError(t, err)

	a, err := f.Fetch(context.Background())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "PK-zipball", readAll(t, a))
	assert.Equal(t, "Bearer ghp_test", *gotAuth)
}

func TestGitHubFetcher_NotFound(t *testing.T) {
	server, _ := newGitHubServer(t, "/api/v3")

	f, err := NewGitHubFetcher(Repository{"owner", "private", "main"}, nil, WithAPIURL(server.URL))
	require.NoError(t, err)

	_, err = f.Fetch(context.Background())
	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr), "got %v", err)
	assert.Equal(t, ProviderNotFound, provErr.Type)
}

func TestNewGitHubFetcher_NilClient(t *testing.T) {
	_, err := NewGitHubFetcher(Repository{"o", "r", "main"}, nil, WithGitHubClient(nil))
	assert.Error(t, err)
}
