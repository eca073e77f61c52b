package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepository(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Repository
		wantErr bool
	}{
		{"owner/repo", "dhuruvandb/zero-config-templates", Repository{"dhuruvandb", "zero-config-templates", "main"}, false},
		{"with ref", "owner/repo@v1.2.0", Repository{"owner", "repo", "v1.2.0"}, false},
		{"https URL", "https://github.com/owner/repo", Repository{"owner", "repo", "main"}, false},
		{"https URL with tree", "https://github.com/owner/repo/tree/develop", Repository{"owner", "repo", "develop"}, false},
		{"trailing slash and .git", "https://github.com/owner/repo.git/", Repository{"owner", "repo", "main"}, false},
		{"ssh URL", "git@github.com:owner/repo.git", Repository{"owner", "repo", "main"}, false},
		{"ssh URL with ref", "git@github.com:owner/repo.git@release", Repository{"owner", "repo", "release"}, false},
		{"github.com prefix", "github.com/owner/repo", Repository{"owner", "repo", "main"}, false},
		{"empty", "  ", Repository{}, true},
		{"single component", "owner", Repository{}, true},
		{"too many components", "owner/repo/extra", Repository{}, true},
		{"empty owner", "/repo", Repository{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRepository(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestArchiveURL(t *testing.T) {
	tests := []struct {
		name string
		repo Repository
		want string
	}{
		{"branch", Repository{"dhuruvandb", "zero-config-templates", "main"}, "https://github.com/dhuruvandb/zero-config-templates/archive/refs/heads/main.zip"},
		{"empty ref", Repository{"o", "r", ""}, "https://github.com/o/r/archive/refs/heads/main.zip"},
		{"semver tag", Repository{"o", "r", "v1.2.0"}, "https://github.com/o/r/archive/refs/tags/v1.2.0.zip"},
		{"prerelease tag", Repository{"o", "r", "2.0.0-rc.1"}, "https://github.com/o/r/archive/refs/tags/2.0.0-rc.1.zip"},
		{"numeric branch", Repository{"o", "r", "2024"}, "https://github.com/o/r/archive/refs/heads/2024.zip"},
		{"commit", Repository{"o", "r", "0123456789abcdef0123456789abcdef01234567"}, "https://github.com/o/r/archive/0123456789abcdef0123456789abcdef01234567.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArchiveURL(tt.repo))
		})
	}
}

func TestParseFileURL(t *testing.T) {
	got, err := ParseFileURL("file:///srv/mirror/templates.zip")
	require.NoError(t, err)
	assert.Equal(t, "/srv/mirror/templates.zip", got)

	got, err = ParseFileURL("./testdata/../templates.zip")
	require.NoError(t, err)
	assert.Equal(t, "templates.zip", got)

	_, err = ParseFileURL("file://remote-host/templates.zip")
	assert.Error(t, err)

	_, err = ParseFileURL("")
	assert.Error(t, err)
}
