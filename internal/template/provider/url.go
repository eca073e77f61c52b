package provider

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultRef is used when a repository reference names no branch or tag.
const DefaultRef = "main"

var commitSHAPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// Repository identifies a GitHub repository at a ref.
type Repository struct {
	Owner string
	Repo  string
	Ref   string
}

// String returns "owner/repo@ref".
func (r Repository) String() string {
	return fmt.Sprintf("%s/%s@%s", r.Owner, r.Repo, r.Ref)
}

// ParseRepository parses a repository reference. Supported formats:
//   - https://github.com/owner/repo
//   - https://github.com/owner/repo/tree/branch
//   - git@github.com:owner/repo.git
//   - github.com/owner/repo
//   - owner/repo
//
// Any of them may end in "@ref". The ref defaults to "main".
func ParseRepository(s string) (*Repository, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("repository cannot be empty")
	}
	s = strings.TrimSpace(s)

	ref := ""
	if i := strings.LastIndex(s, "@"); i > 0 && !strings.HasPrefix(s[i:], "@github.com") {
		s, ref = s[:i], s[i+1:]
	}

	switch {
	case strings.HasPrefix(s, "git@github.com:"):
		s = strings.TrimPrefix(s, "git@github.com:")
	case strings.HasPrefix(s, "https://github.com/"):
		s = strings.TrimPrefix(s, "https://github.com/")
	case strings.HasPrefix(s, "http://github.com/"):
		s = strings.TrimPrefix(s, "http://github.com/")
	case strings.HasPrefix(s, "github.com/"):
		s = strings.TrimPrefix(s, "github.com/")
	}
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/"), ".git")

	if owner, rest, ok := strings.Cut(s, "/tree/"); ok {
		s = owner
		if ref == "" {
			ref, _, _ = strings.Cut(rest, "/")
		}
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid repository format, expected owner/repo: %s", s)
	}
	if parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("owner and repo cannot be empty: %s", s)
	}
	if ref == "" {
		ref = DefaultRef
	}

	return &Repository{Owner: parts[0], Repo: parts[1], Ref: ref}, nil
}

// IsTagRef reports whether ref names a release tag. Refs that parse as a
// semantic version with at least a minor component ("v1.2", "1.2.3-rc.1")
// are tags; anything else is a branch.
func IsTagRef(ref string) bool {
	if !strings.Contains(ref, ".") {
		return false
	}
	_, err := semver.NewVersion(ref)
	return err == nil
}

// ArchiveURL returns the GitHub "download ZIP" URL for a repository:
//
//	https://github.com/<owner>/<repo>/archive/refs/heads/<ref>.zip
//	https://github.com/<owner>/<repo>/archive/refs/tags/<ref>.zip
//	https://github.com/<owner>/<repo>/archive/<sha>.zip
func ArchiveURL(r Repository) string {
	ref := r.Ref
	if ref == "" {
		ref = DefaultRef
	}
	base := fmt.Sprintf("https://github.com/%s/%s/archive", url.PathEscape(r.Owner), url.PathEscape(r.Repo))
	switch {
	case commitSHAPattern.MatchString(ref):
		return fmt.Sprintf("%s/%s.zip", base, ref)
	case IsTagRef(ref):
		return fmt.Sprintf("%s/refs/tags/%s.zip", base, ref)
	default:
		return fmt.Sprintf("%s/refs/heads/%s.zip", base, ref)
	}
}

// ParseFileURL converts a file:// URL or plain path to a filesystem path.
func ParseFileURL(s string) (string, error) {
	if !strings.HasPrefix(s, "file://") {
		if s == "" {
			return "", fmt.Errorf("path cannot be empty")
		}
		return filepath.Clean(s), nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("file URL must not name a remote host: %s", s)
	}
	if u.Path == "" {
		return "", fmt.Errorf("file URL has no path: %s", s)
	}
	return filepath.FromSlash(u.Path), nil
}
