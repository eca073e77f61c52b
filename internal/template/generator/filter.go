package generator

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/tacogips/stackzip/internal/debug"
	"github.com/tacogips/stackzip/internal/template/model"
)

// Source is a parsed archive that can list its entries and produce the
// bytes of a file entry on demand.
type Source interface {
	Entries() []model.ArchiveEntry
	Materialize(entry model.ArchiveEntry) ([]byte, error)
}

// RootFolder returns the single top-level folder of a source archive,
// taken from the first entry ("repo-main/..." gives "repo-main").
// An empty entry list yields "".
func RootFolder(entries []model.ArchiveEntry) string {
	if len(entries) == 0 {
		return ""
	}
	root, _, _ := strings.Cut(entries[0].Path, "/")
	return root
}

// TemplatePrefix returns the archive path prefix under which a template's
// files live.
func TemplatePrefix(root string, name model.TemplateName) string {
	if root == "" {
		return string(name) + "/"
	}
	return root + "/" + string(name) + "/"
}

// Select extracts every file entry below prefix, stripping the prefix from
// each path. Directory entries count as matches but produce no output, so a
// template holding only empty folders yields an empty, successful result.
// Files matching an ignore pattern are dropped. Archive order is preserved.
func Select(src Source, prefix string, name model.TemplateName, ignore []string) ([]model.ExtractedFile, error) {
	var files []model.ExtractedFile
	matched := 0

	for _, entry := range src.Entries() {
		if !strings.HasPrefix(entry.Path, prefix) {
			continue
		}
		matched++
		if !entry.IsFile() {
			continue
		}

		rel := strings.TrimPrefix(entry.Path, prefix)
		if reason := unsafePathReason(rel); reason != "" {
			return nil, newGeneratorError(GeneratorPathError, reason, string(name), entry.Path, nil)
		}
		if ShouldIgnoreFile(rel, ignore) {
			continue
		}

		content, err := src.Materialize(entry)
		if err != nil {
			return nil, newGeneratorError(GeneratorReadFailed, "failed to read archive entry", string(name), entry.Path, err)
		}

		files = append(files, model.ExtractedFile{
			RelativePath: rel,
			Content:      content,
			Modified:     entry.Modified,
			Mode:         entry.Mode,
		})
	}

	if matched == 0 {
		return nil, newGeneratorError(GeneratorTemplateNotFound,
			"template \""+string(name)+"\" not found", string(name), "", nil)
	}

	debug.Debug("[generator] Selected %d files for %s (prefix: %s)", len(files), name, prefix)
	return files, nil
}

// ShouldIgnoreFile checks if a file should be ignored based on ignore patterns.
func ShouldIgnoreFile(path string, ignorePatterns []string) bool {
	for _, pattern := range ignorePatterns {
		if MatchesPattern(path, pattern) {
			debug.Debug("[generator] Ignoring file: %s (matched pattern: %s)", path, pattern)
			return true
		}
	}
	return false
}

// MatchesPattern checks if a file path matches a glob pattern. "*" stays
// within one path segment and "**" spans segments. Patterns without a
// slash are also tried against the base name, so "*.log" matches
// "logs/app.log". Invalid patterns match nothing.
func MatchesPattern(path, pattern string) bool {
	path = filepath.ToSlash(path)
	pattern = filepath.ToSlash(pattern)

	g, err := glob.Compile(pattern, '/')
	if err != nil {
		debug.Debug("[generator] Invalid ignore pattern %q: %v", pattern, err)
		return false
	}
	if g.Match(path) {
		return true
	}
	if !strings.Contains(pattern, "/") {
		return g.Match(filepath.Base(path))
	}
	return false
}

// unsafePathReason returns why rel cannot be used as an output path, or ""
// when it is safe.
func unsafePathReason(rel string) string {
	switch {
	case rel == "":
		return "empty relative path"
	case strings.HasPrefix(rel, "/"):
		return "absolute path in archive"
	case rel == "..", strings.HasPrefix(rel, "../"), strings.Contains(rel, "/../"), strings.HasSuffix(rel, "/.."):
		return "path traversal in archive"
	case path.Clean(rel) != rel:
		return "path is not clean"
	}
	return ""
}
