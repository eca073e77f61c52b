package provider

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tacogips/stackzip/internal/debug"
)

// FileFetcher reads an archive from the local filesystem. It serves
// offline development and air-gapped deployments that mirror the
// upstream archive.
type FileFetcher struct {
	fs   afero.Fs
	path string
	// BaseDir is the base directory for resolving relative paths.
	// If empty, uses current working directory.
	BaseDir string
}

// NewFileFetcher creates a fetcher for a file:// URL or path on fs.
// If fs is nil the OS filesystem is used.
func NewFileFetcher(fs afero.Fs, location string) (*FileFetcher, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	path, err := ParseFileURL(location)
	if err != nil {
		return nil, NewInvalidURLError("file", location, err)
	}
	return &FileFetcher{fs: fs, path: path}, nil
}

// Name returns the provider name.
func (f *FileFetcher) Name() string {
	return "file"
}

// Location returns the archive path.
func (f *FileFetcher) Location() string {
	return f.path
}

// Fetch opens the archive. The file stays open until the archive is closed.
func (f *FileFetcher) Fetch(ctx context.Context) (*Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewFetchError(f.Name(), f.path, err)
	}

	path, err := f.resolvePath()
	if err != nil {
		return nil, NewInvalidURLError(f.Name(), f.path, err)
	}
	debug.Debug("[file] Opening archive: %s", path)

	file, err := f.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError(f.Name(), path)
		}
		return nil, NewFetchError(f.Name(), path, err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, NewFetchError(f.Name(), path, err)
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, NewInvalidURLError(f.Name(), path, os.ErrInvalid)
	}

	return NewArchive(file, info.Size(), path, file.Close), nil
}

// resolvePath resolves relative paths against BaseDir or the working directory.
func (f *FileFetcher) resolvePath() (string, error) {
	if filepath.IsAbs(f.path) {
		return filepath.Clean(f.path), nil
	}
	baseDir := f.BaseDir
	if baseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		baseDir = cwd
	}
	return filepath.Join(baseDir, f.path), nil
}
