package provider

import (
	"context"
	"io"
	"sync"
)

// Fetcher retrieves the upstream template archive.
type Fetcher interface {
	// Fetch downloads the archive. The caller must Close the result.
	Fetch(ctx context.Context) (*Archive, error)

	// Name returns the provider name (e.g., "http", "github", "file").
	Name() string

	// Location returns a human-readable description of where the archive comes from.
	Location() string
}

// Archive is a fetched upstream archive held in memory or in a spool file.
type Archive struct {
	io.ReaderAt
	// Size is the archive length in bytes.
	Size int64
	// Location is where the archive was fetched from.
	Location string

	once    sync.Once
	release func() error
	err     error
}

// NewArchive wraps r. release, if non-nil, is called once by Close.
func NewArchive(r io.ReaderAt, size int64, location string, release func() error) *Archive {
	return &Archive{ReaderAt: r, Size: size, Location: location, release: release}
}

// Close releases any resources backing the archive. It is safe to call
// more than once.
func (a *Archive) Close() error {
	if a == nil {
		return nil
	}
	a.once.Do(func() {
		if a.release != nil {
			a.err = a.release()
		}
	})
	return a.err
}
