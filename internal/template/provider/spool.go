package provider

import (
	"bytes"
	"io"

	"github.com/spf13/afero"

	"github.com/tacogips/stackzip/internal/debug"
)

// Spooler holds a downloaded archive body so it can be read at random
// offsets, either in memory or in a temporary file.
type Spooler struct {
	fs       afero.Fs
	dir      string
	toDisk   bool
	maxBytes int64
}

// NewMemorySpooler keeps archives in memory. maxBytes <= 0 means unlimited.
func NewMemorySpooler(maxBytes int64) *Spooler {
	return &Spooler{maxBytes: maxBytes}
}

// NewDiskSpooler writes archives to temporary files in dir on fs. The file
// is removed when the archive is closed. If fs is nil the OS filesystem is used.
func NewDiskSpooler(fs afero.Fs, dir string, maxBytes int64) *Spooler {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Spooler{fs: fs, dir: dir, toDisk: true, maxBytes: maxBytes}
}

// MaxBytes returns the size limit (0 = unlimited).
func (s *Spooler) MaxBytes() int64 {
	if s.maxBytes < 0 {
		return 0
	}
	return s.maxBytes
}

// Spool reads r to the end and returns it as an Archive. provider and
// location label errors.
func (s *Spooler) Spool(r io.Reader, provider, location string) (*Archive, error) {
	limited := r
	if s.maxBytes > 0 {
		limited = io.LimitReader(r, s.maxBytes+1)
	}
	if s.toDisk {
		return s.spoolToDisk(limited, provider, location)
	}

	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, NewFetchError(provider, location, err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, NewTooLargeError(provider, location, s.maxBytes)
	}
	debug.Debug("[provider] Spooled %d bytes in memory", len(data))
	return NewArchive(bytes.NewReader(data), int64(len(data)), location, nil), nil
}

func (s *Spooler) spoolToDisk(r io.Reader, provider, location string) (*Archive, error) {
	f, err := afero.TempFile(s.fs, s.dir, "stackzip-*.zip")
	if err != nil {
		return nil, NewFetchError(provider, location, err)
	}
	name := f.Name()
	discard := func() {
		_ = f.Close()
		_ = s.fs.Remove(name)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		discard()
		return nil, NewFetchError(provider, location, err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		discard()
		return nil, NewTooLargeError(provider, location, s.maxBytes)
	}

	debug.Debug("[provider] Spooled %d bytes to %s", n, name)
	return NewArchive(f, n, location, func() error {
		closeErr := f.Close()
		if err := s.fs.Remove(name); err != nil {
			return err
		}
		debug.Debug("[provider] Removed spool file %s", name)
		return closeErr
	}), nil
}
