// Package archive reads upstream zip archives lazily and writes output zip
// archives incrementally.
package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"

	"github.com/tacogips/stackzip/internal/debug"
	"github.com/tacogips/stackzip/internal/template/model"
)

// maxPreallocBytes bounds the buffer reserved from a declared entry size.
const maxPreallocBytes = 64 << 20

// Reader enumerates the entries of a zip archive. File contents are only
// decompressed when Materialize is called for that entry.
type Reader struct {
	entries  []model.ArchiveEntry
	files    map[string]*zip.File
	maxEntry int64
}

// OpenOption configures a Reader.
type OpenOption func(*Reader)

// WithMaxEntrySize caps the decompressed size of a single entry. Zero or
// negative means unlimited.
func WithMaxEntrySize(n int64) OpenOption {
	return func(r *Reader) {
		r.maxEntry = n
	}
}

// Open reads the central directory of the archive in r.
func Open(r io.ReaderAt, size int64, opts ...OpenOption) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	// ErrInsecurePath still yields a usable reader; unsafe names are rejected
	// by the path filter instead.
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, newArchiveError(ArchiveCorrupt, "failed to open archive", "",
			errors.Wrapf(err, "reading central directory of %d bytes", size))
	}
	zr.RegisterDecompressor(zip.Deflate, flate.NewReader)

	rd := &Reader{
		entries: make([]model.ArchiveEntry, 0, len(zr.File)),
		files:   make(map[string]*zip.File, len(zr.File)),
	}
	for _, opt := range opts {
		opt(rd)
	}
	for _, f := range zr.File {
		if _, dup := rd.files[f.Name]; dup {
			debug.Debug("[archive] Skipping duplicate entry: %s", f.Name)
			continue
		}
		kind := model.EntryFile
		if strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir() {
			kind = model.EntryDirectory
		}
		rd.files[f.Name] = f
		rd.entries = append(rd.entries, model.ArchiveEntry{
			Path:     f.Name,
			Kind:     kind,
			SizeHint: int64(f.UncompressedSize64),
			Modified: f.Modified,
			Mode:     f.Mode(),
		})
	}

	debug.Debug("[archive] Opened archive: %d bytes, %d entries", size, len(rd.entries))
	return rd, nil
}

// OpenBytes opens an archive held in memory.
func OpenBytes(data []byte, opts ...OpenOption) (*Reader, error) {
	return Open(bytes.NewReader(data), int64(len(data)), opts...)
}

// Entries returns the entries in central-directory order.
func (r *Reader) Entries() []model.ArchiveEntry {
	return r.entries
}

// Materialize decompresses and returns the content of a file entry.
func (r *Reader) Materialize(entry model.ArchiveEntry) ([]byte, error) {
	f, ok := r.files[entry.Path]
	if !ok {
		return nil, newArchiveError(ArchiveEntryInvalid, "entry not found in archive", entry.Path, nil)
	}
	if entry.Kind != model.EntryFile {
		return nil, newArchiveError(ArchiveEntryInvalid, "cannot materialize a directory", entry.Path, nil)
	}

	if r.maxEntry > 0 && f.UncompressedSize64 > uint64(r.maxEntry) {
		return nil, newArchiveError(ArchiveCorrupt, "entry exceeds size limit", entry.Path,
			errors.Errorf("declared %d bytes, limit %d", f.UncompressedSize64, r.maxEntry))
	}

	rc, err := f.Open()
	if err != nil {
		return nil, newArchiveError(ArchiveCorrupt, "failed to open entry", entry.Path, errors.Wrap(err, "zip open"))
	}
	defer rc.Close()

	hint := f.UncompressedSize64
	if hint > maxPreallocBytes {
		hint = 0
	}
	var src io.Reader = rc
	if r.maxEntry > 0 {
		src = io.LimitReader(rc, r.maxEntry+1)
	}
	buf := bytes.NewBuffer(make([]byte, 0, int(hint)))
	n, err := io.Copy(buf, src)
	if err != nil {
		return nil, newArchiveError(ArchiveCorrupt, "failed to decompress entry", entry.Path, errors.Wrap(err, "inflate"))
	}
	if r.maxEntry > 0 && n > r.maxEntry {
		return nil, newArchiveError(ArchiveCorrupt, "entry exceeds size limit", entry.Path,
			errors.Errorf("inflated past %d bytes", r.maxEntry))
	}
	return buf.Bytes(), nil
}
