package model

import (
	"io/fs"
	"time"
)

// EntryKind distinguishes file entries from directory markers in an archive.
type EntryKind int

const (
	// EntryFile is a regular file with content.
	EntryFile EntryKind = iota
	// EntryDirectory is a folder marker without content.
	EntryDirectory
)

// String returns the string representation of the entry kind.
func (k EntryKind) String() string {
	switch k {
	case EntryFile:
		return "File"
	case EntryDirectory:
		return "Directory"
	default:
		return "Unknown"
	}
}

// ArchiveEntry is one element enumerated from an upstream archive.
type ArchiveEntry struct {
	// Path is the slash-separated path inside the archive.
	Path string
	// Kind is File or Directory.
	Kind EntryKind
	// SizeHint is the uncompressed size declared by the archive (0 if unknown).
	SizeHint int64
	// Modified is the modification time recorded in the archive.
	Modified time.Time
	// Mode is the file mode recorded in the archive.
	Mode fs.FileMode
}

// IsFile reports whether the entry carries file content.
func (e ArchiveEntry) IsFile() bool {
	return e.Kind == EntryFile
}

// ExtractedFile is a file selected from a template subtree.
type ExtractedFile struct {
	// RelativePath is the path relative to the template root.
	RelativePath string
	// Content is the uncompressed file content.
	Content []byte
	// Modified is carried over from the archive entry.
	Modified time.Time
	// Mode is carried over from the archive entry.
	Mode fs.FileMode
}

// AssembledFile is one entry of the output archive.
type AssembledFile struct {
	// OutputPath is the path written to the output archive.
	OutputPath string
	// Content is the file content.
	Content []byte
	// Modified is the timestamp written to the output archive.
	Modified time.Time
	// Mode is the file mode written to the output archive.
	Mode fs.FileMode
}

// AssembledFileSet is the ordered list of files making up the output archive.
type AssembledFileSet []AssembledFile

// Paths returns the output paths in order.
func (s AssembledFileSet) Paths() []string {
	paths := make([]string, len(s))
	for i, f := range s {
		paths[i] = f.OutputPath
	}
	return paths
}

// TotalBytes returns the sum of all content lengths.
func (s AssembledFileSet) TotalBytes() int64 {
	var total int64
	for _, f := range s {
		total += int64(len(f.Content))
	}
	return total
}
