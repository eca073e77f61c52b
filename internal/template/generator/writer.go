package generator

import (
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tacogips/stackzip/internal/debug"
	"github.com/tacogips/stackzip/internal/template/model"
)

// ExtractResult contains extraction statistics.
type ExtractResult struct {
	// FilesCreated is the number of new files created.
	FilesCreated int
	// FilesSkipped is the number of files skipped because they already exist.
	FilesSkipped int
	// FilesOverwritten is the number of existing files overwritten.
	FilesOverwritten int
}

// DirWriter writes an assembled file set into a directory tree instead of
// an archive.
type DirWriter struct {
	fs                 afero.Fs
	overwrite          bool
	preserveExecutable bool
}

// NewDirWriter creates a DirWriter on fs. If fs is nil the OS filesystem is used.
func NewDirWriter(fs afero.Fs, overwrite, preserveExecutable bool) *DirWriter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &DirWriter{fs: fs, overwrite: overwrite, preserveExecutable: preserveExecutable}
}

// Extract writes every file of set below dir. Existing files are skipped
// unless the writer was created with overwrite.
func (w *DirWriter) Extract(dir string, set model.AssembledFileSet) (*ExtractResult, error) {
	result := &ExtractResult{}
	for _, f := range set {
		if unsafePathReason(f.OutputPath) != "" {
			return result, newGeneratorError(GeneratorPathError, "unsafe output path", "", f.OutputPath, nil)
		}
		target := filepath.Join(dir, filepath.FromSlash(path.Clean(f.OutputPath)))

		exists, err := afero.Exists(w.fs, target)
		if err != nil {
			return result, newGeneratorError(GeneratorWriteFailed, "failed to stat file", "", target, err)
		}
		if exists && !w.overwrite {
			debug.Debug("[generator] Skipping existing file: %s", target)
			result.FilesSkipped++
			continue
		}

		if err := w.writeFile(target, f.Content, f.Mode); err != nil {
			return result, err
		}
		if exists {
			result.FilesOverwritten++
		} else {
			result.FilesCreated++
		}
	}
	return result, nil
}

// writeFile writes content atomically using a temporary file and rename.
func (w *DirWriter) writeFile(target string, content []byte, mode os.FileMode) error {
	debug.Debug("[generator] Writing file: %s (size: %d bytes, mode: %o)", target, len(content), mode)

	if parent := filepath.Dir(target); parent != "" && parent != "." {
		if err := w.fs.MkdirAll(parent, 0o755); err != nil {
			return newGeneratorError(GeneratorWriteFailed, "failed to create parent directory", "", target, err)
		}
	}

	fileMode := os.FileMode(0o644)
	if w.preserveExecutable && mode.Perm()&0o111 != 0 {
		fileMode = mode.Perm() | 0o600
	}

	tempFile := target + ".tmp"
	f, err := w.fs.OpenFile(tempFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return newGeneratorError(GeneratorWriteFailed, "failed to create temporary file", "", target, err)
	}

	_, err = f.Write(content)
	closeErr := f.Close()
	if err != nil {
		_ = w.fs.Remove(tempFile)
		return newGeneratorError(GeneratorWriteFailed, "failed to write file content", "", target, err)
	}
	if closeErr != nil {
		_ = w.fs.Remove(tempFile)
		return newGeneratorError(GeneratorWriteFailed, "failed to close file", "", target, closeErr)
	}

	if err := w.fs.Rename(tempFile, target); err != nil {
		_ = w.fs.Remove(tempFile)
		return newGeneratorError(GeneratorWriteFailed, "failed to rename temporary file", "", target, err)
	}
	return nil
}
