package app

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/tacogips/stackzip/internal/debug"
	"github.com/tacogips/stackzip/internal/template/generator"
)

// ExtractOptions configures writing a prepared file set to a directory.
type ExtractOptions struct {
	// Dir is the destination directory.
	Dir string
	// Overwrite replaces existing files instead of skipping them.
	Overwrite bool
	// PreserveExecutable keeps executable bits from the upstream archive.
	PreserveExecutable bool
	// Fs is the destination filesystem (nil = OS filesystem).
	Fs afero.Fs
}

// Extract writes prepared to a directory instead of an archive.
func (p *Pipeline) Extract(prepared *Prepared, opts ExtractOptions) (*generator.ExtractResult, error) {
	if err := ValidateOutputDir(opts.Dir); err != nil {
		return nil, NewAppError(WriteFailed, "invalid output directory", err)
	}
	debug.Debug("[app] Extracting %d files to %s", len(prepared.Files), opts.Dir)

	w := generator.NewDirWriter(opts.Fs, opts.Overwrite, opts.PreserveExecutable)
	result, err := w.Extract(opts.Dir, prepared.Files)
	if err != nil {
		return result, NewAppError(WriteFailed, "failed to extract templates", err)
	}
	return result, nil
}

// ValidateOutputDir validates that the output directory path is safe.
func ValidateOutputDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return fmt.Errorf("output directory cannot contain '..'")
		}
	}
	return nil
}
