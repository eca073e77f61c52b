package generator

import (
	"context"
	"fmt"

	"github.com/tacogips/stackzip/internal/debug"
	"github.com/tacogips/stackzip/internal/progress"
	"github.com/tacogips/stackzip/internal/template/model"
)

// Progress range covered by extraction; fetching precedes it and packaging
// follows it.
const (
	extractStartPercent = 30
	extractEndPercent   = 70
)

// Assembler turns a source archive and a list of template names into the
// file set of the output archive.
type Assembler struct {
	ignore   []string
	reporter *progress.Reporter
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithIgnorePatterns drops files matching any of the glob patterns.
func WithIgnorePatterns(patterns []string) AssemblerOption {
	return func(a *Assembler) {
		a.ignore = append([]string(nil), patterns...)
	}
}

// WithReporter attaches a progress reporter. A nil reporter is allowed.
func WithReporter(r *progress.Reporter) AssemblerOption {
	return func(a *Assembler) {
		a.reporter = r
	}
}

// NewAssembler creates an Assembler.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble selects each named template from src in the order given.
//
// With a single name the output paths are the template-relative paths.
// With several names every path is prefixed with "<name>/", which keeps
// paths unique even when templates share internal file names.
//
// Any failure aborts the whole assembly; no partial file set is returned.
func (a *Assembler) Assemble(ctx context.Context, src Source, names []model.TemplateName) (model.AssembledFileSet, error) {
	if len(names) == 0 {
		return nil, newGeneratorError(GeneratorTemplateNotFound, "no templates requested", "", "", nil)
	}

	root := RootFolder(src.Entries())
	combined := len(names) > 1
	debug.Debug("[generator] Assembling %d template(s) from root %q (combined: %v)", len(names), root, combined)

	var out model.AssembledFileSet
	seen := make(map[string]model.TemplateName)

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, newGeneratorError(GeneratorCanceled, "assembly canceled", string(name), "", err)
		}

		a.reporter.Report(progress.PhaseExtracting, stepPercent(i, len(names)),
			fmt.Sprintf("extracting %s", name))

		files, err := Select(src, TemplatePrefix(root, name), name, a.ignore)
		if err != nil {
			return nil, err
		}

		for _, f := range files {
			outPath := f.RelativePath
			if combined {
				outPath = string(name) + "/" + f.RelativePath
			}
			if owner, dup := seen[outPath]; dup {
				return nil, newGeneratorError(GeneratorPathError,
					fmt.Sprintf("duplicate output path (already provided by %s)", owner), string(name), outPath, nil)
			}
			seen[outPath] = name
			out = append(out, model.AssembledFile{
				OutputPath: outPath,
				Content:    f.Content,
				Modified:   f.Modified,
				Mode:       f.Mode,
			})
		}
	}

	a.reporter.Report(progress.PhaseExtracting, extractEndPercent,
		fmt.Sprintf("extracted %d files", len(out)))
	debug.Debug("[generator] Assembled %d files (%d bytes)", len(out), out.TotalBytes())
	return out, nil
}

func stepPercent(i, n int) int {
	return extractStartPercent + (extractEndPercent-extractStartPercent)*i/n
}
