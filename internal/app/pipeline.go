package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tacogips/stackzip/internal/archive"
	"github.com/tacogips/stackzip/internal/debug"
	"github.com/tacogips/stackzip/internal/progress"
	"github.com/tacogips/stackzip/internal/template/generator"
	"github.com/tacogips/stackzip/internal/template/model"
	"github.com/tacogips/stackzip/internal/template/provider"
)

// Progress checkpoints for the stages outside template extraction.
const (
	percentValidating = 0
	percentFetching   = 10
	percentFetched    = 30
	percentPackaging  = 70
	percentComplete   = 100
)

// Pipeline turns template names into a ZIP archive: validate the names,
// fetch the upstream archive, select the template folders and re-archive
// them. A Pipeline holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	catalog *model.Catalog
	fetcher provider.Fetcher
	ignore  []string
	// maxEntry caps the inflated size of one upstream entry (0 = unlimited).
	maxEntry int64
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithMaxEntrySize rejects upstream entries that inflate past n bytes.
func WithMaxEntrySize(n int64) PipelineOption {
	return func(p *Pipeline) {
		p.maxEntry = n
	}
}

// NewPipeline creates a Pipeline. ignore lists glob patterns for files left
// out of generated archives.
func NewPipeline(catalog *model.Catalog, fetcher provider.Fetcher, ignore []string, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		catalog: catalog,
		fetcher: fetcher,
		ignore:  append([]string(nil), ignore...),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Catalog returns the allow-list the pipeline validates against.
func (p *Pipeline) Catalog() *model.Catalog {
	return p.catalog
}

// Source returns the location of the upstream archive.
func (p *Pipeline) Source() string {
	return p.fetcher.Location()
}

// Prepared is an assembled file set ready to be written as an archive.
type Prepared struct {
	// Names are the validated template names in request order.
	Names []model.TemplateName
	// Files are the output entries in archive order.
	Files model.AssembledFileSet
	// Filename is the suggested download name.
	Filename string
	// Source describes where the upstream archive came from.
	Source string

	reporter *progress.Reporter
}

// StreamStats describes a Stream call, including a failed one.
type StreamStats struct {
	// Entries is the number of entries written.
	Entries int
	// Bytes is the number of bytes delivered to the sink.
	Bytes int64
	// Duration is the time spent writing.
	Duration time.Duration
}

// Started reports whether any bytes reached the sink.
func (s StreamStats) Started() bool {
	return s.Bytes > 0
}

// Prepare validates names, fetches the upstream archive and assembles the
// requested templates. Names outside the allow-list fail before any fetch.
// The fetched archive is released before Prepare returns, on every path.
func (p *Pipeline) Prepare(ctx context.Context, names []string, reporter *progress.Reporter) (*Prepared, error) {
	debug.DebugSection("[app] Prepare start")
	debug.DebugValue("[app] Names", names)

	reporter.Report(progress.PhaseValidating, percentValidating, "validating template names")
	if len(names) == 0 {
		return nil, p.fail(reporter, NewInvalidRequestError("Provide an array of template names", nil))
	}
	validated, err := p.catalog.Validate(names)
	if err != nil {
		var nameErr *model.TemplateNameError
		if errors.As(err, &nameErr) {
			return nil, p.fail(reporter, NewInvalidTemplateNameError(nameErr.Name, nameErr.Available))
		}
		return nil, p.fail(reporter, NewInvalidRequestError("invalid template names", err))
	}

	reporter.Report(progress.PhaseFetching, percentFetching, "fetching "+p.fetcher.Location())
	fetched, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return nil, p.fail(reporter, classifyFetchError(ctx, err))
	}
	defer func() {
		if closeErr := fetched.Close(); closeErr != nil {
			debug.Debug("[app] Failed to release upstream archive: %v", closeErr)
		}
	}()
	reporter.Report(progress.PhaseFetching, percentFetched,
		fmt.Sprintf("fetched %d bytes", fetched.Size))

	src, err := archive.Open(fetched, fetched.Size, archive.WithMaxEntrySize(p.maxEntry))
	if err != nil {
		return nil, p.fail(reporter, NewAppError(CorruptArchive, "Upstream archive is not a valid ZIP", err))
	}
	debug.DebugValue("[app] Upstream entries", len(src.Entries()))

	assembler := generator.NewAssembler(
		generator.WithIgnorePatterns(p.ignore),
		generator.WithReporter(reporter),
	)
	files, err := assembler.Assemble(ctx, src, validated)
	if err != nil {
		return nil, p.fail(reporter, classifyAssembleError(ctx, err))
	}

	prepared := &Prepared{
		Names:    validated,
		Files:    files,
		Filename: ArchiveFilename(validated),
		Source:   fetched.Location,
		reporter: reporter,
	}
	debug.Debug("[app] Prepared %s: %d files, %d bytes", prepared.Filename, len(files), files.TotalBytes())
	return prepared, nil
}

// Stream writes prepared as a ZIP archive to w. Entries are flushed as they
// are written unless archive.WithoutFlush is passed. On failure the
// returned stats tell whether partial output already reached w.
func (p *Pipeline) Stream(ctx context.Context, prepared *Prepared, w io.Writer, opts ...archive.Option) (StreamStats, error) {
	start := time.Now()
	reporter := prepared.reporter
	zw := archive.NewWriter(w, opts...)
	stats := func() StreamStats {
		return StreamStats{Entries: zw.Entries(), Bytes: zw.Written(), Duration: time.Since(start)}
	}

	if err := zw.Open(ctx); err != nil {
		return stats(), p.fail(reporter, NewAppError(WriteFailed, "Failed to open archive writer", err))
	}

	total := len(prepared.Files)
	reporter.Report(progress.PhasePackaging, percentPackaging, fmt.Sprintf("packaging %d files", total))
	for i, f := range prepared.Files {
		if err := zw.AppendFile(f); err != nil {
			if !zw.State().Terminal() {
				_ = zw.Abort(err)
			}
			return stats(), p.fail(reporter, classifyWriteError(ctx, err))
		}
		reporter.Report(progress.PhasePackaging,
			percentPackaging+(percentComplete-percentPackaging-1)*(i+1)/max(total, 1), f.OutputPath)
	}

	if err := zw.Finalize(); err != nil {
		return stats(), p.fail(reporter, classifyWriteError(ctx, err))
	}

	s := stats()
	reporter.Report(progress.PhaseComplete, percentComplete,
		fmt.Sprintf("%s ready (%d bytes)", prepared.Filename, s.Bytes))
	debug.Debug("[app] Streamed %s: %d entries, %d bytes in %s", prepared.Filename, s.Entries, s.Bytes, s.Duration)
	return s, nil
}

// Generate runs Prepare and Stream back to back.
func (p *Pipeline) Generate(ctx context.Context, names []string, w io.Writer, reporter *progress.Reporter, opts ...archive.Option) (*Prepared, StreamStats, error) {
	prepared, err := p.Prepare(ctx, names, reporter)
	if err != nil {
		return nil, StreamStats{}, err
	}
	stats, err := p.Stream(ctx, prepared, w, opts...)
	return prepared, stats, err
}

func (p *Pipeline) fail(reporter *progress.Reporter, err *AppError) *AppError {
	debug.Debug("[app] Pipeline failed [%s]: %v", err.Type, err)
	reporter.Report(progress.PhaseFailed, 0, err.Message)
	return err
}

// ArchiveFilename returns the download name: "<name>-template.zip" for a
// single template, "<a>-<b>-stack.zip" for several.
func ArchiveFilename(names []model.TemplateName) string {
	switch len(names) {
	case 0:
		return "templates.zip"
	case 1:
		return string(names[0]) + "-template.zip"
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, "-") + "-stack.zip"
}

func classifyFetchError(ctx context.Context, err error) *AppError {
	if isCanceled(ctx, err) {
		return NewAppError(Canceled, "Request canceled while fetching templates", err)
	}
	return NewAppError(UpstreamUnavailable, "Failed to fetch templates from GitHub", err)
}

func classifyAssembleError(ctx context.Context, err error) *AppError {
	var genErr *generator.GeneratorError
	if errors.As(err, &genErr) {
		switch genErr.Type {
		case generator.GeneratorTemplateNotFound:
			return NewTemplateNotFoundError(genErr.Template, err)
		case generator.GeneratorCanceled:
			return NewAppError(Canceled, "Request canceled while extracting templates", err)
		case generator.GeneratorReadFailed, generator.GeneratorPathError:
			return NewAppError(CorruptArchive, "Upstream archive could not be read", err)
		}
	}
	if isCanceled(ctx, err) {
		return NewAppError(Canceled, "Request canceled while extracting templates", err)
	}
	return NewAppError(CorruptArchive, "Upstream archive could not be read", err)
}

func classifyWriteError(ctx context.Context, err error) *AppError {
	if isCanceled(ctx, err) {
		return NewAppError(Canceled, "Client went away while streaming", err)
	}
	return NewAppError(WriteFailed, "Failed to write archive", err)
}

func isCanceled(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || (ctx.Err() != nil && errors.Is(err, ctx.Err()))
}
