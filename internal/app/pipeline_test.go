package app

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacogips/stackzip/internal/archive"
	"github.com/tacogips/stackzip/internal/archive/archivetest"
	"github.com/tacogips/stackzip/internal/progress"
	"github.com/tacogips/stackzip/internal/template/model"
	"github.com/tacogips/stackzip/internal/template/provider"
)

// countingFetcher serves a fixed archive and records how often it was asked.
type countingFetcher struct {
	data   []byte
	err    error
	calls  int
	closed int
}

func (f *countingFetcher) Name() string     { return "fake" }
func (f *countingFetcher) Location() string { return "fake://templates.zip" }

func (f *countingFetcher) Fetch(ctx context.Context) (*provider.Archive, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return provider.NewArchive(bytes.NewReader(f.data), int64(len(f.data)), f.Location(), func() error {
		f.closed++
		return nil
	}), nil
}

func newTestPipeline(t *testing.T) (*Pipeline, *countingFetcher) {
	t.Helper()
	f := &countingFetcher{data: archivetest.Templates(t)}
	return NewPipeline(model.NewCatalog(model.DefaultTemplateNames), f, nil), f
}

func requireAppError(t *testing.T, err error, want AppErrorType) *AppError {
	t.Helper()
	var appErr *AppError
	require.True(t, errors.As(err, &appErr), "expected *AppError, got %v", err)
	require.Equal(t, want, appErr.Type, "error: %v", err)
	return appErr
}

func TestPrepare_InvalidNameNeverFetches(t *testing.T) {
	p, f := newTestPipeline(t)

	_, err := p.Prepare(context.Background(), []string{"react", "vue"}, nil)
	appErr := requireAppError(t, err, InvalidTemplateName)
	assert.Equal(t, "vue", appErr.Template)
	assert.Equal(t, model.DefaultTemplateNames, appErr.Available)
	assert.Zero(t, f.calls)
}

func TestPrepare_EmptyNames(t *testing.T) {
	p, f := newTestPipeline(t)
	_, err := p.Prepare(context.Background(), nil, nil)
	requireAppError(t, err, InvalidRequest)
	assert.Zero(t, f.calls)
}

func TestPrepare_SingleTemplate(t *testing.T) {
	p, f := newTestPipeline(t)

	prepared, err := p.Prepare(context.Background(), []string{"nestjs"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, 1, f.closed, "upstream archive must be released")
	assert.Equal(t, "nestjs-template.zip", prepared.Filename)

	paths := prepared.Files.Paths()
	sort.Strings(paths)
	assert.Equal(t, []string{"package.json", "src/app.module.ts", "src/main.ts"}, paths)
}

func TestPrepare_MissingTemplateAbortsBatch(t *testing.T) {
	p, f := newTestPipeline(t)

	_, err := p.Prepare(context.Background(), []string{"react", "angular"}, nil)
	appErr := requireAppError(t, err, TemplateNotFound)
	assert.Equal(t, "angular", appErr.Template)
	assert.Equal(t, 1, f.closed)
}

func TestPrepare_UpstreamFailures(t *testing.T) {
	t.Run("fetch error", func(t *testing.T) {
		f := &countingFetcher{err: provider.NewNotFoundError("http", "u")}
		p := NewPipeline(model.NewCatalog(model.DefaultTemplateNames), f, nil)
		_, err := p.Prepare(context.Background(), []string{"react"}, nil)
		requireAppError(t, err, UpstreamUnavailable)
	})

	t.Run("canceled fetch", func(t *testing.T) {
		f := &countingFetcher{err: provider.NewFetchError("http", "u", context.Canceled)}
		p := NewPipeline(model.NewCatalog(model.DefaultTemplateNames), f, nil)
		_, err := p.Prepare(context.Background(), []string{"react"}, nil)
		requireAppError(t, err, Canceled)
	})

	t.Run("corrupt archive", func(t *testing.T) {
		f := &countingFetcher{data: []byte("<html>not a zip</html>")}
		p := NewPipeline(model.NewCatalog(model.DefaultTemplateNames), f, nil)
		_, err := p.Prepare(context.Background(), []string{"react"}, nil)
		requireAppError(t, err, CorruptArchive)
		assert.Equal(t, 1, f.closed)
	})

	t.Run("entry inflates past limit", func(t *testing.T) {
		f := &countingFetcher{data: archivetest.Templates(t)}
		p := NewPipeline(model.NewCatalog(model.DefaultTemplateNames), f, nil, WithMaxEntrySize(8))
		_, err := p.Prepare(context.Background(), []string{"react"}, nil)
		requireAppError(t, err, CorruptArchive)
		assert.Equal(t, 1, f.closed)
	})
}

func TestStream_CombinedArchive(t *testing.T) {
	p, _ := newTestPipeline(t)

	prepared, err := p.Prepare(context.Background(), []string{"react", "express"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "react-express-stack.zip", prepared.Filename)

	var buf bytes.Buffer
	stats, err := p.Stream(context.Background(), prepared, &buf)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Entries)
	assert.Equal(t, int64(buf.Len()), stats.Bytes)

	files, _ := archivetest.Read(t, buf.Bytes())
	assert.Equal(t, `{"name":"react-app"}`, files["react/package.json"])
	assert.Equal(t, `{"name":"express-app"}`, files["express/package.json"])
	assert.Equal(t, "require('express')\n", files["express/src/index.js"])
}

func TestGenerate_Deterministic(t *testing.T) {
	p, _ := newTestPipeline(t)

	run := func() []byte {
		var buf bytes.Buffer
		_, _, err := p.Generate(context.Background(), []string{"react", "nestjs"}, &buf, nil)
		require.NoError(t, err)
		return buf.Bytes()
	}
	assert.Equal(t, run(), run())
}

// failAfter accepts n bytes and then fails every write.
type failAfter struct {
	n int
}

func (f *failAfter) Write(p []byte) (int, error) {
	if len(p) > f.n {
		return 0, errors.New("broken pipe")
	}
	f.n -= len(p)
	return len(p), nil
}

func TestStream_WriteFailure(t *testing.T) {
	p, _ := newTestPipeline(t)
	prepared, err := p.Prepare(context.Background(), []string{"react"}, nil)
	require.NoError(t, err)

	_, err = p.Stream(context.Background(), prepared, &failAfter{n: 10})
	requireAppError(t, err, WriteFailed)
}

func TestStream_ClientGone(t *testing.T) {
	p, _ := newTestPipeline(t)
	prepared, err := p.Prepare(context.Background(), []string{"react"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	stats, err := p.Stream(ctx, prepared, &buf)
	requireAppError(t, err, Canceled)
	assert.Zero(t, stats.Entries)
}

func TestStream_BufferedHasNoIntermediateFlush(t *testing.T) {
	p, _ := newTestPipeline(t)
	prepared, err := p.Prepare(context.Background(), []string{"express"}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	stats, err := p.Stream(context.Background(), prepared, &buf, archive.WithoutFlush())
	require.NoError(t, err)
	assert.True(t, stats.Started())
	files, _ := archivetest.Read(t, buf.Bytes())
	assert.Len(t, files, 2)
}

func TestPipeline_ReportsProgress(t *testing.T) {
	p, _ := newTestPipeline(t)

	hub := progress.NewHub(64)
	events, cancel := hub.Subscribe("job-1")
	defer cancel()

	var buf bytes.Buffer
	_, _, err := p.Generate(context.Background(), []string{"react"}, &buf, progress.NewReporter("job-1", hub))
	require.NoError(t, err)

	var phases []progress.Phase
	last := -1
	for len(events) > 0 {
		e := <-events
		assert.GreaterOrEqual(t, e.Percent, last)
		last = e.Percent
		phases = append(phases, e.Phase)
	}
	require.NotEmpty(t, phases)
	assert.Equal(t, progress.PhaseValidating, phases[0])
	assert.Contains(t, phases, progress.PhaseFetching)
	assert.Contains(t, phases, progress.PhaseExtracting)
	assert.Contains(t, phases, progress.PhasePackaging)
	assert.Equal(t, progress.PhaseComplete, phases[len(phases)-1])
	assert.Equal(t, 100, last)
}

func TestPipeline_ReportsFailure(t *testing.T) {
	p, _ := newTestPipeline(t)
	var got []progress.Event
	reporter := progress.NewReporter("job-2", progress.ObserverFunc(func(e progress.Event) {
		got = append(got, e)
	}))

	_, err := p.Prepare(context.Background(), []string{"svelte"}, reporter)
	require.Error(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, progress.PhaseFailed, got[len(got)-1].Phase)
}

func TestExtract(t *testing.T) {
	p, _ := newTestPipeline(t)
	prepared, err := p.Prepare(context.Background(), []string{"react", "express"}, nil)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	result, err := p.Extract(prepared, ExtractOptions{Dir: "/work", Fs: fs})
	require.NoError(t, err)
	assert.Equal(t, 5, result.FilesCreated)

	data, err := afero.ReadFile(fs, "/work/express/src/index.js")
	require.NoError(t, err)
	assert.Equal(t, "require('express')\n", string(data))

	_, err = p.Extract(prepared, ExtractOptions{Dir: "../escape", Fs: fs})
	requireAppError(t, err, WriteFailed)
}

func TestArchiveFilename(t *testing.T) {
	tests := []struct {
		names []model.TemplateName
		want  string
	}{
		{[]model.TemplateName{"react"}, "react-template.zip"},
		{[]model.TemplateName{"react", "express"}, "react-express-stack.zip"},
		{[]model.TemplateName{"express", "react", "nestjs"}, "express-react-nestjs-stack.zip"},
		{nil, "templates.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ArchiveFilename(tt.names))
		})
	}
}

func TestValidateOutputDir(t *testing.T) {
	assert.NoError(t, ValidateOutputDir("./out"))
	assert.NoError(t, ValidateOutputDir("/tmp/stack..backup"))
	assert.Error(t, ValidateOutputDir(""))
	assert.Error(t, ValidateOutputDir("out/../../etc"))
}

func TestAppErrorTypeString(t *testing.T) {
	assert.Equal(t, "UpstreamUnavailable", UpstreamUnavailable.String())
	assert.Equal(t, "Unknown", AppErrorType(99).String())
}
