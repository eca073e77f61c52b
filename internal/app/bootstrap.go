package app

import (
	"github.com/spf13/afero"

	"github.com/tacogips/stackzip/internal/config"
	"github.com/tacogips/stackzip/internal/debug"
	"github.com/tacogips/stackzip/internal/template/model"
	"github.com/tacogips/stackzip/internal/template/provider"
)

// NewPipelineFromConfig validates cfg and wires the catalog, spooler and
// fetcher it describes. fs backs disk spooling and the file provider; nil
// means the OS filesystem.
func NewPipelineFromConfig(cfg *config.Config, fs afero.Fs) (*Pipeline, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, NewAppError(ConfigInvalid, "invalid configuration", err)
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	spool := provider.NewSpooler(cfg.Archive, fs)
	fetcher, err := provider.NewFetcher(cfg.Source, spool, fs)
	if err != nil {
		return nil, NewAppError(ConfigInvalid, "invalid template source", err)
	}
	debug.Debug("[app] Using %s provider: %s", fetcher.Name(), fetcher.Location())

	catalog := model.NewCatalog(cfg.Templates.Available)
	return NewPipeline(catalog, fetcher, cfg.Templates.IgnorePatterns,
		WithMaxEntrySize(int64(cfg.Archive.MaxSizeMB)<<20)), nil
}
