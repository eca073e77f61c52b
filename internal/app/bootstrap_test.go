package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacogips/stackzip/internal/archive/archivetest"
	"github.com/tacogips/stackzip/internal/config"
)

func TestNewPipelineFromConfig_FileProvider(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/mirror/templates.zip", archivetest.Templates(t), 0o644))

	cfg := config.DefaultConfig()
	cfg.Source.Provider = config.ProviderFile
	cfg.Source.URL = "/mirror/templates.zip"
	cfg.Templates.IgnorePatterns = []string{"*.html"}

	p, err := NewPipelineFromConfig(cfg, fs)
	require.NoError(t, err)

	var buf bytes.Buffer
	prepared, _, err := p.Generate(context.Background(), []string{"react"}, &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, "/mirror/templates.zip", prepared.Source)

	files, _ := archivetest.Read(t, buf.Bytes())
	assert.Contains(t, files, "package.json")
	assert.NotContains(t, files, "public/index.html")
}

func TestNewPipelineFromConfig_Invalid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source.Provider = "ftp"

	_, err := NewPipelineFromConfig(cfg, afero.NewMemMapFs())
	requireAppError(t, err, ConfigInvalid)
}
