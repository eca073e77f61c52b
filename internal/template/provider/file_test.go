package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFetcher(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/mirror/templates.zip", []byte("PK-local"), 0o644))
	require.NoError(t, fs.MkdirAll("/mirror/dir.zip", 0o755))

	t.Run("absolute file URL", func(t *testing.T) {
		f, err := NewFileFetcher(fs, "file:///mirror/templates.zip")
		require.NoError(t, err)
		a, err := f.Fetch(context.Background())
		require.NoError(t, err)
		defer a.Close()
		assert.Equal(t, "PK-local", readAll(t, a))
		assert.Equal(t, int64(8), a.Size)
	})

	t.Run("relative path with base dir", func(t *testing.T) {
		f, err := NewFileFetcher(fs, "templates.zip")
		require.NoError(t, err)
		f.BaseDir = "/mirror"
		a, err := f.Fetch(context.Background())
		require.NoError(t, err)
		assert.NoError(t, a.Close())
	})

	t.Run("missing", func(t *testing.T) {
		f, err := NewFileFetcher(fs, "/mirror/missing.zip")
		require.NoError(t, err)
		_, err = f.Fetch(context.Background())
		var provErr *ProviderError
		require.True(t, errors.As(err, &provErr))
		assert.Equal(t, ProviderNotFound, provErr.Type)
	})

	t.Run("directory", func(t *testing.T) {
		f, err := NewFileFetcher(fs, "/mirror/dir.zip")
		require.NoError(t, err)
		_, err = f.Fetch(context.Background())
		assert.Error(t, err)
	})
}
