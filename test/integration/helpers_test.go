package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tacogips/stackzip/internal/app"
	"github.com/tacogips/stackzip/internal/archive/archivetest"
	"github.com/tacogips/stackzip/internal/config"
	"github.com/tacogips/stackzip/internal/server"
)

// fixtureRoot is the repository fixture zipped for every test.
const fixtureRoot = "zero-config-templates-main"

// readFixture returns the files of a fixture repository keyed by path
// relative to its root.
func readFixture(t *testing.T, fixtureName string) map[string]string {
	t.Helper()

	fixtureDir, err := filepath.Abs(filepath.Join("../fixtures/templates", fixtureName))
	if err != nil {
		t.Fatalf("failed to get fixture path: %v", err)
	}

	files := make(map[string]string)
	err = filepath.Walk(fixtureDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		relPath, err := filepath.Rel(fixtureDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(relPath)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	return files
}

// zipFixtureToTemp packs a fixture repository the way GitHub serves it and
// returns the path of the archive.
func zipFixtureToTemp(t *testing.T, fixtureName, tempDir string) string {
	t.Helper()
	data := archivetest.Repo(t, fixtureName, readFixture(t, fixtureName))
	path := filepath.Join(tempDir, fixtureName+".zip")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write fixture archive: %v", err)
	}
	return path
}

// mirrorConfig returns a default configuration reading templates from a
// zipped fixture.
func mirrorConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Source.Provider = config.ProviderFile
	cfg.Source.URL = zipFixtureToTemp(t, fixtureRoot, t.TempDir())
	return cfg
}

// startServer runs a server for cfg on an ephemeral port and returns its
// base URL.
func startServer(t *testing.T, cfg *config.Config) string {
	t.Helper()
	pipeline, err := app.NewPipelineFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}

	serverCfg := cfg.Server
	serverCfg.Host = "127.0.0.1"
	serverCfg.Port = 0
	srv := server.NewServer(serverCfg, cfg.RateLimit, pipeline)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv.BaseURL()
}
