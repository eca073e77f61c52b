package app

import (
	"github.com/tacogips/stackzip/internal/config"
	"github.com/tacogips/stackzip/internal/debug"
)

// InitConfigOptions contains options for configuration initialization.
type InitConfigOptions struct {
	// Path is the file to write. Empty means config.DefaultConfigPath().
	Path string
	// Force overwrites an existing file.
	Force bool
}

// InitConfig writes the default configuration as YAML and returns the path
// written.
func InitConfig(opts InitConfigOptions) (string, error) {
	path := opts.Path
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if path == "" {
		return "", NewAppError(ConfigInitFailed, "cannot determine default configuration path", nil)
	}

	debug.DebugSection("[app] Config init")
	debug.DebugValue("[app] Path", path)
	debug.DebugValue("[app] Force", opts.Force)

	if err := config.Save(path, config.DefaultConfig(), opts.Force); err != nil {
		return "", NewAppError(ConfigInitFailed, "failed to write configuration", err)
	}
	return path, nil
}
