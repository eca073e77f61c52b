// Package version holds build metadata injected via ldflags.
package version

var (
	// Version is the release version (e.g. "v0.3.1").
	Version = "dev"
	// GitCommit is the commit the binary was built from.
	GitCommit = "unknown"
	// BuildDate is the UTC build timestamp.
	BuildDate = "unknown"
)
