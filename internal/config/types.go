package config

// Config represents the stackzip configuration.
type Config struct {
	// Server configures the HTTP listener and response handling.
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
	// Source configures where the upstream template archive comes from.
	Source SourceConfig `json:"source" yaml:"source" mapstructure:"source"`
	// Templates configures the allow-list and output filtering.
	Templates TemplatesConfig `json:"templates" yaml:"templates" mapstructure:"templates"`
	// Archive configures how the upstream archive is held while it is read.
	Archive ArchiveConfig `json:"archive" yaml:"archive" mapstructure:"archive"`
	// RateLimit configures per-client throttling of generation requests.
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`
	// Output configures terminal display.
	Output OutputConfig `json:"output" yaml:"output" mapstructure:"output"`
}

// ServerConfig represents HTTP server settings.
type ServerConfig struct {
	// Host is the interface to listen on (empty = all interfaces).
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	// Port is the TCP port to listen on.
	Port int `json:"port" yaml:"port" mapstructure:"port"`
	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	// BufferResponses builds each archive in memory before sending it
	// instead of streaming it.
	BufferResponses bool `json:"buffer_responses" yaml:"buffer_responses" mapstructure:"buffer_responses"`
	// ReadHeaderTimeout is the request header read timeout in seconds.
	ReadHeaderTimeout int `json:"read_header_timeout" yaml:"read_header_timeout" mapstructure:"read_header_timeout"`
	// ShutdownTimeout is the graceful shutdown timeout in seconds.
	ShutdownTimeout int `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// SourceConfig represents upstream archive settings.
type SourceConfig struct {
	// Provider selects the fetcher: "http", "github" or "file".
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`
	// Repository is the upstream repository in any form ParseRepository accepts.
	Repository string `json:"repository" yaml:"repository" mapstructure:"repository"`
	// Ref is the branch, tag or commit to download.
	Ref string `json:"ref" yaml:"ref" mapstructure:"ref"`
	// URL overrides the archive location (an http(s) URL, or a path for "file").
	URL string `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url"`
	// APIURL is the GitHub API URL (for enterprise installations).
	APIURL string `json:"api_url" yaml:"api_url" mapstructure:"api_url"`
	// Token is the GitHub personal access token for private repositories.
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`
	// Timeout is the upstream fetch timeout in seconds.
	Timeout int `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// TemplatesConfig represents template selection settings.
type TemplatesConfig struct {
	// Available is the allow-list of template folder names.
	Available []string `json:"available" yaml:"available" mapstructure:"available"`
	// IgnorePatterns are glob patterns for files left out of generated archives.
	IgnorePatterns []string `json:"ignore_patterns" yaml:"ignore_patterns" mapstructure:"ignore_patterns"`
	// PreserveExecutable keeps executable permissions when extracting to disk.
	PreserveExecutable bool `json:"preserve_executable" yaml:"preserve_executable" mapstructure:"preserve_executable"`
}

// ArchiveConfig represents upstream archive handling settings.
type ArchiveConfig struct {
	// MaxSizeMB is the largest upstream archive accepted (0 = unlimited).
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb" mapstructure:"max_size_mb"`
	// SpoolToDisk writes the upstream archive to a temporary file instead of memory.
	SpoolToDisk bool `json:"spool_to_disk" yaml:"spool_to_disk" mapstructure:"spool_to_disk"`
	// TempDir is the spool directory (empty = system temp dir).
	TempDir string `json:"temp_dir,omitempty" yaml:"temp_dir,omitempty" mapstructure:"temp_dir"`
}

// RateLimitConfig represents per-client rate limiting settings.
type RateLimitConfig struct {
	// Enabled turns rate limiting on for generation routes.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	// Requests is the number of requests allowed per window.
	Requests int `json:"requests" yaml:"requests" mapstructure:"requests"`
	// WindowSeconds is the window length in seconds.
	WindowSeconds int `json:"window_seconds" yaml:"window_seconds" mapstructure:"window_seconds"`
}

// OutputConfig represents output and display settings.
type OutputConfig struct {
	// Color enables colored terminal output.
	Color bool `json:"color" yaml:"color" mapstructure:"color"`
	// Verbose enables verbose logging output.
	Verbose bool `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
	// Quiet suppresses non-error output.
	Quiet bool `json:"quiet" yaml:"quiet" mapstructure:"quiet"`
}
