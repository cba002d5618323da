package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied to fields left empty in the config file.
const (
	DefaultUserAgent   = "mirrorpush/1.0"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 2 * time.Second
	DefaultMaxFileSize = 50 << 20
	DefaultBatchSize   = 20
	DefaultGitRemote   = "origin"
	DefaultManifest    = "mirror_links.csv"
)

// Load reads and validates a mirrorpush.yaml configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return &cfg, nil
}

// ApplyDefaults fills empty optional fields in place.
func ApplyDefaults(cfg *Config) {
	if cfg.Remote.UserAgent == "" {
		cfg.Remote.UserAgent = DefaultUserAgent
	}
	if cfg.Remote.Timeout == 0 {
		cfg.Remote.Timeout = Duration(DefaultTimeout)
	}
	if cfg.Remote.MaxRetries == 0 {
		cfg.Remote.MaxRetries = DefaultMaxRetries
	}
	if cfg.Remote.BackoffBase == 0 {
		cfg.Remote.BackoffBase = Duration(DefaultBackoffBase)
	}
	if cfg.Mirror.MaxFileSize == 0 {
		cfg.Mirror.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Mirror.BatchSize == 0 {
		cfg.Mirror.BatchSize = DefaultBatchSize
	}
	if len(cfg.Mirror.Extensions) == 0 {
		cfg.Mirror.Extensions = []string{".mp3", ".m4a", ".png", ".jpg", ".jpeg"}
	}
	if cfg.Git.Remote == "" {
		cfg.Git.Remote = DefaultGitRemote
	}
	if cfg.Manifest.File == "" {
		cfg.Manifest.File = DefaultManifest
	}

	cfg.Mirror.Extensions = NormalizeExtensions(cfg.Mirror.Extensions)
}

// NormalizeExtensions lower-cases extensions and ensures a leading dot.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d — only version 1 is supported", cfg.Version))
	}

	switch {
	case cfg.Remote.BaseURL == "":
		errs = append(errs, "remote.base_url is required")
	case !strings.HasPrefix(cfg.Remote.BaseURL, "http://") && !strings.HasPrefix(cfg.Remote.BaseURL, "https://"):
		errs = append(errs, fmt.Sprintf("remote.base_url %q must be an http(s) URL", cfg.Remote.BaseURL))
	case !strings.HasSuffix(cfg.Remote.BaseURL, "/"):
		errs = append(errs, fmt.Sprintf("remote.base_url %q must end with '/'", cfg.Remote.BaseURL))
	}

	if cfg.Mirror.Dir == "" {
		errs = append(errs, "mirror.dir is required")
	}
	if cfg.Mirror.BatchSize < 1 {
		errs = append(errs, fmt.Sprintf("mirror.batch_size %d must be at least 1", cfg.Mirror.BatchSize))
	}
	if cfg.Remote.MaxRetries < 1 {
		errs = append(errs, fmt.Sprintf("remote.max_retries %d must be at least 1", cfg.Remote.MaxRetries))
	}

	return errs
}
