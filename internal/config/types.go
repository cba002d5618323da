package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the mirrorpush.yaml configuration file.
type Config struct {
	Version  int            `yaml:"version"`
	Remote   RemoteConfig   `yaml:"remote"`
	Mirror   MirrorConfig   `yaml:"mirror"`
	Git      GitConfig      `yaml:"git"`
	Manifest ManifestConfig `yaml:"manifest"`
}

// RemoteConfig describes the remote HTTP index to crawl.
type RemoteConfig struct {
	BaseURL     string   `yaml:"base_url"` // must end with '/'
	UserAgent   string   `yaml:"user_agent,omitempty"`
	Timeout     Duration `yaml:"timeout,omitempty"`
	MaxRetries  int      `yaml:"max_retries,omitempty"`
	BackoffBase Duration `yaml:"backoff_base,omitempty"`
}

// MirrorConfig describes the local mirror tree and download policy.
type MirrorConfig struct {
	Dir         string   `yaml:"dir"`
	Extensions  []string `yaml:"extensions,omitempty"`
	MaxFileSize ByteSize `yaml:"max_file_size,omitempty"` // 0 = no limit
	BatchSize   int      `yaml:"batch_size,omitempty"`
}

// GitConfig describes the push target.
type GitConfig struct {
	Remote string `yaml:"remote,omitempty"`
	Branch string `yaml:"branch,omitempty"` // empty -> push HEAD
}

// ManifestConfig describes the generated link manifest.
type ManifestConfig struct {
	File string `yaml:"file,omitempty"`
}

// Duration wraps time.Duration so yaml values like "30s" parse naturally.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ByteSize wraps a byte count so yaml values like "50MB" parse naturally.
// Accepts a bare integer (bytes) or an integer with a KB/MB/GB suffix.
type ByteSize int64

func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := parseByteSize(raw)
	if err != nil {
		return err
	}
	*b = ByteSize(parsed)
	return nil
}

func parseByteSize(raw string) (int64, error) {
	s := strings.TrimSpace(strings.ToUpper(raw))
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "GB"):
		mult, s = 1<<30, strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		mult, s = 1<<20, strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		mult, s = 1<<10, strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}
	var n int64
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", raw, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid size %q: must not be negative", raw)
	}
	return n * mult, nil
}
