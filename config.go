package streamly

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the engine configuration. It
// can be populated from JSON or YAML. The zero-value is useful – all nested
// fields inherit their package defaults.

type Config struct {
	Engine    EngineConfig    `json:"engine" yaml:"engine"`
	Recording RecordingConfig `json:"recording" yaml:"recording"`
}

type EngineConfig struct {
	// Threads bounds the number of additional workers a run may occupy.
	// Zero forces fully inline execution; a negative value removes the
	// bound.
	Threads int `json:"threads" yaml:"threads"`
}

type RecordingConfig struct {
	// BaseURL, when set, selects the filesystem recording store rooted at
	// the given location. Empty keeps recordings in memory.
	BaseURL string `json:"baseURL" yaml:"baseURL"`
}

// DefaultConfig returns a Config populated with the package defaults:
// unlimited workers, in-memory recordings.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Threads: -1,
		},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Engine.Threads < -1 {
		return fmt.Errorf("engine.threads must be >= -1")
	}
	return nil
}

// LoadConfig reads a YAML config from the supplied URL/location using the
// afs abstraction (file, mem, s3, gs, ...).
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
