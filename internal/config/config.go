// Package config loads scheduler tuning and the read-filter mask from
// a YAML file, the only on-disk configuration surface in this repo —
// the core decoder package itself never touches the filesystem except
// through the ByteSource/file handle the caller gives it.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wegman-software/go-osmpbf/internal/block"
	"github.com/wegman-software/go-osmpbf/internal/pipeline"
)

// Filter controls which entity kinds a Config's mask includes. Omitted
// (nil) fields default to true; Filter.Mask treats an entirely-absent
// filter block as "decode all".
type Filter struct {
	Nodes     *bool `yaml:"nodes,omitempty"`
	Ways      *bool `yaml:"ways,omitempty"`
	Relations *bool `yaml:"relations,omitempty"`
}

// Config is the on-disk scheduler-tuning representation.
type Config struct {
	Workers        int           `yaml:"workers,omitempty"`
	MaxWorkQueue   int           `yaml:"max_work_queue,omitempty"`
	MaxBufferQueue int           `yaml:"max_buffer_queue,omitempty"`
	PollIntervalMS int           `yaml:"poll_interval_ms,omitempty"`
	Filter         *Filter       `yaml:"filter,omitempty"`
}

// Load reads and parses a YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scheduler config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scheduler config YAML: %w", err)
	}
	return &cfg, nil
}

// DefaultConfig returns the zero-tuning configuration: every field
// left to pipeline.DefaultConfig's values, every entity kind decoded.
func DefaultConfig() *Config {
	return &Config{}
}

// Mask translates the YAML filter block into a block.ReadMask. A nil
// Filter, or a Filter with every pointer nil, decodes everything.
func (f *Filter) Mask() block.ReadMask {
	m := block.ReadAll
	if f == nil {
		return m
	}
	if f.Nodes != nil && !*f.Nodes {
		m &^= block.ReadNodes
	}
	if f.Ways != nil && !*f.Ways {
		m &^= block.ReadWays
	}
	if f.Relations != nil && !*f.Relations {
		m &^= block.ReadRelations
	}
	return m
}

// PipelineConfig translates Config into a pipeline.Config, layering
// any set fields over pipeline.DefaultConfig.
func (c *Config) PipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	if c == nil {
		return cfg
	}
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if c.MaxWorkQueue > 0 {
		cfg.MaxWorkQueue = c.MaxWorkQueue
	}
	if c.MaxBufferQueue > 0 {
		cfg.MaxBufferQueue = c.MaxBufferQueue
	}
	if c.PollIntervalMS > 0 {
		cfg.PollInterval = time.Duration(c.PollIntervalMS) * time.Millisecond
	}
	cfg.Mask = c.Filter.Mask()
	return cfg
}
