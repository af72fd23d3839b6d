package osmpbf

import (
	"time"

	"go.uber.org/zap"

	"github.com/wegman-software/go-osmpbf/internal/block"
	"github.com/wegman-software/go-osmpbf/internal/pipeline"
)

// Options tunes the scheduler Open starts and the read-type filter
// applied to the decoded stream. The zero value decodes every entity
// kind with pipeline.DefaultConfig's scheduling parameters.
type Options struct {
	// Workers sizes the worker pool. Workers==1 selects the
	// synchronous single-worker fallback; zero or negative keeps
	// pipeline.DefaultConfig's worker count.
	Workers int
	// MaxWorkQueue bounds outstanding dispatched-but-undecoded blobs.
	MaxWorkQueue int
	// MaxBufferQueue bounds decoded-but-unconsumed buffers.
	MaxBufferQueue int
	// PollInterval is the backpressure poll sleep.
	PollInterval time.Duration
	// Mask selects which entity kinds to decode. The zero value means
	// "decode everything" (block.ReadAll), not "decode nothing".
	Mask block.ReadMask
	// Logger receives pipeline diagnostics. Defaults to the package
	// logger from internal/telemetry.
	Logger *zap.Logger
}

func (o Options) pipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	if o.Workers > 0 {
		cfg.Workers = o.Workers
	}
	if o.MaxWorkQueue > 0 {
		cfg.MaxWorkQueue = o.MaxWorkQueue
	}
	if o.MaxBufferQueue > 0 {
		cfg.MaxBufferQueue = o.MaxBufferQueue
	}
	if o.PollInterval > 0 {
		cfg.PollInterval = o.PollInterval
	}
	if o.Mask != 0 {
		cfg.Mask = o.Mask
	}
	return cfg
}
