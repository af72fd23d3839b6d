package pipeline

import (
	"runtime"
	"time"

	"github.com/wegman-software/go-osmpbf/internal/block"
)

// Config tunes the scheduler. The zero value is not usable directly —
// call DefaultConfig and override fields as needed.
type Config struct {
	// Workers is the worker-pool size. 1 selects the synchronous
	// single-worker fallback: decoding happens inline on the reader
	// goroutine, one frame at a time.
	Workers int
	// MaxWorkQueue bounds outstanding dispatched-but-not-yet-decoded
	// frames.
	MaxWorkQueue int
	// MaxBufferQueue bounds decoded-but-not-yet-consumed buffers.
	MaxBufferQueue int
	// PollInterval is how long the reader sleeps when either
	// backpressure threshold is exceeded, before polling again.
	PollInterval time.Duration
	// Mask selects which entity kinds the primitive-block parser
	// decodes; groups outside the mask are skipped without decode cost.
	Mask block.ReadMask
}

// DefaultConfig matches spec's defaults: hardware-concurrency workers,
// max_work_queue=10, max_buffer_queue=20, ~10ms backpressure sleep,
// all entity kinds enabled.
func DefaultConfig() Config {
	return Config{
		Workers:        runtime.NumCPU(),
		MaxWorkQueue:   10,
		MaxBufferQueue: 20,
		PollInterval:   10 * time.Millisecond,
		Mask:           block.ReadAll,
	}
}
