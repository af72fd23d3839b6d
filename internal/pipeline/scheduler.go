// Package pipeline implements the scheduling model: one reader
// goroutine owns the frame reader and hands compressed blobs to a
// bounded worker pool; an ordered FIFO of per-frame result channels
// preserves input order to the consumer regardless of which worker
// finishes first.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wegman-software/go-osmpbf/internal/arena"
	"github.com/wegman-software/go-osmpbf/internal/block"
	"github.com/wegman-software/go-osmpbf/internal/frame"
	"github.com/wegman-software/go-osmpbf/internal/proto"
	"github.com/wegman-software/go-osmpbf/internal/telemetry"
	"github.com/wegman-software/go-osmpbf/internal/zreader"
)

// Result is what a worker produces for one blob.
type Result struct {
	Arena *arena.Arena
	Index int64
	Err   error
}

type future struct {
	result chan Result
}

// Scheduler drives the pipeline described in spec §4.7 over an
// OSMData frame stream.
type Scheduler struct {
	reader *frame.Reader
	cfg    Config
	log    *zap.Logger

	futures  chan *future
	inFlight atomic.Int64 // dispatched, not yet decoded — bounded by MaxWorkQueue
	pending  atomic.Int64 // decoded, not yet consumed — bounded by MaxBufferQueue
	done     atomic.Bool

	cancel context.CancelFunc
	g      *errgroup.Group
	loopDone chan struct{}
}

// New builds a scheduler reading OSMData frames through src.
func New(src frame.ByteSource, cfg Config, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	queueCap := cfg.MaxWorkQueue + cfg.MaxBufferQueue
	if queueCap < 1 {
		queueCap = 1
	}
	return &Scheduler{
		reader:  frame.NewReader(src),
		cfg:     cfg,
		log:     log,
		futures: make(chan *future, queueCap),
	}
}

// Start launches the reader goroutine. It must be called at most once.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.Workers > 1 {
		g.SetLimit(s.cfg.Workers)
	}
	s.g = g
	s.loopDone = make(chan struct{})

	s.log.Debug("pipeline reader starting", zap.String("thread", "pbf-reader"), zap.Int("workers", s.cfg.Workers))

	go func() {
		defer close(s.loopDone)
		s.readerLoop(gctx)
	}()
}

func (s *Scheduler) readerLoop(ctx context.Context) {
	defer close(s.futures)

	for {
		if s.backpressureWait(ctx) {
			return
		}

		handle, ok, err := s.reader.NextFrame("OSMData")
		if err != nil {
			f := &future{result: make(chan Result, 1)}
			f.result <- Result{Err: err}
			select {
			case s.futures <- f:
			case <-ctx.Done():
			}
			return
		}
		if !ok {
			return
		}

		f := &future{result: make(chan Result, 1)}
		s.inFlight.Add(1)
		select {
		case s.futures <- f:
		case <-ctx.Done():
			s.inFlight.Add(-1)
			return
		}

		if s.cfg.Workers <= 1 {
			s.decode(handle, f)
			continue
		}

		s.g.Go(func() error {
			s.decode(handle, f)
			return nil
		})
	}
}

// backpressureWait blocks while either threshold is exceeded, polling
// at the configured interval. It returns true if the scheduler should
// stop (cancelled or closed).
func (s *Scheduler) backpressureWait(ctx context.Context) bool {
	for s.inFlight.Load() >= int64(s.cfg.MaxWorkQueue) || s.pending.Load() >= int64(s.cfg.MaxBufferQueue) {
		if ctx.Err() != nil || s.done.Load() {
			return true
		}
		select {
		case <-ctx.Done():
			return true
		case <-time.After(s.cfg.PollInterval):
		}
	}
	return ctx.Err() != nil || s.done.Load()
}

func (s *Scheduler) decode(h *frame.Handle, f *future) {
	defer s.inFlight.Add(-1)
	defer s.pending.Add(1)

	blobLog := telemetry.WithBlob(s.log, h.Index)
	a, err := decodeBlob(h.Raw, s.cfg.Mask, blobLog)
	if err != nil {
		blobLog.Debug("blob decode failed", zap.Int("raw_bytes", len(h.Raw)), zap.Error(err))
	} else {
		blobLog.Debug("blob decoded", zap.Int("raw_bytes", len(h.Raw)), zap.Int("arena_bytes", a.Len()))
	}
	f.result <- Result{Arena: a, Index: h.Index, Err: err}
}

// Read blocks until the next ordered result is ready. An empty Arena
// (Len() == 0) with a nil error signals clean EOF.
func (s *Scheduler) Read() (*arena.Arena, error) {
	f, ok := <-s.futures
	if !ok {
		return arena.New(0), nil
	}
	res := <-f.result
	s.pending.Add(-1)
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Arena, nil
}

// BytesRead reports the total stream bytes consumed by the frame
// reader so far.
func (s *Scheduler) BytesRead() int64 {
	return s.reader.BytesRead()
}

// Close signals cancellation and waits for in-flight work to finish.
// Already-decoded buffers remain in the futures queue and are still
// deliverable via Read.
func (s *Scheduler) Close() {
	s.done.Store(true)
	if s.cancel != nil {
		s.cancel()
	}
	if s.g != nil {
		s.g.Wait()
	}
	if s.loopDone != nil {
		<-s.loopDone
	}
}

func decodeBlob(raw []byte, mask block.ReadMask, log *zap.Logger) (*arena.Arena, error) {
	blob, err := proto.DecodeBlob(raw)
	if err != nil {
		return nil, err
	}
	payload, err := zreader.Payload(blob)
	if err != nil {
		return nil, err
	}
	pb, err := proto.DecodePrimitiveBlock(payload)
	if err != nil {
		return nil, err
	}
	if dg := pb.DateGranularity; dg > 0 && dg < 1000 {
		log.Warn("date_granularity below 1000 truncates the date factor to 0; timestamps decode as 0",
			zap.Int32("date_granularity", dg))
	}
	a := arena.New(10 << 20)
	if err := block.Parse(pb, mask, a); err != nil {
		return nil, err
	}
	return a, nil
}
