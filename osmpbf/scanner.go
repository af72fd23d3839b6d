// Package osmpbf decodes OpenStreetMap PBF streams into decoded
// nodes, ways, and relations, overlapping I/O, decompression, and
// parsing across a worker pool while preserving input order.
package osmpbf

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/wegman-software/go-osmpbf/internal/errs"
	"github.com/wegman-software/go-osmpbf/internal/frame"
	"github.com/wegman-software/go-osmpbf/internal/mmapsrc"
	"github.com/wegman-software/go-osmpbf/internal/pipeline"
	"github.com/wegman-software/go-osmpbf/internal/proto"
	"github.com/wegman-software/go-osmpbf/internal/telemetry"
	"github.com/wegman-software/go-osmpbf/internal/zreader"
)

// Scanner reads a stream of decoded OSM entities out of a PBF byte
// stream, one Object() at a time, mirroring the bufio.Scanner idiom.
type Scanner struct {
	header Header
	sched  *pipeline.Scheduler
	closer io.Closer

	queue  []interface{}
	object interface{}
	err    error
}

// Open ingests the stream's OSMHeader blob and, if opts.Mask requests
// any entities, starts the pipeline's reader goroutine against the
// remaining OSMData frames. *os.File inputs are memory-mapped for
// zero-copy blob reads; any other io.Reader falls back to buffered
// pulls.
func Open(ctx context.Context, r io.Reader, opts Options) (*Scanner, error) {
	log := opts.Logger
	if log == nil {
		log = telemetry.Get()
	}

	var src frame.ByteSource
	var closer io.Closer
	if f, ok := r.(*os.File); ok {
		m, err := mmapsrc.Open(f)
		if err != nil {
			return nil, fmt.Errorf("osmpbf: %w", err)
		}
		src, closer = m, m
	} else {
		src = frame.NewIOSource(r)
	}

	headerReader := frame.NewReader(src)
	handle, ok, err := headerReader.NextFrame("OSMHeader")
	if err != nil {
		closeQuiet(closer)
		return nil, wrapErr(err)
	}
	if !ok {
		closeQuiet(closer)
		return nil, wrapErr(errs.New(errs.Framing, "EOF before OSMHeader", nil))
	}

	blob, err := proto.DecodeBlob(handle.Raw)
	if err != nil {
		closeQuiet(closer)
		return nil, wrapErr(err)
	}
	payload, err := zreader.Payload(blob)
	if err != nil {
		closeQuiet(closer)
		return nil, wrapErr(err)
	}
	hb, err := proto.DecodeHeaderBlock(payload)
	if err != nil {
		closeQuiet(closer)
		return nil, wrapErr(err)
	}
	hdr, err := decodeHeader(hb)
	if err != nil {
		closeQuiet(closer)
		return nil, wrapErr(err)
	}

	s := &Scanner{header: hdr, closer: closer}

	sched := pipeline.New(src, opts.pipelineConfig(), log)
	sched.Start(ctx)
	s.sched = sched

	return s, nil
}

// Header returns the metadata ingested from the stream's OSMHeader
// blob.
func (s *Scanner) Header() Header {
	return s.header
}

// Scan advances to the next decoded entity, returning false at clean
// EOF or on a fatal error (inspect via Err).
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for len(s.queue) == 0 {
		a, err := s.sched.Read()
		if err != nil {
			s.err = wrapErr(err)
			return false
		}
		buf := &Buffer{a: a}
		if buf.Empty() {
			return false
		}
		if err := buf.Iterate(func(obj interface{}) error {
			s.queue = append(s.queue, obj)
			return nil
		}); err != nil {
			s.err = wrapErr(err)
			return false
		}
	}
	s.object = s.queue[0]
	s.queue = s.queue[1:]
	return true
}

// Object returns the entity Scan most recently advanced to: a *Node,
// *Way, or *Relation.
func (s *Scanner) Object() interface{} {
	return s.object
}

// Err returns the first fatal error encountered, if any.
func (s *Scanner) Err() error {
	return s.err
}

// FullyScannedBytes reports how many stream bytes the frame reader has
// consumed so far, including length prefixes and blob headers.
func (s *Scanner) FullyScannedBytes() int64 {
	return s.sched.BytesRead()
}

// Close signals cancellation, waits for in-flight decode work to
// finish, and releases the underlying byte source.
func (s *Scanner) Close() error {
	s.sched.Close()
	return closeQuiet(s.closer)
}

func closeQuiet(c io.Closer) error {
	if c == nil {
		return nil
	}
	return c.Close()
}
