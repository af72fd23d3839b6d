// Package mmapsrc memory-maps an *os.File and exposes it as a
// frame.SliceSource, so the frame reader can hand back zero-copy
// windows into the mapped pages instead of allocating and copying on
// every blob.
package mmapsrc

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/wegman-software/go-osmpbf/internal/errs"
)

// Source is a read-only mmap-backed byte source.
type Source struct {
	data mmap.MMap
	file *os.File
	pos  int
}

// Open memory-maps the whole of f; reads start at byte 0 regardless of
// f's current offset. The
// caller retains ownership of f and must Close the Source (not f)
// when done; Close unmaps but does not close the underlying file.
func Open(f *os.File) (*Source, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("mmapsrc: stat: %w", err)
	}
	if info.Size() == 0 {
		return &Source{file: f}, nil
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmapsrc: map: %w", err)
	}
	return &Source{data: data, file: f}, nil
}

// Close unmaps the file. It does not close the *os.File passed to Open.
func (s *Source) Close() error {
	if s.data == nil {
		return nil
	}
	return s.data.Unmap()
}

// ReadExact fills buf by copying out of the mapped pages.
func (s *Source) ReadExact(buf []byte) (bool, error) {
	if len(buf) == 0 {
		return true, nil
	}
	if s.pos >= len(s.data) {
		return false, nil
	}
	if s.pos+len(buf) > len(s.data) {
		return false, errs.New(errs.Framing, "truncated stream: short read", nil)
	}
	copy(buf, s.data[s.pos:s.pos+len(buf)])
	s.pos += len(buf)
	return true, nil
}

// ReadSlice hands back a window directly into the mapped pages without
// copying. The returned slice is only valid while the Source remains
// mapped.
func (s *Source) ReadSlice(n int) ([]byte, bool, error) {
	if n == 0 {
		return nil, true, nil
	}
	if s.pos >= len(s.data) {
		return nil, false, nil
	}
	if s.pos+n > len(s.data) {
		return nil, false, errs.New(errs.Framing, "truncated stream: short read", nil)
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, true, nil
}
