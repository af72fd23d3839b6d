// Package frame turns a chunked byte source into a sequence of raw
// blob frames: a big-endian length-prefixed BlobHeader followed by its
// Blob payload. It performs no decompression or protobuf decoding
// beyond the BlobHeader itself.
package frame

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/wegman-software/go-osmpbf/internal/errs"
	"github.com/wegman-software/go-osmpbf/internal/proto"
)

const (
	// MaxBlobHeaderSize is the cap on an encoded BlobHeader, 32 KiB.
	MaxBlobHeaderSize = 1 << 15
	// MaxBlobSize is the cap on a Blob payload, applied to both the
	// compressed bytes on the wire and the inflated size, 32 MiB.
	MaxBlobSize = 1 << 25
)

// ByteSource presents a chunked input as a blocking "read exactly N
// bytes" interface.
type ByteSource interface {
	// ReadExact fills buf completely. It returns (false, nil) on a
	// clean EOF with zero bytes consumed for this call, or a fatal
	// framing error for any short/truncated read.
	ReadExact(buf []byte) (ok bool, err error)
}

// SliceSource is implemented by sources that can hand back a window of
// their own storage without copying (mmapsrc). Frame reads prefer this
// over ReadExact when available.
type SliceSource interface {
	ByteSource
	ReadSlice(n int) (b []byte, ok bool, err error)
}

// IOSource adapts an io.Reader into a ByteSource.
type IOSource struct {
	r io.Reader
}

func NewIOSource(r io.Reader) *IOSource {
	return &IOSource{r: r}
}

func (s *IOSource) ReadExact(buf []byte) (bool, error) {
	if len(buf) == 0 {
		return true, nil
	}
	n, err := io.ReadFull(s.r, buf)
	if err == nil {
		return true, nil
	}
	if err == io.EOF && n == 0 {
		return false, nil
	}
	return false, errs.New(errs.Framing, "truncated stream: short read", err)
}

// Handle is one decoded blob frame: header bytes consumed, payload
// bytes still awaiting decompression.
type Handle struct {
	Index int64
	Type  string
	Raw   []byte // the Blob message's encoded bytes
}

// Reader reads successive blob frames from a ByteSource.
type Reader struct {
	src       ByteSource
	index     int64
	bytesRead atomic.Int64
}

func NewReader(src ByteSource) *Reader {
	return &Reader{src: src}
}

// BytesRead reports the total number of stream bytes consumed so far,
// including length prefixes and blob headers.
func (r *Reader) BytesRead() int64 {
	return r.bytesRead.Load()
}

// NextFrame reads one BlobHeader+Blob pair. It returns (nil, false,
// nil) on a clean EOF at a frame boundary.
func (r *Reader) NextFrame(expectedType string) (*Handle, bool, error) {
	var lenBuf [4]byte
	ok, err := r.src.ReadExact(lenBuf[:])
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	r.bytesRead.Add(4)

	headerLen := binary.BigEndian.Uint32(lenBuf[:])
	if headerLen > MaxBlobHeaderSize {
		return nil, false, errs.New(errs.Framing,
			fmt.Sprintf("blob header size %d exceeds cap %d", headerLen, MaxBlobHeaderSize), nil)
	}

	headerBytes, err := r.readN(int(headerLen))
	if err != nil {
		return nil, false, err
	}
	r.bytesRead.Add(int64(headerLen))

	bh, err := proto.DecodeBlobHeader(headerBytes)
	if err != nil {
		return nil, false, err
	}
	if bh.Type != expectedType {
		return nil, false, errs.New(errs.Framing,
			fmt.Sprintf("unexpected blob type %q, want %q", bh.Type, expectedType), nil)
	}
	if bh.DataSize < 0 || bh.DataSize > MaxBlobSize {
		return nil, false, errs.New(errs.Framing,
			fmt.Sprintf("blob size %d exceeds cap %d", bh.DataSize, MaxBlobSize), nil)
	}

	blobBytes, err := r.readN(int(bh.DataSize))
	if err != nil {
		return nil, false, err
	}
	r.bytesRead.Add(int64(bh.DataSize))

	h := &Handle{Index: r.index, Type: bh.Type, Raw: blobBytes}
	r.index++
	return h, true, nil
}

func (r *Reader) readN(n int) ([]byte, error) {
	if ss, ok := r.src.(SliceSource); ok {
		b, ok2, err := ss.ReadSlice(n)
		if err != nil {
			return nil, err
		}
		if !ok2 {
			return nil, errs.New(errs.Framing, "truncated stream: short read", io.ErrUnexpectedEOF)
		}
		return b, nil
	}
	buf := make([]byte, n)
	ok, err := r.src.ReadExact(buf)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.New(errs.Framing, "truncated stream: short read", io.ErrUnexpectedEOF)
	}
	return buf, nil
}
