// Package zreader turns a decoded Blob message into its payload
// bytes: zlib inflation when zlib_data is set, a pass-through for raw,
// and a fatal rejection of lzma_data (never attempted).
package zreader

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/wegman-software/go-osmpbf/internal/errs"
	"github.com/wegman-software/go-osmpbf/internal/frame"
	"github.com/wegman-software/go-osmpbf/internal/proto"
)

// Payload inflates or passes through b's payload, enforcing the cap
// against the declared raw_size and, independently, against
// frame.MaxBlobSize (the same cap the frame reader applies to the
// compressed bytes on the wire).
func Payload(b *proto.Blob) ([]byte, error) {
	switch {
	case b.Raw != nil:
		if len(b.Raw) > frame.MaxBlobSize {
			return nil, errs.New(errs.Decompression,
				fmt.Sprintf("raw blob payload %d bytes exceeds cap %d", len(b.Raw), frame.MaxBlobSize), nil)
		}
		return b.Raw, nil

	case b.ZlibData != nil:
		if !b.HasRaw {
			return nil, errs.New(errs.Decompression, "zlib_data present without raw_size", nil)
		}
		if int(b.RawSize) > frame.MaxBlobSize {
			return nil, errs.New(errs.Decompression,
				fmt.Sprintf("declared raw_size %d exceeds cap %d", b.RawSize, frame.MaxBlobSize), nil)
		}
		zr, err := zlib.NewReader(bytes.NewReader(b.ZlibData))
		if err != nil {
			return nil, errs.New(errs.Decompression, "zlib header invalid", err)
		}
		defer zr.Close()

		out := make([]byte, 0, b.RawSize)
		buf := bytes.NewBuffer(out)
		// Read one byte past the declared size to detect an oversized
		// (lying) blob without buffering unboundedly.
		limited := io.LimitReader(zr, int64(b.RawSize)+1)
		n, err := io.Copy(buf, limited)
		if err != nil {
			return nil, errs.New(errs.Decompression, "zlib inflation failed", err)
		}
		if n != int64(b.RawSize) {
			return nil, errs.New(errs.Decompression,
				fmt.Sprintf("inflated size %d does not match declared raw_size %d", n, b.RawSize), nil)
		}
		return buf.Bytes(), nil

	case b.LzmaData != nil:
		return nil, errs.New(errs.Decompression, "unsupported compression: lzma_data", nil)

	default:
		return nil, errs.New(errs.Decompression, "empty blob: no payload field set", nil)
	}
}
