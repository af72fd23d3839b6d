// Package wire is a minimal, hand-rolled protobuf wire-format reader:
// varints, zigzag signed varints, length-delimited fields, and
// skip-by-wire-type for fields the caller doesn't recognize. It knows
// nothing about .proto message shapes — internal/proto builds those on
// top of it.
package wire

import (
	"io"

	"github.com/wegman-software/go-osmpbf/internal/errs"
)

// Type is a protobuf wire type.
type Type int

const (
	Varint  Type = 0
	Fixed64 Type = 1
	Bytes   Type = 2
	Fixed32 Type = 5
)

// Reader decodes protobuf wire-format fields from an in-memory buffer.
// It never copies the buffer; returned byte slices alias it.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Done reports whether every byte has been consumed.
func (r *Reader) Done() bool {
	return r.pos >= len(r.buf)
}

// Tag reads a field tag, returning the field number and wire type.
func (r *Reader) Tag() (field int, typ Type, err error) {
	v, err := r.varint()
	if err != nil {
		return 0, 0, err
	}
	return int(v >> 3), Type(v & 0x7), nil
}

func (r *Reader) varint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		if r.pos >= len(r.buf) {
			return 0, errs.New(errs.Protobuf, "truncated varint", io.ErrUnexpectedEOF)
		}
		b := r.buf[r.pos]
		r.pos++
		if shift == 63 && b > 1 {
			return 0, errs.New(errs.Protobuf, "varint overflows 64 bits", nil)
		}
		result |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, errs.New(errs.Protobuf, "varint overflows 64 bits", nil)
		}
	}
}

// Varint reads a raw unsigned varint.
func (r *Reader) Varint() (uint64, error) {
	return r.varint()
}

// Int64 reads a plain (non-zigzag) int64 field.
func (r *Reader) Int64() (int64, error) {
	v, err := r.varint()
	return int64(v), err
}

// Int32 reads a plain int32 field. Protobuf encodes negative int32
// values sign-extended to a 10-byte 64-bit varint; truncating the
// low 32 bits of the decoded uint64 recovers the original value
// either way.
func (r *Reader) Int32() (int32, error) {
	v, err := r.varint()
	return int32(v), err
}

// SInt64 reads a zigzag-encoded signed 64-bit field.
func (r *Reader) SInt64() (int64, error) {
	v, err := r.varint()
	if err != nil {
		return 0, err
	}
	return ZigZagDecode64(v), nil
}

// SInt32 reads a zigzag-encoded signed 32-bit field.
func (r *Reader) SInt32() (int32, error) {
	v, err := r.varint()
	if err != nil {
		return 0, err
	}
	return ZigZagDecode32(uint32(v)), nil
}

// Bool reads a protobuf bool (varint 0/1).
func (r *Reader) Bool() (bool, error) {
	v, err := r.varint()
	return v != 0, err
}

// Bytes reads a length-delimited field; the returned slice aliases the
// reader's underlying buffer.
func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.varint()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(r.buf)-r.pos) {
		return nil, errs.New(errs.Protobuf, "length-delimited field runs past end of message", io.ErrUnexpectedEOF)
	}
	b := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

// String reads a length-delimited field as a string.
func (r *Reader) String() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Skip consumes and discards a field of the given wire type.
func (r *Reader) Skip(typ Type) error {
	switch typ {
	case Varint:
		_, err := r.varint()
		return err
	case Fixed64:
		return r.skipN(8)
	case Bytes:
		_, err := r.Bytes()
		return err
	case Fixed32:
		return r.skipN(4)
	default:
		return errs.New(errs.Protobuf, "unknown wire type", nil)
	}
}

func (r *Reader) skipN(n int) error {
	if r.pos+n > len(r.buf) {
		return errs.New(errs.Protobuf, "fixed-width field runs past end of message", io.ErrUnexpectedEOF)
	}
	r.pos += n
	return nil
}

// ZigZagDecode64 reverses protobuf's zigzag encoding for sint64.
func ZigZagDecode64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// ZigZagDecode32 reverses protobuf's zigzag encoding for sint32.
func ZigZagDecode32(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

// PackedVarints reads a length-delimited field and decodes it as a run
// of plain (non-zigzag) varints — used for fields like dense nodes'
// keys_vals or a way's packed node refs' string-table-index siblings.
func PackedVarints(r *Reader) ([]uint64, error) {
	data, err := r.Bytes()
	if err != nil {
		return nil, err
	}
	sub := NewReader(data)
	var out []uint64
	for !sub.Done() {
		v, err := sub.varint()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// PackedSVarints64 reads a length-delimited field and decodes it as a
// run of zigzag-encoded 64-bit varints (delta-coded ids, lat/lon, etc).
func PackedSVarints64(r *Reader) ([]int64, error) {
	raw, err := PackedVarints(r)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(raw))
	for i, v := range raw {
		out[i] = ZigZagDecode64(v)
	}
	return out, nil
}

// PackedSVarints32 reads a length-delimited field and decodes it as a
// run of zigzag-encoded 32-bit varints (DenseInfo's uid/user_sid deltas).
func PackedSVarints32(r *Reader) ([]int32, error) {
	raw, err := PackedVarints(r)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(raw))
	for i, v := range raw {
		out[i] = ZigZagDecode32(uint32(v))
	}
	return out, nil
}

// PackedInt32s reads a length-delimited field and decodes it as a run
// of plain int32 varints (DenseInfo's version, dense keys_vals, a
// relation's roles_sid and member types).
func PackedInt32s(r *Reader) ([]int32, error) {
	raw, err := PackedVarints(r)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(raw))
	for i, v := range raw {
		out[i] = int32(v)
	}
	return out, nil
}

// PackedUint32s reads a length-delimited field and decodes it as a run
// of plain uint32 varints (string-table indices in keys/vals arrays).
func PackedUint32s(r *Reader) ([]uint32, error) {
	raw, err := PackedVarints(r)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(raw))
	for i, v := range raw {
		out[i] = uint32(v)
	}
	return out, nil
}

// PackedBools reads a length-delimited field and decodes it as a run
// of packed protobuf bools.
func PackedBools(r *Reader) ([]bool, error) {
	raw, err := PackedVarints(r)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(raw))
	for i, v := range raw {
		out[i] = v != 0
	}
	return out, nil
}
