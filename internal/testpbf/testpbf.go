// Package testpbf hand-encodes minimal OSMPBF byte sequences for
// tests, independent of internal/proto's decode path, so fixtures
// don't silently pass by sharing a bug with the code under test.
package testpbf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
)

func appendVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func appendTag(buf []byte, field int, wireType int) []byte {
	return appendVarint(buf, uint64(field<<3|wireType))
}

func zigzag64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func zigzag32(v int32) uint32 {
	return uint32((v << 1) ^ (v >> 31))
}

func BytesField(buf []byte, field int, data []byte) []byte {
	buf = appendTag(buf, field, 2)
	buf = appendVarint(buf, uint64(len(data)))
	return append(buf, data...)
}

func StringField(buf []byte, field int, s string) []byte {
	return BytesField(buf, field, []byte(s))
}

func VarintField(buf []byte, field int, v uint64) []byte {
	buf = appendTag(buf, field, 0)
	return appendVarint(buf, v)
}

func SVarint64Field(buf []byte, field int, v int64) []byte {
	return VarintField(buf, field, zigzag64(v))
}

func PackedSVarint64Field(buf []byte, field int, deltas []int64) []byte {
	var payload []byte
	for _, d := range deltas {
		payload = appendVarint(payload, zigzag64(d))
	}
	return BytesField(buf, field, payload)
}

func PackedSVarint32Field(buf []byte, field int, deltas []int32) []byte {
	var payload []byte
	for _, d := range deltas {
		payload = appendVarint(payload, uint64(zigzag32(d)))
	}
	return BytesField(buf, field, payload)
}

func PackedVarintField(buf []byte, field int, vals []uint64) []byte {
	var payload []byte
	for _, v := range vals {
		payload = appendVarint(payload, v)
	}
	return BytesField(buf, field, payload)
}

func PackedBoolField(buf []byte, field int, vals []bool) []byte {
	nums := make([]uint64, len(vals))
	for i, v := range vals {
		if v {
			nums[i] = 1
		}
	}
	return PackedVarintField(buf, field, nums)
}

// StringTable encodes osmformat.proto's StringTable message.
func StringTable(strs ...string) []byte {
	var buf []byte
	for _, s := range strs {
		buf = StringField(buf, 1, s)
	}
	return buf
}

// DenseNodesGroupOpts builds a PrimitiveGroup{dense} payload.
type DenseNodesGroupOpts struct {
	IDDeltas  []int64
	LatDeltas []int64
	LonDeltas []int64
	KeysVals  []uint64 // flat, 0-terminated per node
}

func DenseNodesGroup(o DenseNodesGroupOpts) []byte {
	var dn []byte
	dn = PackedSVarint64Field(dn, 1, o.IDDeltas)
	dn = PackedSVarint64Field(dn, 8, o.LatDeltas)
	dn = PackedSVarint64Field(dn, 9, o.LonDeltas)
	if len(o.KeysVals) > 0 {
		dn = PackedVarintField(dn, 10, o.KeysVals)
	}
	return BytesField(nil, 2, dn)
}

// WaysGroupOpts builds a PrimitiveGroup{ways} payload with one way.
type WaysGroupOpts struct {
	ID        int64
	RefDeltas []int64
}

func WaysGroup(o WaysGroupOpts) []byte {
	var w []byte
	w = VarintField(w, 1, uint64(o.ID))
	w = PackedSVarint64Field(w, 8, o.RefDeltas)
	return BytesField(nil, 3, w)
}

// RelationsGroupOpts builds a PrimitiveGroup{relations} payload with
// one relation.
type RelationsGroupOpts struct {
	ID          int64
	MemidDeltas []int64
	Types       []uint64 // 0=node 1=way 2=relation
	RolesSID    []uint64
}

func RelationsGroup(o RelationsGroupOpts) []byte {
	var r []byte
	r = VarintField(r, 1, uint64(o.ID))
	r = PackedVarintField(r, 8, o.RolesSID)
	r = PackedSVarint64Field(r, 9, o.MemidDeltas)
	r = PackedVarintField(r, 10, o.Types)
	return BytesField(nil, 4, r)
}

// PrimitiveBlock assembles a PrimitiveBlock payload from a string
// table and pre-encoded group bytes.
func PrimitiveBlock(stringTable []byte, groups [][]byte, granularity, latOffset, lonOffset int64) []byte {
	var buf []byte
	buf = BytesField(buf, 1, stringTable)
	for _, g := range groups {
		buf = BytesField(buf, 2, g)
	}
	if granularity != 0 && granularity != 100 {
		buf = VarintField(buf, 17, uint64(granularity))
	}
	if latOffset != 0 {
		buf = VarintField(buf, 19, uint64(latOffset))
	}
	if lonOffset != 0 {
		buf = VarintField(buf, 20, uint64(lonOffset))
	}
	return buf
}

// HeaderBlock assembles a minimal HeaderBlock payload.
func HeaderBlock(requiredFeatures, optionalFeatures []string, writingProgram string) []byte {
	var buf []byte
	for _, f := range requiredFeatures {
		buf = StringField(buf, 4, f)
	}
	for _, f := range optionalFeatures {
		buf = StringField(buf, 5, f)
	}
	if writingProgram != "" {
		buf = StringField(buf, 16, writingProgram)
	}
	return buf
}

// Blob wraps a payload as a fileformat.proto Blob message, optionally
// zlib-compressing it.
func Blob(payload []byte, compress bool) ([]byte, error) {
	var buf []byte
	if !compress {
		return BytesField(buf, 1, payload), nil
	}
	var zbuf bytes.Buffer
	w := zlib.NewWriter(&zbuf)
	if _, err := w.Write(payload); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	buf = VarintField(buf, 2, uint64(len(payload)))
	buf = BytesField(buf, 3, zbuf.Bytes())
	return buf, nil
}

// LzmaBlob wraps payload as a Blob with the lzma_data field set. No
// real LZMA encoding happens — this repo always rejects the field
// before attempting to decompress it.
func LzmaBlob(payload []byte) []byte {
	return BytesField(nil, 4, payload)
}

// FrameRaw wraps an already-built Blob message with its BlobHeader and
// length prefix.
func FrameRaw(blobType string, blob []byte) []byte {
	var header []byte
	header = StringField(header, 1, blobType)
	header = VarintField(header, 3, uint64(len(blob)))

	var out []byte
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(header)))
	out = append(out, lenPrefix[:]...)
	out = append(out, header...)
	out = append(out, blob...)
	return out
}

// Frame wraps a Blob payload with its BlobHeader and length prefix,
// ready to append to a byte stream.
func Frame(blobType string, payload []byte, compress bool) ([]byte, error) {
	blob, err := Blob(payload, compress)
	if err != nil {
		return nil, err
	}
	return FrameRaw(blobType, blob), nil
}

// Stream concatenates frames into a full byte stream.
func Stream(frames ...[]byte) []byte {
	var out []byte
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}
