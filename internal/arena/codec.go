package arena

import "encoding/binary"

// Builder accumulates one record's payload in a reusable scratch
// buffer. Reset it for the next record rather than allocating a new
// one; Commit copies the finished payload into the arena.
type Builder struct {
	typ     RecordType
	payload []byte
}

func NewBuilder() *Builder {
	return &Builder{payload: make([]byte, 0, 256)}
}

// Reset starts building a new record of the given type.
func (b *Builder) Reset(typ RecordType) {
	b.typ = typ
	b.payload = b.payload[:0]
}

func (b *Builder) PutUint8(v uint8) {
	b.payload = append(b.payload, v)
}

func (b *Builder) PutBool(v bool) {
	if v {
		b.PutUint8(1)
	} else {
		b.PutUint8(0)
	}
}

func (b *Builder) PutUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.payload = append(b.payload, tmp[:]...)
}

func (b *Builder) PutInt32(v int32) {
	b.PutUint32(uint32(v))
}

func (b *Builder) PutInt64(v int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	b.payload = append(b.payload, tmp[:]...)
}

func (b *Builder) PutString(s string) {
	b.PutUint32(uint32(len(s)))
	b.payload = append(b.payload, s...)
}

func (b *Builder) PutInt64Slice(vs []int64) {
	b.PutUint32(uint32(len(vs)))
	for _, v := range vs {
		b.PutInt64(v)
	}
}

// ValueReader decodes a record payload written by Builder, using the
// same call order the writer used — the record carries no field tags
// of its own, so caller and callee must agree on layout by construction.
type ValueReader struct {
	buf []byte
	pos int
}

func NewValueReader(buf []byte) *ValueReader {
	return &ValueReader{buf: buf}
}

func (r *ValueReader) GetUint8() uint8 {
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *ValueReader) GetBool() bool {
	return r.GetUint8() != 0
}

func (r *ValueReader) GetUint32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *ValueReader) GetInt32() int32 {
	return int32(r.GetUint32())
}

func (r *ValueReader) GetInt64() int64 {
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return int64(v)
}

func (r *ValueReader) GetString() string {
	n := r.GetUint32()
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s
}

func (r *ValueReader) GetInt64Slice() []int64 {
	n := r.GetUint32()
	out := make([]int64, n)
	for i := range out {
		out[i] = r.GetInt64()
	}
	return out
}
