package wire

import "testing"

func appendVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 40, 1<<64 - 1}
	for _, c := range cases {
		buf := appendVarint(nil, c)
		r := NewReader(buf)
		got, err := r.Varint()
		if err != nil {
			t.Fatalf("varint %d: %v", c, err)
		}
		if got != c {
			t.Fatalf("varint %d: got %d", c, got)
		}
		if !r.Done() {
			t.Fatalf("varint %d: reader not exhausted", c)
		}
	}
}

func TestZigZag(t *testing.T) {
	cases := []int64{0, -1, 1, -2, 2, 2147483647, -2147483648}
	for _, c := range cases {
		enc := uint64((c << 1) ^ (c >> 63))
		got := ZigZagDecode64(enc)
		if got != c {
			t.Fatalf("zigzag64(%d): got %d", c, got)
		}
	}
}

func TestTruncatedVarintErrors(t *testing.T) {
	r := NewReader([]byte{0x80, 0x80})
	if _, err := r.Varint(); err == nil {
		t.Fatal("expected truncated varint error")
	}
}

func TestBytesField(t *testing.T) {
	var buf []byte
	buf = appendVarint(buf, 5)
	buf = append(buf, "hello"...)
	r := NewReader(buf)
	got, err := r.String()
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestBytesFieldTruncated(t *testing.T) {
	var buf []byte
	buf = appendVarint(buf, 10)
	buf = append(buf, "short"...)
	r := NewReader(buf)
	if _, err := r.Bytes(); err == nil {
		t.Fatal("expected truncated bytes error")
	}
}

func TestTagAndSkip(t *testing.T) {
	var buf []byte
	buf = appendVarint(buf, (1<<3)|uint64(Varint))
	buf = appendVarint(buf, 42)
	buf = appendVarint(buf, (2<<3)|uint64(Bytes))
	buf = appendVarint(buf, 3)
	buf = append(buf, "abc"...)

	r := NewReader(buf)
	field, typ, err := r.Tag()
	if err != nil || field != 1 || typ != Varint {
		t.Fatalf("tag1: field=%d typ=%d err=%v", field, typ, err)
	}
	if err := r.Skip(typ); err != nil {
		t.Fatal(err)
	}
	field, typ, err = r.Tag()
	if err != nil || field != 2 || typ != Bytes {
		t.Fatalf("tag2: field=%d typ=%d err=%v", field, typ, err)
	}
	s, err := r.String()
	if err != nil || s != "abc" {
		t.Fatalf("string: %q %v", s, err)
	}
	if !r.Done() {
		t.Fatal("expected reader exhausted")
	}
}

func TestPackedSVarints64Deltas(t *testing.T) {
	deltas := []int64{5, 10, -3}
	var payload []byte
	for _, d := range deltas {
		zz := uint64((d << 1) ^ (d >> 63))
		payload = appendVarint(payload, zz)
	}
	var buf []byte
	buf = appendVarint(buf, uint64(len(payload)))
	buf = append(buf, payload...)

	r := NewReader(buf)
	got, err := PackedSVarints64(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 5 || got[1] != 10 || got[2] != -3 {
		t.Fatalf("got %v", got)
	}
}
