package zreader

import (
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/wegman-software/go-osmpbf/internal/proto"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPayloadRawPassthrough(t *testing.T) {
	b := &proto.Blob{Raw: []byte("hello")}
	got, err := Payload(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestPayloadZlibInflate(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	b := &proto.Blob{ZlibData: deflate(t, data), RawSize: int32(len(data)), HasRaw: true}
	got, err := Payload(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(data) {
		t.Fatalf("got %q want %q", got, data)
	}
}

func TestPayloadZlibSizeMismatch(t *testing.T) {
	data := []byte("some data")
	b := &proto.Blob{ZlibData: deflate(t, data), RawSize: int32(len(data) + 1), HasRaw: true}
	if _, err := Payload(b); err == nil {
		t.Fatal("expected size mismatch error")
	}
}

func TestPayloadLzmaRejected(t *testing.T) {
	b := &proto.Blob{LzmaData: []byte{1, 2, 3}}
	if _, err := Payload(b); err == nil {
		t.Fatal("expected lzma rejection")
	}
}

func TestPayloadEmptyBlobFails(t *testing.T) {
	b := &proto.Blob{}
	if _, err := Payload(b); err == nil {
		t.Fatal("expected empty blob error")
	}
}
