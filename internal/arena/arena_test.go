package arena

import "testing"

func TestCommitAndIterateRoundTrip(t *testing.T) {
	a := New(64)
	b := NewBuilder()

	b.Reset(RecordNode)
	b.PutInt64(42)
	b.PutString("hello")
	b.PutInt64Slice([]int64{1, -2, 3})
	a.Commit(b)

	b.Reset(RecordWay)
	b.PutInt64(7)
	b.PutString("")
	a.Commit(b)

	c := a.Cursor()

	typ, r, ok := c.Next()
	if !ok || typ != RecordNode {
		t.Fatalf("record 1: typ=%d ok=%v", typ, ok)
	}
	if id := r.GetInt64(); id != 42 {
		t.Fatalf("id: got %d", id)
	}
	if s := r.GetString(); s != "hello" {
		t.Fatalf("string: got %q", s)
	}
	if refs := r.GetInt64Slice(); len(refs) != 3 || refs[1] != -2 {
		t.Fatalf("refs: got %v", refs)
	}

	typ, r, ok = c.Next()
	if !ok || typ != RecordWay {
		t.Fatalf("record 2: typ=%d ok=%v", typ, ok)
	}
	if id := r.GetInt64(); id != 7 {
		t.Fatalf("id: got %d", id)
	}

	_, _, ok = c.Next()
	if ok {
		t.Fatal("expected cursor exhausted")
	}
}

func TestRecordsAreAligned(t *testing.T) {
	a := New(64)
	b := NewBuilder()
	b.Reset(RecordNode)
	b.PutString("x") // 10-byte record (5 prefix + 5 payload) forces padding
	a.Commit(b)
	b.Reset(RecordNode)
	b.PutInt64(99)
	a.Commit(b)

	c := a.Cursor()
	_, _, ok := c.Next()
	if !ok {
		t.Fatal("expected first record")
	}
	if c.pos%align != 0 {
		t.Fatalf("cursor position %d not aligned to %d", c.pos, align)
	}
	_, r, ok := c.Next()
	if !ok || r.GetInt64() != 99 {
		t.Fatal("second record misaligned or corrupted")
	}
}

func TestArenaGrowsBeyondInitialCapacity(t *testing.T) {
	a := New(8)
	b := NewBuilder()
	for i := 0; i < 100; i++ {
		b.Reset(RecordNode)
		b.PutInt64(int64(i))
		b.PutString("padding-to-force-growth")
		a.Commit(b)
	}
	c := a.Cursor()
	count := 0
	for {
		_, r, ok := c.Next()
		if !ok {
			break
		}
		if r.GetInt64() != int64(count) {
			t.Fatalf("record %d: id mismatch", count)
		}
		count++
	}
	if count != 100 {
		t.Fatalf("got %d records, want 100", count)
	}
}
