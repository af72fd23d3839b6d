package pipeline

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/wegman-software/go-osmpbf/internal/block"
	"github.com/wegman-software/go-osmpbf/internal/frame"
	"github.com/wegman-software/go-osmpbf/internal/testpbf"
)

// osmDataFrame builds one OSMData frame carrying a single dense node
// with the given id, tagged so tests can tell frames apart after
// decode by inspecting the node id.
func osmDataFrame(t *testing.T, id int64) []byte {
	t.Helper()
	group := testpbf.DenseNodesGroup(testpbf.DenseNodesGroupOpts{
		IDDeltas:  []int64{id},
		LatDeltas: []int64{1},
		LonDeltas: []int64{1},
	})
	pbBlock := testpbf.PrimitiveBlock(testpbf.StringTable(""), [][]byte{group}, 100, 0, 0)
	f, err := testpbf.Frame("OSMData", pbBlock, false)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func streamOf(t *testing.T, ids ...int64) []byte {
	t.Helper()
	frames := make([][]byte, len(ids))
	for i, id := range ids {
		frames[i] = osmDataFrame(t, id)
	}
	return testpbf.Stream(frames...)
}

func runScheduler(t *testing.T, stream []byte, workers int) []int64 {
	t.Helper()
	src := frame.NewIOSource(bytes.NewReader(stream))
	cfg := DefaultConfig()
	cfg.Workers = workers
	cfg.Mask = block.ReadAll
	s := New(src, cfg, nil)
	s.Start(context.Background())
	defer s.Close()

	var ids []int64
	for {
		a, err := s.Read()
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if a.Len() == 0 {
			break
		}
		c := a.Cursor()
		_, r, ok := c.Next()
		if !ok {
			t.Fatal("expected one node record in arena")
		}
		ids = append(ids, r.GetInt64())
	}
	return ids
}

func TestSchedulerPreservesOrderSingleWorker(t *testing.T) {
	want := []int64{100, 101, 102, 103, 104}
	got := runScheduler(t, streamOf(t, want...), 1)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v want %v", i, got, want)
		}
	}
}

func TestSchedulerPreservesOrderMultiWorker(t *testing.T) {
	want := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := runScheduler(t, streamOf(t, want...), 4)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v want %v", i, got, want)
		}
	}
}

func TestSchedulerBackpressureBounds(t *testing.T) {
	ids := make([]int64, 50)
	for i := range ids {
		ids[i] = int64(i)
	}
	src := frame.NewIOSource(bytes.NewReader(streamOf(t, ids...)))
	cfg := DefaultConfig()
	cfg.Workers = 4
	cfg.MaxWorkQueue = 2
	cfg.MaxBufferQueue = 2
	cfg.PollInterval = time.Millisecond
	s := New(src, cfg, nil)
	s.Start(context.Background())
	defer s.Close()

	var got []int64
	for {
		a, err := s.Read()
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if a.Len() == 0 {
			break
		}
		c := a.Cursor()
		_, r, ok := c.Next()
		if !ok {
			t.Fatal("expected node record")
		}
		got = append(got, r.GetInt64())
	}
	if len(got) != len(ids) {
		t.Fatalf("got %d results, want %d", len(got), len(ids))
	}
	for i := range ids {
		if got[i] != ids[i] {
			t.Fatalf("order mismatch at %d: got %d want %d", i, got[i], ids[i])
		}
	}
}

func TestSchedulerPropagatesDecodeError(t *testing.T) {
	good := osmDataFrame(t, 1)
	// A frame whose declared blob type doesn't match "OSMData" is a
	// framing error the scheduler must surface through Read, not a
	// silent skip.
	badHeader, err := testpbf.Frame("OSMHeader", []byte{}, false)
	if err != nil {
		t.Fatal(err)
	}
	stream := testpbf.Stream(good, badHeader)

	src := frame.NewIOSource(bytes.NewReader(stream))
	cfg := DefaultConfig()
	cfg.Workers = 2
	s := New(src, cfg, nil)
	s.Start(context.Background())
	defer s.Close()

	a, err := s.Read()
	if err != nil {
		t.Fatalf("first frame should decode cleanly: %v", err)
	}
	if a.Len() == 0 {
		t.Fatal("expected first node arena")
	}

	_, err = s.Read()
	if err == nil {
		t.Fatal("expected type-mismatch error on second frame")
	}
}

func TestSchedulerCloseDoesNotDeadlock(t *testing.T) {
	ids := make([]int64, 200)
	for i := range ids {
		ids[i] = int64(i)
	}
	src := frame.NewIOSource(bytes.NewReader(streamOf(t, ids...)))
	cfg := DefaultConfig()
	cfg.Workers = 4
	s := New(src, cfg, nil)
	s.Start(context.Background())

	// Consume a few results, then close without draining the rest.
	for i := 0; i < 3; i++ {
		if _, err := s.Read(); err != nil {
			t.Fatal(err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close deadlocked")
	}
}

func TestSchedulerCancelledContextStopsReaderLoop(t *testing.T) {
	ids := make([]int64, 1000)
	for i := range ids {
		ids[i] = int64(i)
	}
	src := frame.NewIOSource(bytes.NewReader(streamOf(t, ids...)))
	cfg := DefaultConfig()
	cfg.Workers = 2
	s := New(src, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close deadlocked after context cancellation")
	}
}
