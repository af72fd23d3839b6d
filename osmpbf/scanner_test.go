package osmpbf

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/wegman-software/go-osmpbf/internal/block"
	"github.com/wegman-software/go-osmpbf/internal/testpbf"
)

func headerFrame(t *testing.T, required, optional []string, writingProgram string) []byte {
	t.Helper()
	hb := testpbf.HeaderBlock(required, optional, writingProgram)
	f, err := testpbf.Frame("OSMHeader", hb, false)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// Scenario 1: empty stream.
func TestScenarioEmptyStream(t *testing.T) {
	_, err := Open(context.Background(), bytes.NewReader(nil), Options{})
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != KindFraming {
		t.Fatalf("expected framing error, got %v", err)
	}
}

// Scenario 2: header only, no data blobs.
func TestScenarioHeaderOnly(t *testing.T) {
	stream := headerFrame(t, []string{"OsmSchema-V0.6", "DenseNodes"}, nil, "test-writer-1.0")
	s, err := Open(context.Background(), bytes.NewReader(stream), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if s.Header().Generator != "test-writer-1.0" {
		t.Fatalf("generator: got %q", s.Header().Generator)
	}
	if !s.Header().DenseNodes {
		t.Fatal("expected DenseNodes flag set")
	}
	if s.Scan() {
		t.Fatal("expected no entities")
	}
	if s.Err() != nil {
		t.Fatalf("expected clean EOF, got %v", s.Err())
	}
}

// Scenario 3: single dense-node blob with the corrected location math
// (see DESIGN.md for why this departs from spec.md's literal numbers).
func TestScenarioDenseNodeBlob(t *testing.T) {
	header := headerFrame(t, []string{"DenseNodes"}, nil, "")
	group := testpbf.DenseNodesGroup(testpbf.DenseNodesGroupOpts{
		IDDeltas:  []int64{1, 1, 1},
		LatDeltas: []int64{100, 0, -50},
		LonDeltas: []int64{200, 0, 0},
	})
	pb := testpbf.PrimitiveBlock(testpbf.StringTable(""), [][]byte{group}, 100, 0, 0)
	data, err := testpbf.Frame("OSMData", pb, false)
	if err != nil {
		t.Fatal(err)
	}
	stream := testpbf.Stream(header, data)

	s, err := Open(context.Background(), bytes.NewReader(stream), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	want := []struct {
		id       int64
		lon, lat int32
	}{
		{1, 200, 100},
		{2, 200, 100},
		{3, 200, 50},
	}
	for _, w := range want {
		if !s.Scan() {
			t.Fatalf("expected node %d, got Scan()=false, err=%v", w.id, s.Err())
		}
		n, ok := s.Object().(*Node)
		if !ok {
			t.Fatalf("expected *Node, got %T", s.Object())
		}
		if n.ID != w.id || n.Location.Lon != w.lon || n.Location.Lat != w.lat {
			t.Fatalf("node %d: got id=%d lon=%d lat=%d", w.id, n.ID, n.Location.Lon, n.Location.Lat)
		}
	}
	if s.Scan() {
		t.Fatal("expected exactly 3 nodes")
	}
}

// Scenario 4: way with delta refs.
func TestScenarioWayDeltaRefs(t *testing.T) {
	header := headerFrame(t, nil, nil, "")
	group := testpbf.WaysGroup(testpbf.WaysGroupOpts{ID: 1, RefDeltas: []int64{10, -3, 5}})
	pb := testpbf.PrimitiveBlock(testpbf.StringTable(""), [][]byte{group}, 100, 0, 0)
	data, err := testpbf.Frame("OSMData", pb, false)
	if err != nil {
		t.Fatal(err)
	}
	stream := testpbf.Stream(header, data)

	s, err := Open(context.Background(), bytes.NewReader(stream), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if !s.Scan() {
		t.Fatalf("expected a way, err=%v", s.Err())
	}
	w, ok := s.Object().(*Way)
	if !ok {
		t.Fatalf("expected *Way, got %T", s.Object())
	}
	want := []int64{10, 7, 12}
	if len(w.Refs) != len(want) {
		t.Fatalf("refs: got %v want %v", w.Refs, want)
	}
	for i, v := range want {
		if w.Refs[i] != v {
			t.Fatalf("ref[%d]: got %d want %d", i, w.Refs[i], v)
		}
	}
}

// Scenario 5: relation with mixed members.
func TestScenarioRelationMixedMembers(t *testing.T) {
	header := headerFrame(t, nil, nil, "")
	group := testpbf.RelationsGroup(testpbf.RelationsGroupOpts{
		ID:          1,
		MemidDeltas: []int64{5, 10, -3},
		Types:       []uint64{0, 1, 2},
		RolesSID:    []uint64{2, 3, 2},
	})
	pb := testpbf.PrimitiveBlock(testpbf.StringTable("", "", "outer", "inner"), [][]byte{group}, 100, 0, 0)
	data, err := testpbf.Frame("OSMData", pb, false)
	if err != nil {
		t.Fatal(err)
	}
	stream := testpbf.Stream(header, data)

	s, err := Open(context.Background(), bytes.NewReader(stream), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if !s.Scan() {
		t.Fatalf("expected a relation, err=%v", s.Err())
	}
	rel, ok := s.Object().(*Relation)
	if !ok {
		t.Fatalf("expected *Relation, got %T", s.Object())
	}
	want := []Member{
		{Type: MemberNode, Ref: 5, Role: "outer"},
		{Type: MemberWay, Ref: 15, Role: "inner"},
		{Type: MemberRelation, Ref: 12, Role: "outer"},
	}
	if len(rel.Members) != len(want) {
		t.Fatalf("members: got %v want %v", rel.Members, want)
	}
	for i, w := range want {
		if rel.Members[i] != w {
			t.Fatalf("member[%d]: got %+v want %+v", i, rel.Members[i], w)
		}
	}
}

// Scenario 6: unsupported required feature.
func TestScenarioUnsupportedRequiredFeature(t *testing.T) {
	stream := headerFrame(t, []string{"OsmSchema-V0.6", "Sort.Type_then_ID"}, nil, "")
	_, err := Open(context.Background(), bytes.NewReader(stream), Options{})
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != KindSemantic {
		t.Fatalf("expected semantic error, got %v", err)
	}
}

// Scenario 7: LZMA blob is rejected, never attempted.
func TestScenarioLzmaRejected(t *testing.T) {
	header := headerFrame(t, nil, nil, "")
	blob := testpbf.LzmaBlob([]byte("not real lzma data"))
	data := testpbf.FrameRaw("OSMData", blob)
	stream := testpbf.Stream(header, data)

	s, err := Open(context.Background(), bytes.NewReader(stream), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if s.Scan() {
		t.Fatal("expected decode failure, not an entity")
	}
	var de *DecodeError
	if !errors.As(s.Err(), &de) || de.Kind != KindDecompression {
		t.Fatalf("expected decompression error, got %v", s.Err())
	}
}

// Filter correctness: enabling only ways yields zero nodes/relations.
func TestFilterWaysOnly(t *testing.T) {
	header := headerFrame(t, nil, nil, "")
	wayGroup := testpbf.WaysGroup(testpbf.WaysGroupOpts{ID: 1, RefDeltas: []int64{1}})
	relGroup := testpbf.RelationsGroup(testpbf.RelationsGroupOpts{
		ID: 2, MemidDeltas: []int64{1}, Types: []uint64{0}, RolesSID: []uint64{0},
	})
	pb1 := testpbf.PrimitiveBlock(testpbf.StringTable(""), [][]byte{wayGroup}, 100, 0, 0)
	pb2 := testpbf.PrimitiveBlock(testpbf.StringTable(""), [][]byte{relGroup}, 100, 0, 0)
	data1, err := testpbf.Frame("OSMData", pb1, false)
	if err != nil {
		t.Fatal(err)
	}
	data2, err := testpbf.Frame("OSMData", pb2, false)
	if err != nil {
		t.Fatal(err)
	}
	stream := testpbf.Stream(header, data1, data2)

	s, err := Open(context.Background(), bytes.NewReader(stream), Options{Mask: block.ReadWays})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var kinds []string
	for s.Scan() {
		switch s.Object().(type) {
		case *Way:
			kinds = append(kinds, "way")
		case *Relation:
			kinds = append(kinds, "relation")
		}
	}
	if s.Err() != nil {
		t.Fatal(s.Err())
	}
	if len(kinds) != 1 || kinds[0] != "way" {
		t.Fatalf("expected only a way, got %v", kinds)
	}
}
