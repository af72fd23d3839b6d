package block

import (
	"testing"

	"github.com/wegman-software/go-osmpbf/internal/arena"
	"github.com/wegman-software/go-osmpbf/internal/proto"
)

func strTable(ss ...string) *proto.StringTable {
	st := &proto.StringTable{}
	for _, s := range ss {
		st.S = append(st.S, []byte(s))
	}
	return st
}

func TestParseDenseNodesLocationScaling(t *testing.T) {
	pb := &proto.PrimitiveBlock{
		Stringtable: strTable(""),
		Granularity: 100,
		Primitivegroup: []*proto.PrimitiveGroup{
			{Dense: &proto.DenseNodes{
				ID:  []int64{1, 1, 1},
				Lat: []int64{100, 0, -50},
				Lon: []int64{200, 0, 0},
			}},
		},
	}
	a := arena.New(256)
	if err := Parse(pb, ReadAll, a); err != nil {
		t.Fatal(err)
	}

	want := []struct {
		id       int64
		lon, lat int32
	}{
		{1, 200, 100},
		{2, 200, 100},
		{3, 200, 50},
	}
	c := a.Cursor()
	for _, w := range want {
		typ, r, ok := c.Next()
		if !ok || typ != arena.RecordNode {
			t.Fatalf("expected node record for id %d", w.id)
		}
		id := r.GetInt64()
		_ = r.GetUint32() // version
		visible := r.GetBool()
		_ = r.GetInt64() // timestamp
		_ = r.GetUint32() // uid
		_ = r.GetUint32() // changeset
		_ = r.GetString() // user
		hasLoc := r.GetBool()
		lon := r.GetInt32()
		lat := r.GetInt32()
		if id != w.id || !visible || !hasLoc || lon != w.lon || lat != w.lat {
			t.Fatalf("node %d: got id=%d visible=%v hasLoc=%v lon=%d lat=%d", w.id, id, visible, hasLoc, lon, lat)
		}
	}
}

func TestParseWayDeltaRefs(t *testing.T) {
	pb := &proto.PrimitiveBlock{
		Stringtable: strTable(""),
		Primitivegroup: []*proto.PrimitiveGroup{
			{Ways: []*proto.Way{{ID: 1, Refs: []int64{10, -3, 5}}}},
		},
	}
	a := arena.New(256)
	if err := Parse(pb, ReadAll, a); err != nil {
		t.Fatal(err)
	}
	c := a.Cursor()
	typ, r, ok := c.Next()
	if !ok || typ != arena.RecordWay {
		t.Fatal("expected way record")
	}
	r.GetInt64()  // id
	r.GetUint32() // version
	r.GetBool()   // visible
	r.GetInt64()  // timestamp
	r.GetUint32() // uid
	r.GetUint32() // changeset
	r.GetString() // user
	r.GetUint32() // tag count (0)
	refs := r.GetInt64Slice()
	want := []int64{10, 7, 12}
	for i, v := range want {
		if refs[i] != v {
			t.Fatalf("ref[%d]: got %d want %d", i, refs[i], v)
		}
	}
}

func TestParseRelationMixedMembers(t *testing.T) {
	pb := &proto.PrimitiveBlock{
		Stringtable: strTable("", "", "outer", "inner"),
		Primitivegroup: []*proto.PrimitiveGroup{
			{Relations: []*proto.Relation{{
				ID:       1,
				Memids:   []int64{5, 10, -3},
				Types:    []proto.MemberType{proto.MemberNode, proto.MemberWay, proto.MemberRelation},
				RolesSID: []int32{2, 3, 2},
			}}},
		},
	}
	a := arena.New(256)
	if err := Parse(pb, ReadAll, a); err != nil {
		t.Fatal(err)
	}
	c := a.Cursor()
	typ, r, ok := c.Next()
	if !ok || typ != arena.RecordRelation {
		t.Fatal("expected relation record")
	}
	r.GetInt64()
	r.GetUint32()
	r.GetBool()
	r.GetInt64()
	r.GetUint32()
	r.GetUint32()
	r.GetString()
	r.GetUint32() // tag count

	memberCount := r.GetUint32()
	if memberCount != 3 {
		t.Fatalf("member count: got %d", memberCount)
	}
	wantType := []uint8{0, 1, 2}
	wantRef := []int64{5, 15, 12}
	wantRole := []string{"outer", "inner", "outer"}
	for i := 0; i < 3; i++ {
		ty := r.GetUint8()
		ref := r.GetInt64()
		role := r.GetString()
		if ty != wantType[i] || ref != wantRef[i] || role != wantRole[i] {
			t.Fatalf("member %d: got type=%d ref=%d role=%q", i, ty, ref, role)
		}
	}
}

func TestParseUnknownGroupFails(t *testing.T) {
	pb := &proto.PrimitiveBlock{
		Stringtable:    strTable(""),
		Primitivegroup: []*proto.PrimitiveGroup{{}},
	}
	a := arena.New(64)
	if err := Parse(pb, ReadAll, a); err == nil {
		t.Fatal("expected unknown group error")
	}
}

func TestParseFiltersByReadMask(t *testing.T) {
	pb := &proto.PrimitiveBlock{
		Stringtable: strTable(""),
		Primitivegroup: []*proto.PrimitiveGroup{
			{Ways: []*proto.Way{{ID: 1}}},
			{Relations: []*proto.Relation{{ID: 2}}},
		},
	}
	a := arena.New(64)
	if err := Parse(pb, ReadWays, a); err != nil {
		t.Fatal(err)
	}
	c := a.Cursor()
	typ, _, ok := c.Next()
	if !ok || typ != arena.RecordWay {
		t.Fatal("expected only the way record")
	}
	_, _, ok = c.Next()
	if ok {
		t.Fatal("relation group should have been skipped")
	}
}

func TestParseTagOutOfRangeStringIndexFails(t *testing.T) {
	pb := &proto.PrimitiveBlock{
		Stringtable: strTable(""),
		Primitivegroup: []*proto.PrimitiveGroup{
			{Nodes: []*proto.Node{{ID: 1, Keys: []uint32{5}, Vals: []uint32{0}}}},
		},
	}
	a := arena.New(64)
	if err := Parse(pb, ReadAll, a); err == nil {
		t.Fatal("expected out-of-range string index error")
	}
}
