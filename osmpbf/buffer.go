package osmpbf

import "github.com/wegman-software/go-osmpbf/internal/arena"

// Buffer holds one decoded blob's entities, in source order. It is
// exclusively owned by whichever stage currently holds it; Scanner
// drains it through Iterate and discards it once empty.
type Buffer struct {
	a *arena.Arena
}

// Empty reports a clean end-of-stream arena (zero committed bytes).
func (b *Buffer) Empty() bool {
	return b == nil || b.a == nil || b.a.Len() == 0
}

// Iterate calls fn once per decoded entity, in source order, with a
// *Node, *Way, or *Relation. It stops at the first error fn returns.
func (b *Buffer) Iterate(fn func(obj interface{}) error) error {
	if b.Empty() {
		return nil
	}
	c := b.a.Cursor()
	for {
		typ, r, ok := c.Next()
		if !ok {
			return nil
		}
		var obj interface{}
		switch typ {
		case arena.RecordNode:
			obj = readNode(r)
		case arena.RecordWay:
			obj = readWay(r)
		case arena.RecordRelation:
			obj = readRelation(r)
		}
		if err := fn(obj); err != nil {
			return err
		}
	}
}

func readHeaderFields(r *arena.ValueReader) header {
	return header{
		ID:        r.GetInt64(),
		Version:   r.GetUint32(),
		Visible:   r.GetBool(),
		Timestamp: r.GetInt64(),
		UID:       r.GetUint32(),
		Changeset: r.GetUint32(),
		User:      r.GetString(),
	}
}

func readTags(r *arena.ValueReader) Tags {
	n := r.GetUint32()
	if n == 0 {
		return nil
	}
	tags := make(Tags, n)
	for i := range tags {
		tags[i] = Tag{Key: r.GetString(), Value: r.GetString()}
	}
	return tags
}

func readNode(r *arena.ValueReader) *Node {
	h := readHeaderFields(r)
	hasLoc := r.GetBool()
	lon := r.GetInt32()
	lat := r.GetInt32()
	h.Tags = readTags(r)

	loc := undefinedLocation
	if hasLoc {
		loc = Location{Lon: lon, Lat: lat}
	}
	return &Node{header: h, Location: loc}
}

func readWay(r *arena.ValueReader) *Way {
	h := readHeaderFields(r)
	h.Tags = readTags(r)
	refs := r.GetInt64Slice()
	return &Way{header: h, Refs: refs}
}

func readRelation(r *arena.ValueReader) *Relation {
	h := readHeaderFields(r)
	h.Tags = readTags(r)
	n := r.GetUint32()
	var members []Member
	if n > 0 {
		members = make([]Member, n)
		for i := range members {
			members[i] = Member{
				Type: MemberType(r.GetUint8()),
				Ref:  r.GetInt64(),
				Role: r.GetString(),
			}
		}
	}
	return &Relation{header: h, Members: members}
}
