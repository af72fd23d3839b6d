package block

import (
	"fmt"

	"github.com/wegman-software/go-osmpbf/internal/arena"
	"github.com/wegman-software/go-osmpbf/internal/errs"
	"github.com/wegman-software/go-osmpbf/internal/proto"
)

// parseRelations decodes a Relations group. memids is a delta-coded
// int64 stream; roles_sid and types are absolute, parallel arrays.
func parseRelations(relations []*proto.Relation, st [][]byte, dateFactor int64, b *arena.Builder, dst *arena.Arena) error {
	for _, rel := range relations {
		if len(rel.Memids) != len(rel.Types) || len(rel.Memids) != len(rel.RolesSID) {
			return errs.New(errs.Semantic, "relation member arrays length mismatch", nil)
		}

		var version uint32
		visible := true
		var timestamp int64
		var changeset uint32
		var uid uint32
		var user string

		if rel.Info != nil {
			version = uint32(rel.Info.Version)
			if rel.Info.HasVisible {
				visible = rel.Info.Visible
			}
			timestamp = rel.Info.Timestamp * dateFactor
			changeset = uint32(rel.Info.Changeset)
			uid = normalizeUID(int64(rel.Info.UID))
			u, err := lookupString(st, rel.Info.UserSID)
			if err != nil {
				return err
			}
			user = u
		}

		b.Reset(arena.RecordRelation)
		b.PutInt64(rel.ID)
		b.PutUint32(version)
		b.PutBool(visible)
		b.PutInt64(timestamp)
		b.PutUint32(uid)
		b.PutUint32(changeset)
		b.PutString(user)

		if err := appendTags(b, rel.Keys, rel.Vals, st); err != nil {
			return err
		}

		b.PutUint32(uint32(len(rel.Memids)))
		var cum int64
		for i, d := range rel.Memids {
			cum += d
			switch rel.Types[i] {
			case proto.MemberNode:
				b.PutUint8(0)
			case proto.MemberWay:
				b.PutUint8(1)
			case proto.MemberRelation:
				b.PutUint8(2)
			default:
				return errs.New(errs.Semantic, fmt.Sprintf("unknown relation member type %d", rel.Types[i]), nil)
			}
			b.PutInt64(cum)
			role, err := lookupString(st, rel.RolesSID[i])
			if err != nil {
				return err
			}
			b.PutString(role)
		}

		dst.Commit(b)
	}
	return nil
}
