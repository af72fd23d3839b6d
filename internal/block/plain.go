package block

import (
	"github.com/wegman-software/go-osmpbf/internal/arena"
	"github.com/wegman-software/go-osmpbf/internal/proto"
)

// parseNodes decodes the plain (non-dense) Node form of a primitive
// group. A missing Info implies visible=true and all other info
// fields zero/empty — "the data contains no deletion info" default.
func parseNodes(nodes []*proto.Node, st [][]byte, granularity, lonOffset, latOffset, dateFactor int64, b *arena.Builder, dst *arena.Arena) error {
	for _, n := range nodes {
		var version uint32
		var visible = true
		var timestamp int64
		var changeset uint32
		var uid uint32
		var user string

		if n.Info != nil {
			version = uint32(n.Info.Version)
			if n.Info.HasVisible {
				visible = n.Info.Visible
			}
			timestamp = n.Info.Timestamp * dateFactor
			changeset = uint32(n.Info.Changeset)
			uid = normalizeUID(int64(n.Info.UID))
			u, err := lookupString(st, n.Info.UserSID)
			if err != nil {
				return err
			}
			user = u
		}

		b.Reset(arena.RecordNode)
		b.PutInt64(n.ID)
		b.PutUint32(version)
		b.PutBool(visible)
		b.PutInt64(timestamp)
		b.PutUint32(uid)
		b.PutUint32(changeset)
		b.PutString(user)

		hasLoc := visible
		b.PutBool(hasLoc)
		if hasLoc {
			lonOut, latOut := computeLocation(n.Lon, n.Lat, granularity, lonOffset, latOffset)
			b.PutInt32(lonOut)
			b.PutInt32(latOut)
		} else {
			b.PutInt32(0)
			b.PutInt32(0)
		}

		if err := appendTags(b, n.Keys, n.Vals, st); err != nil {
			return err
		}
		dst.Commit(b)
	}
	return nil
}
