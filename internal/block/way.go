package block

import (
	"github.com/wegman-software/go-osmpbf/internal/arena"
	"github.com/wegman-software/go-osmpbf/internal/proto"
)

// parseWays decodes a Ways group. refs is a delta-coded int64 stream;
// it is reconstructed into an absolute node-id reference list.
func parseWays(ways []*proto.Way, st [][]byte, dateFactor int64, b *arena.Builder, dst *arena.Arena) error {
	for _, w := range ways {
		var version uint32
		visible := true
		var timestamp int64
		var changeset uint32
		var uid uint32
		var user string

		if w.Info != nil {
			version = uint32(w.Info.Version)
			if w.Info.HasVisible {
				visible = w.Info.Visible
			}
			timestamp = w.Info.Timestamp * dateFactor
			changeset = uint32(w.Info.Changeset)
			uid = normalizeUID(int64(w.Info.UID))
			u, err := lookupString(st, w.Info.UserSID)
			if err != nil {
				return err
			}
			user = u
		}

		b.Reset(arena.RecordWay)
		b.PutInt64(w.ID)
		b.PutUint32(version)
		b.PutBool(visible)
		b.PutInt64(timestamp)
		b.PutUint32(uid)
		b.PutUint32(changeset)
		b.PutString(user)

		if err := appendTags(b, w.Keys, w.Vals, st); err != nil {
			return err
		}

		refs := make([]int64, len(w.Refs))
		var cum int64
		for i, d := range w.Refs {
			cum += d
			refs[i] = cum
		}
		b.PutInt64Slice(refs)

		dst.Commit(b)
	}
	return nil
}
