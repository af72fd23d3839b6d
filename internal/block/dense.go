package block

import (
	"github.com/wegman-software/go-osmpbf/internal/arena"
	"github.com/wegman-software/go-osmpbf/internal/errs"
	"github.com/wegman-software/go-osmpbf/internal/proto"
)

// parseDenseNodes decodes a DenseNodes group: seven running
// accumulators (id, lat, lon, uid, user_sid, changeset, timestamp),
// version read absolute, visible defaulting true, and a single cursor
// walking keys_vals across the whole group — the same loop shape as
// libosmium's add_tags for dense nodes.
func parseDenseNodes(dn *proto.DenseNodes, st [][]byte, granularity, lonOffset, latOffset, dateFactor int64, b *arena.Builder, dst *arena.Arena) error {
	n := len(dn.ID)
	if len(dn.Lat) != n || len(dn.Lon) != n {
		return errs.New(errs.Semantic, "dense id/lat/lon array length mismatch", nil)
	}

	di := dn.DenseInfo
	hasInfo := di != nil
	if hasInfo {
		if len(di.Version) != 0 && len(di.Version) != n {
			return errs.New(errs.Semantic, "dense info version array length mismatch", nil)
		}
	}

	var id, lat, lon, uid, userSID, changeset, timestamp int64
	kv := 0

	for i := 0; i < n; i++ {
		id += dn.ID[i]
		lat += dn.Lat[i]
		lon += dn.Lon[i]

		var version uint32
		visible := true
		var ts int64
		var cs uint32
		var userID uint32
		var user string

		if hasInfo {
			if i < len(di.Version) {
				version = uint32(di.Version[i])
			}
			if i < len(di.Changeset) {
				changeset += di.Changeset[i]
			}
			if i < len(di.Timestamp) {
				timestamp += di.Timestamp[i]
			}
			if i < len(di.UID) {
				uid += int64(di.UID[i])
			}
			if i < len(di.UserSID) {
				userSID += int64(di.UserSID[i])
			}
			if len(di.Visible) > 0 {
				if i >= len(di.Visible) {
					return errs.New(errs.Semantic, "dense info visible array length mismatch", nil)
				}
				visible = di.Visible[i]
			}
			ts = timestamp * dateFactor
			cs = uint32(changeset)
			userID = normalizeUID(uid)
			u, err := lookupString(st, int32(userSID))
			if err != nil {
				return err
			}
			user = u
		}

		b.Reset(arena.RecordNode)
		b.PutInt64(id)
		b.PutUint32(version)
		b.PutBool(visible)
		b.PutInt64(ts)
		b.PutUint32(userID)
		b.PutUint32(cs)
		b.PutString(user)

		hasLoc := visible
		b.PutBool(hasLoc)
		if hasLoc {
			lonOut, latOut := computeLocation(lon, lat, granularity, lonOffset, latOffset)
			b.PutInt32(lonOut)
			b.PutInt32(latOut)
		} else {
			b.PutInt32(0)
			b.PutInt32(0)
		}

		var pairs [][2]string
		for kv < len(dn.KeysVals) {
			k := dn.KeysVals[kv]
			kv++
			if k == 0 {
				break
			}
			if kv >= len(dn.KeysVals) {
				return errs.New(errs.Semantic, "dense keys_vals truncated mid-pair", nil)
			}
			v := dn.KeysVals[kv]
			kv++
			ks, err := lookupString(st, k)
			if err != nil {
				return err
			}
			vs, err := lookupString(st, v)
			if err != nil {
				return err
			}
			pairs = append(pairs, [2]string{ks, vs})
		}
		b.PutUint32(uint32(len(pairs)))
		for _, p := range pairs {
			b.PutString(p[0])
			b.PutString(p[1])
		}

		dst.Commit(b)
	}

	if kv != len(dn.KeysVals) {
		return errs.New(errs.Semantic, "dense keys_vals not fully consumed by node count", nil)
	}

	return nil
}
