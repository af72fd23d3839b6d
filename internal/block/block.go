// Package block is the primitive-block parser: the arithmetic core
// that reconstructs nodes (plain and dense), ways, and relations from
// a decoded PrimitiveBlock, resolving string-table indices and
// applying granularity/offset/date scaling, and emits them into an
// output arena.
package block

import (
	"fmt"

	"github.com/wegman-software/go-osmpbf/internal/arena"
	"github.com/wegman-software/go-osmpbf/internal/errs"
	"github.com/wegman-software/go-osmpbf/internal/proto"
)

// ReadMask selects which entity kinds to decode; groups outside the
// mask are skipped without their decode cost.
type ReadMask uint8

const (
	ReadNodes ReadMask = 1 << iota
	ReadWays
	ReadRelations
)

const ReadAll = ReadNodes | ReadWays | ReadRelations

func (m ReadMask) Has(flag ReadMask) bool {
	return m&flag != 0
}

const coordinatePrecision = 10_000_000  // 1e7, units per degree in Location
const lonLatResolution = 1_000_000_000  // 1e9, nanodegrees per degree
const resolutionConvert = lonLatResolution / coordinatePrecision

// Parse decodes every primitive group in pb into dst, honoring mask.
// Per spec, dispatch order within a group is dense, then ways, then
// relations, then plain nodes; a group with none of the four present
// is a fatal "unknown group" error regardless of mask.
func Parse(pb *proto.PrimitiveBlock, mask ReadMask, dst *arena.Arena) error {
	granularity := int64(pb.Granularity)
	if granularity == 0 {
		granularity = 100
	}
	dateGranularity := int64(pb.DateGranularity)
	if dateGranularity == 0 {
		dateGranularity = 1000
	}
	dateFactor := dateGranularity / 1000

	st := stringTable(pb.Stringtable)
	b := arena.NewBuilder()

	for _, g := range pb.Primitivegroup {
		switch {
		case g.Dense != nil:
			if mask.Has(ReadNodes) {
				if err := parseDenseNodes(g.Dense, st, granularity, pb.LonOffset, pb.LatOffset, dateFactor, b, dst); err != nil {
					return err
				}
			}
		case len(g.Ways) > 0:
			if mask.Has(ReadWays) {
				if err := parseWays(g.Ways, st, dateFactor, b, dst); err != nil {
					return err
				}
			}
		case len(g.Relations) > 0:
			if mask.Has(ReadRelations) {
				if err := parseRelations(g.Relations, st, dateFactor, b, dst); err != nil {
					return err
				}
			}
		case len(g.Nodes) > 0:
			if mask.Has(ReadNodes) {
				if err := parseNodes(g.Nodes, st, granularity, pb.LonOffset, pb.LatOffset, dateFactor, b, dst); err != nil {
					return err
				}
			}
		default:
			return errs.New(errs.Semantic, "unknown primitive group: no nodes, dense, ways, or relations present", nil)
		}
	}
	return nil
}

func stringTable(st *proto.StringTable) [][]byte {
	if st == nil {
		return nil
	}
	return st.S
}

func lookupString(st [][]byte, idx int32) (string, error) {
	if idx < 0 || int(idx) >= len(st) {
		return "", errs.New(errs.Semantic,
			fmt.Sprintf("string table index %d out of range (size %d)", idx, len(st)), nil)
	}
	return string(st[idx]), nil
}

// normalizeUID maps a negative wire uid to the anonymous sentinel 0,
// matching libosmium's uid_from_signed.
func normalizeUID(raw int64) uint32 {
	if raw < 0 {
		return 0
	}
	return uint32(raw)
}

// computeLocation applies the block's granularity/offset scaling to a
// cumulative (lon, lat) pair, yielding Location-precision (10⁻⁷
// degree) integers.
func computeLocation(lon, lat, granularity, lonOffset, latOffset int64) (lonOut, latOut int32) {
	lonOut = int32((lon*granularity + lonOffset) / resolutionConvert)
	latOut = int32((lat*granularity + latOffset) / resolutionConvert)
	return
}

func appendTags(b *arena.Builder, keys, vals []uint32, st [][]byte) error {
	if len(keys) != len(vals) {
		return errs.New(errs.Semantic, "tag keys/vals length mismatch", nil)
	}
	b.PutUint32(uint32(len(keys)))
	for i := range keys {
		k, err := lookupString(st, int32(keys[i]))
		if err != nil {
			return err
		}
		v, err := lookupString(st, int32(vals[i]))
		if err != nil {
			return err
		}
		b.PutString(k)
		b.PutString(v)
	}
	return nil
}
