package proto

import (
	"github.com/wegman-software/go-osmpbf/internal/errs"
	"github.com/wegman-software/go-osmpbf/internal/wire"
)

func protoErr(msg string, err error) error {
	return errs.New(errs.Protobuf, msg, err)
}

// DecodeBlobHeader decodes fileformat.proto's BlobHeader. type and
// datasize are required fields; their absence is a framing-level
// defect in the caller's length-prefix bookkeeping, reported here as
// a protobuf error since it's detected at message-decode time.
func DecodeBlobHeader(buf []byte) (*BlobHeader, error) {
	r := wire.NewReader(buf)
	h := &BlobHeader{}
	haveType, haveSize := false, false
	for !r.Done() {
		field, typ, err := r.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			s, err := r.String()
			if err != nil {
				return nil, err
			}
			h.Type = s
			haveType = true
		case 2:
			b, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			h.IndexData = append([]byte(nil), b...)
		case 3:
			v, err := r.Int32()
			if err != nil {
				return nil, err
			}
			h.DataSize = v
			haveSize = true
		default:
			if err := r.Skip(typ); err != nil {
				return nil, err
			}
		}
	}
	if !haveType {
		return nil, protoErr("BlobHeader missing required field type", nil)
	}
	if !haveSize {
		return nil, protoErr("BlobHeader missing required field datasize", nil)
	}
	return h, nil
}

// DecodeBlob decodes fileformat.proto's Blob.
func DecodeBlob(buf []byte) (*Blob, error) {
	r := wire.NewReader(buf)
	b := &Blob{}
	for !r.Done() {
		field, typ, err := r.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			raw, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			b.Raw = raw
		case 2:
			v, err := r.Int32()
			if err != nil {
				return nil, err
			}
			b.RawSize = v
			b.HasRaw = true
		case 3:
			data, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			b.ZlibData = data
		case 4:
			data, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			b.LzmaData = data
		default:
			if err := r.Skip(typ); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// DecodeHeaderBBox decodes osmformat.proto's HeaderBBox. All four
// fields are sint64 (zigzag), raw nanodegree units.
func DecodeHeaderBBox(buf []byte) (*HeaderBBox, error) {
	r := wire.NewReader(buf)
	bb := &HeaderBBox{}
	for !r.Done() {
		field, typ, err := r.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			v, err := r.SInt64()
			if err != nil {
				return nil, err
			}
			bb.Left = v
		case 2:
			v, err := r.SInt64()
			if err != nil {
				return nil, err
			}
			bb.Right = v
		case 3:
			v, err := r.SInt64()
			if err != nil {
				return nil, err
			}
			bb.Top = v
		case 4:
			v, err := r.SInt64()
			if err != nil {
				return nil, err
			}
			bb.Bottom = v
		default:
			if err := r.Skip(typ); err != nil {
				return nil, err
			}
		}
	}
	return bb, nil
}

// DecodeHeaderBlock decodes osmformat.proto's HeaderBlock.
func DecodeHeaderBlock(buf []byte) (*HeaderBlock, error) {
	r := wire.NewReader(buf)
	hb := &HeaderBlock{}
	for !r.Done() {
		field, typ, err := r.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			data, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			bb, err := DecodeHeaderBBox(data)
			if err != nil {
				return nil, err
			}
			hb.BBox = bb
		case 4:
			s, err := r.String()
			if err != nil {
				return nil, err
			}
			hb.RequiredFeatures = append(hb.RequiredFeatures, s)
		case 5:
			s, err := r.String()
			if err != nil {
				return nil, err
			}
			hb.OptionalFeatures = append(hb.OptionalFeatures, s)
		case 16:
			s, err := r.String()
			if err != nil {
				return nil, err
			}
			hb.Writingprogram = s
		case 17:
			s, err := r.String()
			if err != nil {
				return nil, err
			}
			hb.Source = s
		case 32:
			v, err := r.Int64()
			if err != nil {
				return nil, err
			}
			hb.OsmosisReplicationTimestamp = v
			hb.HasReplicationTimestamp = true
		case 33:
			v, err := r.Int64()
			if err != nil {
				return nil, err
			}
			hb.OsmosisReplicationSeqNumber = v
			hb.HasReplicationSeqNumber = true
		case 34:
			s, err := r.String()
			if err != nil {
				return nil, err
			}
			hb.OsmosisReplicationBaseURL = s
		default:
			if err := r.Skip(typ); err != nil {
				return nil, err
			}
		}
	}
	return hb, nil
}

// DecodeStringTable decodes osmformat.proto's StringTable: a flat,
// repeated, non-packed sequence of byte strings.
func DecodeStringTable(buf []byte) (*StringTable, error) {
	r := wire.NewReader(buf)
	st := &StringTable{}
	for !r.Done() {
		field, typ, err := r.Tag()
		if err != nil {
			return nil, err
		}
		if field == 1 {
			b, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			st.S = append(st.S, b)
			continue
		}
		if err := r.Skip(typ); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// DecodeInfo decodes osmformat.proto's Info (absolute metadata on a
// plain, non-dense Node/Way/Relation).
func DecodeInfo(buf []byte) (*Info, error) {
	r := wire.NewReader(buf)
	info := &Info{Version: -1}
	for !r.Done() {
		field, typ, err := r.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			v, err := r.Int32()
			if err != nil {
				return nil, err
			}
			info.Version = v
			info.HasVersion = true
		case 2:
			v, err := r.Int64()
			if err != nil {
				return nil, err
			}
			info.Timestamp = v
			info.HasTimestamp = true
		case 3:
			v, err := r.Int64()
			if err != nil {
				return nil, err
			}
			info.Changeset = v
			info.HasChangeset = true
		case 4:
			v, err := r.Int32()
			if err != nil {
				return nil, err
			}
			info.UID = v
			info.HasUID = true
		case 5:
			v, err := r.Int32()
			if err != nil {
				return nil, err
			}
			info.UserSID = v
			info.HasUserSID = true
		case 6:
			v, err := r.Bool()
			if err != nil {
				return nil, err
			}
			info.Visible = v
			info.HasVisible = true
		default:
			if err := r.Skip(typ); err != nil {
				return nil, err
			}
		}
	}
	return info, nil
}

// DecodeNode decodes osmformat.proto's Node (the plain, non-dense form).
func DecodeNode(buf []byte) (*Node, error) {
	r := wire.NewReader(buf)
	n := &Node{}
	for !r.Done() {
		field, typ, err := r.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			v, err := r.SInt64()
			if err != nil {
				return nil, err
			}
			n.ID = v
		case 2:
			vs, err := wire.PackedUint32s(r)
			if err != nil {
				return nil, err
			}
			n.Keys = vs
		case 3:
			vs, err := wire.PackedUint32s(r)
			if err != nil {
				return nil, err
			}
			n.Vals = vs
		case 4:
			data, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			info, err := DecodeInfo(data)
			if err != nil {
				return nil, err
			}
			n.Info = info
		case 8:
			v, err := r.SInt64()
			if err != nil {
				return nil, err
			}
			n.Lat = v
		case 9:
			v, err := r.SInt64()
			if err != nil {
				return nil, err
			}
			n.Lon = v
		default:
			if err := r.Skip(typ); err != nil {
				return nil, err
			}
		}
	}
	return n, nil
}

// DecodeDenseInfo decodes osmformat.proto's DenseInfo: packed,
// per-field delta-coded arrays (version is the one exception: it's
// packed but absolute).
func DecodeDenseInfo(buf []byte) (*DenseInfo, error) {
	r := wire.NewReader(buf)
	di := &DenseInfo{}
	for !r.Done() {
		field, typ, err := r.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			vs, err := wire.PackedInt32s(r)
			if err != nil {
				return nil, err
			}
			di.Version = vs
		case 2:
			vs, err := wire.PackedSVarints64(r)
			if err != nil {
				return nil, err
			}
			di.Timestamp = vs
		case 3:
			vs, err := wire.PackedSVarints64(r)
			if err != nil {
				return nil, err
			}
			di.Changeset = vs
		case 4:
			vs, err := wire.PackedSVarints32(r)
			if err != nil {
				return nil, err
			}
			di.UID = vs
		case 5:
			vs, err := wire.PackedSVarints32(r)
			if err != nil {
				return nil, err
			}
			di.UserSID = vs
		case 6:
			vs, err := wire.PackedBools(r)
			if err != nil {
				return nil, err
			}
			di.Visible = vs
		default:
			if err := r.Skip(typ); err != nil {
				return nil, err
			}
		}
	}
	return di, nil
}

// DecodeDenseNodes decodes osmformat.proto's DenseNodes.
func DecodeDenseNodes(buf []byte) (*DenseNodes, error) {
	r := wire.NewReader(buf)
	dn := &DenseNodes{}
	for !r.Done() {
		field, typ, err := r.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			vs, err := wire.PackedSVarints64(r)
			if err != nil {
				return nil, err
			}
			dn.ID = vs
		case 5:
			data, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			di, err := DecodeDenseInfo(data)
			if err != nil {
				return nil, err
			}
			dn.DenseInfo = di
		case 8:
			vs, err := wire.PackedSVarints64(r)
			if err != nil {
				return nil, err
			}
			dn.Lat = vs
		case 9:
			vs, err := wire.PackedSVarints64(r)
			if err != nil {
				return nil, err
			}
			dn.Lon = vs
		case 10:
			vs, err := wire.PackedInt32s(r)
			if err != nil {
				return nil, err
			}
			dn.KeysVals = vs
		default:
			if err := r.Skip(typ); err != nil {
				return nil, err
			}
		}
	}
	return dn, nil
}

// DecodeWay decodes osmformat.proto's Way.
func DecodeWay(buf []byte) (*Way, error) {
	r := wire.NewReader(buf)
	w := &Way{}
	for !r.Done() {
		field, typ, err := r.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			v, err := r.Int64()
			if err != nil {
				return nil, err
			}
			w.ID = v
		case 2:
			vs, err := wire.PackedUint32s(r)
			if err != nil {
				return nil, err
			}
			w.Keys = vs
		case 3:
			vs, err := wire.PackedUint32s(r)
			if err != nil {
				return nil, err
			}
			w.Vals = vs
		case 4:
			data, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			info, err := DecodeInfo(data)
			if err != nil {
				return nil, err
			}
			w.Info = info
		case 8:
			vs, err := wire.PackedSVarints64(r)
			if err != nil {
				return nil, err
			}
			w.Refs = vs
		default:
			if err := r.Skip(typ); err != nil {
				return nil, err
			}
		}
	}
	return w, nil
}

// DecodeRelation decodes osmformat.proto's Relation.
func DecodeRelation(buf []byte) (*Relation, error) {
	r := wire.NewReader(buf)
	rel := &Relation{}
	for !r.Done() {
		field, typ, err := r.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			v, err := r.Int64()
			if err != nil {
				return nil, err
			}
			rel.ID = v
		case 2:
			vs, err := wire.PackedUint32s(r)
			if err != nil {
				return nil, err
			}
			rel.Keys = vs
		case 3:
			vs, err := wire.PackedUint32s(r)
			if err != nil {
				return nil, err
			}
			rel.Vals = vs
		case 4:
			data, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			info, err := DecodeInfo(data)
			if err != nil {
				return nil, err
			}
			rel.Info = info
		case 8:
			vs, err := wire.PackedInt32s(r)
			if err != nil {
				return nil, err
			}
			rel.RolesSID = vs
		case 9:
			vs, err := wire.PackedSVarints64(r)
			if err != nil {
				return nil, err
			}
			rel.Memids = vs
		case 10:
			vs, err := wire.PackedInt32s(r)
			if err != nil {
				return nil, err
			}
			types := make([]MemberType, len(vs))
			for i, v := range vs {
				types[i] = MemberType(v)
			}
			rel.Types = types
		default:
			if err := r.Skip(typ); err != nil {
				return nil, err
			}
		}
	}
	return rel, nil
}

// DecodePrimitiveGroup decodes osmformat.proto's PrimitiveGroup.
func DecodePrimitiveGroup(buf []byte) (*PrimitiveGroup, error) {
	r := wire.NewReader(buf)
	g := &PrimitiveGroup{}
	for !r.Done() {
		field, typ, err := r.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			data, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			n, err := DecodeNode(data)
			if err != nil {
				return nil, err
			}
			g.Nodes = append(g.Nodes, n)
		case 2:
			data, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			dn, err := DecodeDenseNodes(data)
			if err != nil {
				return nil, err
			}
			g.Dense = dn
		case 3:
			data, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			w, err := DecodeWay(data)
			if err != nil {
				return nil, err
			}
			g.Ways = append(g.Ways, w)
		case 4:
			data, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			rel, err := DecodeRelation(data)
			if err != nil {
				return nil, err
			}
			g.Relations = append(g.Relations, rel)
		default:
			// ChangeSets (field 5) and any future group kind are
			// skipped: this repo never reads changesets out of a PBF.
			if err := r.Skip(typ); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// DecodePrimitiveBlock decodes osmformat.proto's PrimitiveBlock.
func DecodePrimitiveBlock(buf []byte) (*PrimitiveBlock, error) {
	r := wire.NewReader(buf)
	pb := &PrimitiveBlock{Granularity: 100, DateGranularity: 1000}
	for !r.Done() {
		field, typ, err := r.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			data, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			st, err := DecodeStringTable(data)
			if err != nil {
				return nil, err
			}
			pb.Stringtable = st
		case 2:
			data, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			g, err := DecodePrimitiveGroup(data)
			if err != nil {
				return nil, err
			}
			pb.Primitivegroup = append(pb.Primitivegroup, g)
		case 17:
			v, err := r.Int32()
			if err != nil {
				return nil, err
			}
			pb.Granularity = v
		case 18:
			v, err := r.Int32()
			if err != nil {
				return nil, err
			}
			pb.DateGranularity = v
		case 19:
			v, err := r.Int64()
			if err != nil {
				return nil, err
			}
			pb.LatOffset = v
		case 20:
			v, err := r.Int64()
			if err != nil {
				return nil, err
			}
			pb.LonOffset = v
		default:
			if err := r.Skip(typ); err != nil {
				return nil, err
			}
		}
	}
	if pb.Stringtable == nil {
		pb.Stringtable = &StringTable{}
	}
	return pb, nil
}
