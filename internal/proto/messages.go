// Package proto decodes the fileformat.proto and osmformat.proto
// message shapes on top of internal/wire. It performs no semantic
// interpretation — delta accumulation, string-table resolution, and
// coordinate scaling belong to internal/block.
package proto

// BlobHeader is fileformat.proto's BlobHeader message.
type BlobHeader struct {
	Type      string
	IndexData []byte
	DataSize  int32
}

// Blob is fileformat.proto's Blob message. Exactly one of Raw,
// ZlibData, or LzmaData is populated.
type Blob struct {
	Raw      []byte
	RawSize  int32
	HasRaw   bool
	ZlibData []byte
	LzmaData []byte
}

// HeaderBBox is osmformat.proto's HeaderBBox, in raw nanodegree units.
type HeaderBBox struct {
	Left, Right, Top, Bottom int64
}

// HeaderBlock is osmformat.proto's HeaderBlock.
type HeaderBlock struct {
	BBox                         *HeaderBBox
	RequiredFeatures             []string
	OptionalFeatures             []string
	Writingprogram               string
	Source                       string
	OsmosisReplicationTimestamp  int64
	HasReplicationTimestamp      bool
	OsmosisReplicationSeqNumber  int64
	HasReplicationSeqNumber      bool
	OsmosisReplicationBaseURL    string
}

// StringTable is osmformat.proto's StringTable: raw byte strings,
// indexed positionally; index 0 is always the empty string by
// convention of the encoders (never enforced here).
type StringTable struct {
	S [][]byte
}

// PrimitiveBlock is osmformat.proto's PrimitiveBlock.
type PrimitiveBlock struct {
	Stringtable     *StringTable
	Primitivegroup  []*PrimitiveGroup
	Granularity     int32 // default 100
	LatOffset       int64 // default 0
	LonOffset       int64 // default 0
	DateGranularity int32 // default 1000
}

// PrimitiveGroup is osmformat.proto's PrimitiveGroup. Per the format a
// group carries exactly one populated kind.
type PrimitiveGroup struct {
	Nodes     []*Node
	Dense     *DenseNodes
	Ways      []*Way
	Relations []*Relation
}

// Info is osmformat.proto's Info: absolute (non-delta) metadata
// attached to a plain Node/Way/Relation.
type Info struct {
	Version       int32 // default -1
	HasVersion    bool
	Timestamp     int64
	HasTimestamp  bool
	Changeset     int64
	HasChangeset  bool
	UID           int32
	HasUID        bool
	UserSID       int32
	HasUserSID    bool
	Visible       bool
	HasVisible    bool
}

// Node is osmformat.proto's Node message (the non-dense form).
type Node struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Lat  int64
	Lon  int64
}

// DenseInfo is osmformat.proto's DenseInfo: parallel delta-coded arrays,
// one entry per node in the enclosing DenseNodes.
type DenseInfo struct {
	Version   []int32 // absolute, not delta-coded
	Timestamp []int64 // delta-coded
	Changeset []int64 // delta-coded
	UID       []int32 // delta-coded
	UserSID   []int32 // delta-coded
	Visible   []bool  // absolute
}

// DenseNodes is osmformat.proto's DenseNodes.
type DenseNodes struct {
	ID        []int64 // delta-coded
	DenseInfo *DenseInfo
	Lat       []int64 // delta-coded
	Lon       []int64 // delta-coded
	KeysVals  []int32 // flat, 0-terminated per node, absolute indices
}

// Way is osmformat.proto's Way message.
type Way struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Refs []int64 // delta-coded
}

// MemberType mirrors osmformat.proto's Relation.MemberType enum.
type MemberType int32

const (
	MemberNode     MemberType = 0
	MemberWay      MemberType = 1
	MemberRelation MemberType = 2
)

// Relation is osmformat.proto's Relation message.
type Relation struct {
	ID       int64
	Keys     []uint32
	Vals     []uint32
	Info     *Info
	RolesSID []int32 // absolute string-table indices
	Memids   []int64 // delta-coded
	Types    []MemberType
}
