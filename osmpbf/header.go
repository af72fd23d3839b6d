package osmpbf

import (
	"fmt"
	"time"

	"github.com/wegman-software/go-osmpbf/internal/errs"
	"github.com/wegman-software/go-osmpbf/internal/proto"
)

// headerResolutionConvert converts HeaderBBox's raw nanodegree fields
// (10⁹ per degree) to Location precision (10⁷ per degree); the bbox is
// an absolute value with no block granularity to apply first.
const headerResolutionConvert = 1_000_000_000 / 10_000_000

// Bbox is the file's declared bounding box, at Location precision.
type Bbox struct {
	Left, Right, Top, Bottom int32
}

// Header is the decoded metadata from the first OSMHeader blob.
type Header struct {
	Bbox             Bbox
	HasBbox          bool
	DenseNodes       bool
	HistoricalInfo   bool
	Generator        string
	ReplicationTimestamp    time.Time
	HasReplicationTimestamp bool
	ReplicationSeqNumber    int64
	HasReplicationSeqNumber bool
	ReplicationBaseURL      string
}

// decodeHeader interprets a decoded HeaderBlock, per §4.8: recognized
// required features set flags, an unrecognized one is fatal.
func decodeHeader(hb *proto.HeaderBlock) (Header, error) {
	var h Header

	for _, feat := range hb.RequiredFeatures {
		switch feat {
		case "OsmSchema-V0.6":
			// acknowledged, no flag to set
		case "DenseNodes":
			h.DenseNodes = true
		case "HistoricalInformation":
			h.HistoricalInfo = true
		default:
			return Header{}, errs.New(errs.Semantic,
				fmt.Sprintf("required feature not supported: %s", feat), nil)
		}
	}

	h.Generator = hb.Writingprogram

	if hb.BBox != nil {
		h.HasBbox = true
		h.Bbox = Bbox{
			Left:   int32(hb.BBox.Left / headerResolutionConvert),
			Right:  int32(hb.BBox.Right / headerResolutionConvert),
			Top:    int32(hb.BBox.Top / headerResolutionConvert),
			Bottom: int32(hb.BBox.Bottom / headerResolutionConvert),
		}
	}

	if hb.HasReplicationTimestamp {
		h.HasReplicationTimestamp = true
		h.ReplicationTimestamp = time.Unix(hb.OsmosisReplicationTimestamp, 0).UTC()
	}
	if hb.HasReplicationSeqNumber {
		h.HasReplicationSeqNumber = true
		h.ReplicationSeqNumber = hb.OsmosisReplicationSeqNumber
	}
	h.ReplicationBaseURL = hb.OsmosisReplicationBaseURL

	return h, nil
}
