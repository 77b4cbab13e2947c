package codec

import (
	"encoding/binary"
	"math"

	"github.com/jfeld/tickstore/internal/model"
)

// Depth record layout (little-endian), offsets within one record:
//
//	 0..7   timestamp
//	 8      command  uint8
//	 9      flags    uint8
//	10..11  order count uint16
//	12..15  price    float32
//	16..19  quantity uint32
const (
	depthCommandOff = 8
	depthFlagsOff   = 9
	depthOrdersOff  = 10
	depthPriceOff   = 12
	depthQtyOff     = 16
)

// Vendor command codes. Anything outside this table decodes to
// CommandUnknown; newer vendor releases add codes without notice.
var depthCommands = map[uint8]model.DepthCommand{
	1: model.CommandClearBook,
	2: model.CommandInsertBid,
	3: model.CommandInsertAsk,
	4: model.CommandUpdateBid,
	5: model.CommandUpdateAsk,
	6: model.CommandDeleteBid,
	7: model.CommandDeleteAsk,
}

// DecodeDepth decodes every complete record in buf, scaling prices by
// priceAdj. Same contract as DecodeTrades: partial trailing bytes are not
// consumed and the byte count returned is the caller's checkpoint delta.
func DecodeDepth(hdr Header, buf []byte, priceAdj float64) ([]model.DepthRecord, int64) {
	recSize := int(hdr.RecordSize)
	if len(buf) == 0 || recSize == 0 {
		return nil, 0
	}
	n := len(buf) / recSize
	if n == 0 {
		return nil, 0
	}

	recs := make([]model.DepthRecord, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, decodeDepth(hdr, buf[i*recSize:(i+1)*recSize], priceAdj))
	}
	return recs, int64(n * recSize)
}

func decodeDepth(hdr Header, rec []byte, priceAdj float64) model.DepthRecord {
	price := math.Float32frombits(binary.LittleEndian.Uint32(rec[depthPriceOff:]))

	return model.DepthRecord{
		Timestamp: hdr.unixMicros(rec[0:8]),
		Command:   depthCommands[rec[depthCommandOff]],
		Flags:     rec[depthFlagsOff],
		NumOrders: binary.LittleEndian.Uint16(rec[depthOrdersOff:]),
		Price:     float64(price) * priceAdj,
		Qty:       binary.LittleEndian.Uint32(rec[depthQtyOff:]),
	}
}
