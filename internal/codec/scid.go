package codec

import (
	"encoding/binary"
	"math"

	"github.com/jfeld/tickstore/internal/model"
)

// Trade record layout (little-endian), offsets within one record:
//
//	 0..7   timestamp (see Header.unixMicros)
//	 8..11  open   float32
//	12..15  high   float32
//	16..19  low    float32
//	20..23  last   float32  <- treated as the trade price
//	24..27  trade count  uint32
//	28..31  total volume uint32  <- treated as the trade quantity
//	32..35  bid volume   uint32
//	36..39  ask volume   uint32
const (
	tradeLastOff   = 20
	tradeVolumeOff = 28
	tradeBidVolOff = 32
	tradeAskVolOff = 36
)

// DecodeTrades decodes every complete record in buf, scaling prices by
// priceAdj. It returns the decoded records and the number of bytes consumed;
// a trailing partial record is left unconsumed, so the caller's resume offset
// is its own offset plus the returned byte count.
func DecodeTrades(hdr Header, buf []byte, priceAdj float64) ([]model.TradeRecord, int64) {
	recSize := int(hdr.RecordSize)
	if len(buf) == 0 || recSize == 0 {
		return nil, 0
	}
	n := len(buf) / recSize
	if n == 0 {
		return nil, 0
	}

	recs := make([]model.TradeRecord, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, decodeTrade(hdr, buf[i*recSize:(i+1)*recSize], priceAdj))
	}
	return recs, int64(n * recSize)
}

func decodeTrade(hdr Header, rec []byte, priceAdj float64) model.TradeRecord {
	last := math.Float32frombits(binary.LittleEndian.Uint32(rec[tradeLastOff:]))
	bidVol := binary.LittleEndian.Uint32(rec[tradeBidVolOff:])
	askVol := binary.LittleEndian.Uint32(rec[tradeAskVolOff:])

	return model.TradeRecord{
		Timestamp: hdr.unixMicros(rec[0:8]),
		Price:     float64(last) * priceAdj,
		Qty:       binary.LittleEndian.Uint32(rec[tradeVolumeOff:]),
		Side:      inferSide(bidVol, askVol),
	}
}

// inferSide derives the aggressor side from the record's bid/ask volume
// split: volume entirely at the ask means the buyer lifted the offer, volume
// entirely at the bid means the seller hit it. Mixed or empty records stay
// unknown. Best effort only; the format does not encode the side.
func inferSide(bidVol, askVol uint32) model.Side {
	switch {
	case askVol > 0 && bidVol == 0:
		return model.SideBuy
	case bidVol > 0 && askVol == 0:
		return model.SideSell
	default:
		return model.SideUnknown
	}
}
