package codec

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/jfeld/tickstore/internal/model"
)

// -----------------------------------------------------------------------------
// Fixture builders
// -----------------------------------------------------------------------------

func headerBytes(magic string, headerSize, recordSize uint32, version uint16) []byte {
	raw := make([]byte, headerSize)
	copy(raw[0:4], magic)
	binary.LittleEndian.PutUint32(raw[4:8], headerSize)
	binary.LittleEndian.PutUint32(raw[8:12], recordSize)
	binary.LittleEndian.PutUint16(raw[12:14], version)
	return raw
}

func tradeHeader(t *testing.T, version uint16) Header {
	t.Helper()
	hdr, err := ParseTradeHeader(bytes.NewReader(headerBytes(TradeMagic, TradeHeaderSize, TradeRecordSize, version)))
	if err != nil {
		t.Fatalf("ParseTradeHeader failed: %v", err)
	}
	return hdr
}

func depthHeader(t *testing.T) Header {
	t.Helper()
	hdr, err := ParseDepthHeader(bytes.NewReader(headerBytes(DepthMagic, DepthHeaderSize, DepthRecordSize, microTimestampVersion)))
	if err != nil {
		t.Fatalf("ParseDepthHeader failed: %v", err)
	}
	return hdr
}

// scMicros converts Unix µs to the vendor epoch for encoding fixtures.
func scMicros(unixMicros int64) uint64 {
	return uint64(unixMicros + scEpochOffsetMicros)
}

func tradeRecordBytes(unixMicros int64, last float32, volume, bidVol, askVol uint32) []byte {
	rec := make([]byte, TradeRecordSize)
	binary.LittleEndian.PutUint64(rec[0:8], scMicros(unixMicros))
	binary.LittleEndian.PutUint32(rec[8:12], math.Float32bits(last))  // open
	binary.LittleEndian.PutUint32(rec[12:16], math.Float32bits(last)) // high
	binary.LittleEndian.PutUint32(rec[16:20], math.Float32bits(last)) // low
	binary.LittleEndian.PutUint32(rec[20:24], math.Float32bits(last))
	binary.LittleEndian.PutUint32(rec[24:28], 1) // trade count
	binary.LittleEndian.PutUint32(rec[28:32], volume)
	binary.LittleEndian.PutUint32(rec[32:36], bidVol)
	binary.LittleEndian.PutUint32(rec[36:40], askVol)
	return rec
}

func depthRecordBytes(unixMicros int64, command, flags uint8, orders uint16, price float32, qty uint32) []byte {
	rec := make([]byte, DepthRecordSize)
	binary.LittleEndian.PutUint64(rec[0:8], scMicros(unixMicros))
	rec[8] = command
	rec[9] = flags
	binary.LittleEndian.PutUint16(rec[10:12], orders)
	binary.LittleEndian.PutUint32(rec[12:16], math.Float32bits(price))
	binary.LittleEndian.PutUint32(rec[16:20], qty)
	return rec
}

// -----------------------------------------------------------------------------
// Headers
// -----------------------------------------------------------------------------

func TestParseTradeHeader(t *testing.T) {
	hdr := tradeHeader(t, microTimestampVersion)

	if hdr.Magic != TradeMagic {
		t.Errorf("Magic = %q, want %q", hdr.Magic, TradeMagic)
	}
	if hdr.RecordSize != TradeRecordSize {
		t.Errorf("RecordSize = %d, want %d", hdr.RecordSize, TradeRecordSize)
	}
}

func TestParseHeader_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"wrong magic", headerBytes("JUNK", TradeHeaderSize, TradeRecordSize, 8)},
		{"truncated", headerBytes(TradeMagic, TradeHeaderSize, TradeRecordSize, 8)[:10]},
		{"record size too small", headerBytes(TradeMagic, TradeHeaderSize, 12, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTradeHeader(bytes.NewReader(tt.raw)); err == nil {
				t.Error("ParseTradeHeader succeeded, want error")
			}
		})
	}
}

func TestParseHeader_HeaderSizeMismatchRejected(t *testing.T) {
	raw := headerBytes(TradeMagic, TradeHeaderSize, TradeRecordSize, 8)
	binary.LittleEndian.PutUint32(raw[4:8], 48)

	if _, err := ParseTradeHeader(bytes.NewReader(raw)); err == nil {
		t.Error("ParseTradeHeader succeeded with mismatched header size, want error")
	}
}

func TestHeaderTimestamp_FractionalDays(t *testing.T) {
	// Versions before the microsecond switch store float64 days since the
	// vendor epoch. One day past the Unix epoch = 25570 days.
	hdr := tradeHeader(t, microTimestampVersion-1)

	field := make([]byte, 8)
	binary.LittleEndian.PutUint64(field, math.Float64bits(25570.5))

	got := hdr.unixMicros(field)
	want := int64(36 * 3600 * 1_000_000) // 1.5 days past Unix epoch minus 1 day offset
	if got != want {
		t.Errorf("unixMicros = %d, want %d", got, want)
	}
}

// -----------------------------------------------------------------------------
// Trade decoding
// -----------------------------------------------------------------------------

func TestDecodeTrades_PriceScaling(t *testing.T) {
	// Two records with a raw last price of 450000 and price_adj 0.01 must
	// decode to 4500.00.
	hdr := tradeHeader(t, microTimestampVersion)

	buf := append(
		tradeRecordBytes(1_700_000_000_000_000, 450000, 5, 0, 5),
		tradeRecordBytes(1_700_000_001_000_000, 450000, 3, 3, 0)...,
	)

	recs, consumed := DecodeTrades(hdr, buf, 0.01)
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}
	if consumed != 2*TradeRecordSize {
		t.Errorf("consumed = %d, want %d", consumed, 2*TradeRecordSize)
	}
	if recs[0].Price != 4500.00 {
		t.Errorf("Price = %v, want 4500.00", recs[0].Price)
	}
	if recs[0].Timestamp != 1_700_000_000_000_000 {
		t.Errorf("Timestamp = %d, want 1700000000000000", recs[0].Timestamp)
	}
	if recs[0].Qty != 5 {
		t.Errorf("Qty = %d, want 5", recs[0].Qty)
	}
	if recs[0].Side != model.SideBuy {
		t.Errorf("Side = %v, want buy", recs[0].Side)
	}
	if recs[1].Side != model.SideSell {
		t.Errorf("Side = %v, want sell", recs[1].Side)
	}
}

func TestDecodeTrades_PartialTrailingRecord(t *testing.T) {
	hdr := tradeHeader(t, microTimestampVersion)

	full := tradeRecordBytes(1_700_000_000_000_000, 100, 1, 1, 0)
	buf := append(full, full[:17]...) // writer mid-flush

	recs, consumed := DecodeTrades(hdr, buf, 1.0)
	if len(recs) != 1 {
		t.Errorf("len(recs) = %d, want 1", len(recs))
	}
	if consumed != TradeRecordSize {
		t.Errorf("consumed = %d, want %d", consumed, TradeRecordSize)
	}
}

func TestDecodeTrades_Empty(t *testing.T) {
	hdr := tradeHeader(t, microTimestampVersion)

	recs, consumed := DecodeTrades(hdr, nil, 1.0)
	if len(recs) != 0 || consumed != 0 {
		t.Errorf("DecodeTrades(nil) = %d recs, %d consumed; want 0, 0", len(recs), consumed)
	}
}

func TestInferSide_Mixed(t *testing.T) {
	tests := []struct {
		name   string
		bidVol uint32
		askVol uint32
		want   model.Side
	}{
		{"ask only", 0, 10, model.SideBuy},
		{"bid only", 10, 0, model.SideSell},
		{"both sides", 4, 6, model.SideUnknown},
		{"no volume", 0, 0, model.SideUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferSide(tt.bidVol, tt.askVol); got != tt.want {
				t.Errorf("inferSide(%d, %d) = %v, want %v", tt.bidVol, tt.askVol, got, tt.want)
			}
		})
	}
}

func TestDecodeTrades_ResumptionEquivalence(t *testing.T) {
	// Decoding [0, N) then [N, end) must equal decoding the whole buffer.
	hdr := tradeHeader(t, microTimestampVersion)

	var buf []byte
	for i := 0; i < 7; i++ {
		buf = append(buf, tradeRecordBytes(int64(i)*1_000_000, float32(100+i), uint32(i+1), 0, 1)...)
	}

	whole, _ := DecodeTrades(hdr, buf, 1.0)

	first, consumed := DecodeTrades(hdr, buf[:3*TradeRecordSize+20], 1.0)
	rest, _ := DecodeTrades(hdr, buf[consumed:], 1.0)
	resumed := append(first, rest...)

	if len(resumed) != len(whole) {
		t.Fatalf("len(resumed) = %d, want %d", len(resumed), len(whole))
	}
	for i := range whole {
		if resumed[i] != whole[i] {
			t.Errorf("record %d = %+v, want %+v", i, resumed[i], whole[i])
		}
	}
}

// -----------------------------------------------------------------------------
// Depth decoding
// -----------------------------------------------------------------------------

func TestDecodeDepth(t *testing.T) {
	hdr := depthHeader(t)

	buf := append(
		depthRecordBytes(1_700_000_000_000_000, 2, 0x01, 3, 99.5, 40),
		depthRecordBytes(1_700_000_000_500_000, 7, 0, 0, 99.75, 0)...,
	)

	recs, consumed := DecodeDepth(hdr, buf, 2.0)
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}
	if consumed != 2*DepthRecordSize {
		t.Errorf("consumed = %d, want %d", consumed, 2*DepthRecordSize)
	}

	r := recs[0]
	if r.Command != model.CommandInsertBid {
		t.Errorf("Command = %v, want insert_bid", r.Command)
	}
	if r.Flags != 0x01 {
		t.Errorf("Flags = %#x, want 0x01", r.Flags)
	}
	if r.NumOrders != 3 {
		t.Errorf("NumOrders = %d, want 3", r.NumOrders)
	}
	if r.Price != 199.0 {
		t.Errorf("Price = %v, want 199.0", r.Price)
	}
	if r.Qty != 40 {
		t.Errorf("Qty = %d, want 40", r.Qty)
	}
	if recs[1].Command != model.CommandDeleteAsk {
		t.Errorf("Command = %v, want delete_ask", recs[1].Command)
	}
}

func TestDecodeDepth_UnknownCommand(t *testing.T) {
	hdr := depthHeader(t)

	recs, _ := DecodeDepth(hdr, depthRecordBytes(0, 250, 0, 0, 1, 1), 1.0)
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1", len(recs))
	}
	if recs[0].Command != model.CommandUnknown {
		t.Errorf("Command = %v, want unknown", recs[0].Command)
	}
}

func TestDecodeDepth_StopsAtLastFullRecord(t *testing.T) {
	// 3 full records plus 10 trailing bytes: resume offset is 3 × 20.
	hdr := depthHeader(t)

	var buf []byte
	for i := 0; i < 3; i++ {
		buf = append(buf, depthRecordBytes(int64(i), 4, 0, 1, 10, 1)...)
	}
	buf = append(buf, make([]byte, 10)...)

	recs, consumed := DecodeDepth(hdr, buf, 1.0)
	if len(recs) != 3 {
		t.Errorf("len(recs) = %d, want 3", len(recs))
	}
	if consumed != 3*DepthRecordSize {
		t.Errorf("consumed = %d, want %d", consumed, 3*DepthRecordSize)
	}
}
