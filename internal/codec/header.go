package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Format constants. Header and record sizes are properties of the file
// format, not user configuration; the header restates them and is validated
// against these minima so a corrupt file is rejected instead of misparsed.
const (
	TradeMagic = "SCID"
	DepthMagic = "SCDD"

	TradeHeaderSize = 56
	DepthHeaderSize = 24

	TradeRecordSize = 40
	DepthRecordSize = 20

	// Trade timestamps switched from fractional days to integer microseconds
	// at this format version.
	microTimestampVersion = 8
)

// scEpochOffsetMicros converts the vendor's 1899-12-30 epoch to Unix time.
// 25569 days separate the two epochs.
const scEpochOffsetMicros int64 = 25569 * 24 * 60 * 60 * 1_000_000

// Header is the parsed fixed-size file header of a trade or depth file.
type Header struct {
	Magic      string
	HeaderSize uint32 // bytes to skip before the first record
	RecordSize uint32
	Version    uint16
}

// ParseTradeHeader reads and validates a trade file header from r, leaving r
// positioned at the first record.
func ParseTradeHeader(r io.Reader) (Header, error) {
	return parseHeader(r, TradeMagic, TradeHeaderSize, TradeRecordSize)
}

// ParseDepthHeader reads and validates a depth file header from r, leaving r
// positioned at the first record.
func ParseDepthHeader(r io.Reader) (Header, error) {
	return parseHeader(r, DepthMagic, DepthHeaderSize, DepthRecordSize)
}

func parseHeader(r io.Reader, magic string, headerSize, minRecordSize uint32) (Header, error) {
	raw := make([]byte, headerSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return Header{}, fmt.Errorf("read header: %w", err)
	}

	hdr := Header{
		Magic:      string(raw[0:4]),
		HeaderSize: binary.LittleEndian.Uint32(raw[4:8]),
		RecordSize: binary.LittleEndian.Uint32(raw[8:12]),
		Version:    binary.LittleEndian.Uint16(raw[12:14]),
	}

	if hdr.Magic != magic {
		return Header{}, fmt.Errorf("bad magic %q, want %q", hdr.Magic, magic)
	}
	if hdr.HeaderSize != headerSize {
		return Header{}, fmt.Errorf("header size %d, want %d", hdr.HeaderSize, headerSize)
	}
	// Newer format versions may append fields; records only need to be at
	// least as wide as the layout we decode.
	if hdr.RecordSize < minRecordSize {
		return Header{}, fmt.Errorf("record size %d below minimum %d", hdr.RecordSize, minRecordSize)
	}

	return hdr, nil
}

// unixMicros converts the 8-byte timestamp field at the start of a record to
// Unix microseconds. Format versions before microTimestampVersion store the
// timestamp as a float64 of fractional days since the vendor epoch; later
// versions store int64 microseconds since the same epoch.
func (h Header) unixMicros(field []byte) int64 {
	raw := binary.LittleEndian.Uint64(field)
	if h.Version >= microTimestampVersion {
		return int64(raw) - scEpochOffsetMicros
	}
	days := math.Float64frombits(raw)
	return int64(days*86_400_000_000) - scEpochOffsetMicros
}
