package model

// -----------------------------------------------------------------------------
// Trade (time & sales)
// -----------------------------------------------------------------------------

// Side is the best-effort aggressor side of a trade. The trade file format
// does not encode it explicitly; it is inferred from the bid/ask volume split
// and must not be relied on for correctness-critical logic.
type Side uint8

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// TradeRecord is one decoded time & sales event. Immutable once decoded.
type TradeRecord struct {
	Timestamp int64   // µs since epoch
	Price     float64 // last price × price adjustment
	Qty       uint32  // total volume of the record
	Side      Side
}

// -----------------------------------------------------------------------------
// Depth (order book updates)
// -----------------------------------------------------------------------------

// DepthCommand is the order book mutation carried by a depth record.
// Unrecognized vendor codes decode to CommandUnknown rather than failing.
type DepthCommand uint8

const (
	CommandUnknown DepthCommand = iota
	CommandClearBook
	CommandInsertBid
	CommandInsertAsk
	CommandUpdateBid
	CommandUpdateAsk
	CommandDeleteBid
	CommandDeleteAsk
)

func (c DepthCommand) String() string {
	switch c {
	case CommandClearBook:
		return "clear_book"
	case CommandInsertBid:
		return "insert_bid"
	case CommandInsertAsk:
		return "insert_ask"
	case CommandUpdateBid:
		return "update_bid"
	case CommandUpdateAsk:
		return "update_ask"
	case CommandDeleteBid:
		return "delete_bid"
	case CommandDeleteAsk:
		return "delete_ask"
	default:
		return "unknown"
	}
}

// DepthRecord is one decoded order book update. Immutable once decoded.
type DepthRecord struct {
	Timestamp int64 // µs since epoch
	Command   DepthCommand
	Flags     uint8
	NumOrders uint16
	Price     float64 // raw price × price adjustment
	Qty       uint32
}

// -----------------------------------------------------------------------------
// Merged stream
// -----------------------------------------------------------------------------

// StreamKind tags which source stream an event came from.
type StreamKind uint8

const (
	StreamTrades StreamKind = iota
	StreamDepth
)

func (k StreamKind) String() string {
	if k == StreamDepth {
		return "depth"
	}
	return "trades"
}

// MergedEvent is one event of the chronologically merged stream. Exactly one
// of Trade or Depth is set, according to Kind.
type MergedEvent struct {
	Kind  StreamKind
	Trade TradeRecord
	Depth DepthRecord
}

// Timestamp returns the event time regardless of source stream.
func (e MergedEvent) Timestamp() int64 {
	if e.Kind == StreamDepth {
		return e.Depth.Timestamp
	}
	return e.Trade.Timestamp
}
