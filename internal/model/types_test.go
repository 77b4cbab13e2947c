package model

import "testing"

func TestSideString(t *testing.T) {
	tests := []struct {
		side Side
		want string
	}{
		{SideUnknown, "unknown"},
		{SideBuy, "buy"},
		{SideSell, "sell"},
		{Side(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.side.String(); got != tt.want {
			t.Errorf("Side(%d).String() = %q, want %q", tt.side, got, tt.want)
		}
	}
}

func TestDepthCommandString(t *testing.T) {
	tests := []struct {
		cmd  DepthCommand
		want string
	}{
		{CommandClearBook, "clear_book"},
		{CommandInsertBid, "insert_bid"},
		{CommandDeleteAsk, "delete_ask"},
		{CommandUnknown, "unknown"},
		{DepthCommand(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("DepthCommand(%d).String() = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}

func TestMergedEventTimestamp(t *testing.T) {
	trade := MergedEvent{Kind: StreamTrades, Trade: TradeRecord{Timestamp: 100}}
	if got := trade.Timestamp(); got != 100 {
		t.Errorf("trade event Timestamp() = %d, want 100", got)
	}

	depth := MergedEvent{Kind: StreamDepth, Depth: DepthRecord{Timestamp: 200}}
	if got := depth.Timestamp(); got != 200 {
		t.Errorf("depth event Timestamp() = %d, want 200", got)
	}
}
