package merge

import (
	"math"
	"sort"

	"github.com/jfeld/tickstore/internal/model"
)

// Refill supplies records appended to the underlying streams since the last
// call. Used to follow files an external writer is still growing; a nil
// Refill makes the iterator finite over its initial inputs.
type Refill func() (trades []model.TradeRecord, depth []model.DepthRecord, err error)

// Iterator produces the time-ordered interleaving of one contract's trade and
// depth sequences. It owns only its cursors; the input slices are never
// mutated.
type Iterator struct {
	trades []model.TradeRecord
	depth  []model.DepthRecord
	ti, di int

	// floor is the highest Seek target so far. Records below it are
	// discarded, including records a later refill appends behind the
	// cursors.
	floor int64

	refill Refill
	err    error
}

// NewIterator creates an iterator over already-materialized sequences. Each
// input must be timestamp-nondecreasing.
func NewIterator(trades []model.TradeRecord, depth []model.DepthRecord) *Iterator {
	return &Iterator{trades: trades, depth: depth, floor: math.MinInt64}
}

// NewLiveIterator creates an iterator that pulls additional records through
// refill whenever both cursors are exhausted.
func NewLiveIterator(refill Refill) *Iterator {
	return &Iterator{refill: refill, floor: math.MinInt64}
}

// Err returns the first refill error encountered, if any. Next reports false
// once an error occurs.
func (it *Iterator) Err() error {
	return it.err
}

// Next returns the next event in chronological order. Equal timestamps emit
// the depth event first. When both streams are exhausted and a Refill is
// set, it is invoked once to pick up newly appended records.
func (it *Iterator) Next() (model.MergedEvent, bool) {
	if it.err != nil {
		return model.MergedEvent{}, false
	}

	if it.ti >= len(it.trades) && it.di >= len(it.depth) {
		if !it.update() {
			return model.MergedEvent{}, false
		}
	}

	hasTrade := it.ti < len(it.trades)
	hasDepth := it.di < len(it.depth)

	if hasDepth && (!hasTrade || it.depth[it.di].Timestamp <= it.trades[it.ti].Timestamp) {
		ev := model.MergedEvent{Kind: model.StreamDepth, Depth: it.depth[it.di]}
		it.di++
		return ev, true
	}
	if hasTrade {
		ev := model.MergedEvent{Kind: model.StreamTrades, Trade: it.trades[it.ti]}
		it.ti++
		return ev, true
	}
	return model.MergedEvent{}, false
}

// update pulls newly appended records. Reports whether anything is consumable.
func (it *Iterator) update() bool {
	if it.refill == nil {
		return false
	}

	trades, depth, err := it.refill()
	if err != nil {
		it.err = err
		return false
	}

	it.trades = append(it.trades, trades...)
	it.depth = append(it.depth, depth...)

	// Appended records may still predate an earlier Seek target.
	it.ti = seekTrades(it.trades, it.ti, it.floor)
	it.di = seekDepth(it.depth, it.di, it.floor)
	return it.ti < len(it.trades) || it.di < len(it.depth)
}

// Seek advances both cursors past every event with timestamp strictly less
// than ts, including events a later refill delivers. It never rewinds: a
// target earlier than the current position leaves the iterator where it is.
func (it *Iterator) Seek(ts int64) {
	if it.refill != nil {
		it.update()
	}
	if ts > it.floor {
		it.floor = ts
	}
	it.ti = seekTrades(it.trades, it.ti, ts)
	it.di = seekDepth(it.depth, it.di, ts)
}

// Slice returns every event with timestamp in [from, to), without disturbing
// the iterator's own cursors. When a Refill is set it is invoked first so the
// slice sees records appended since the last read.
func (it *Iterator) Slice(from, to int64) ([]model.MergedEvent, error) {
	if it.refill != nil {
		it.update()
		if it.err != nil {
			return nil, it.err
		}
	}

	// Private cursors; the iterator position is untouched.
	ti := seekTrades(it.trades, 0, from)
	di := seekDepth(it.depth, 0, from)

	var out []model.MergedEvent
	for ti < len(it.trades) || di < len(it.depth) {
		hasTrade := ti < len(it.trades)
		hasDepth := di < len(it.depth)

		var ev model.MergedEvent
		if hasDepth && (!hasTrade || it.depth[di].Timestamp <= it.trades[ti].Timestamp) {
			ev = model.MergedEvent{Kind: model.StreamDepth, Depth: it.depth[di]}
			di++
		} else {
			ev = model.MergedEvent{Kind: model.StreamTrades, Trade: it.trades[ti]}
			ti++
		}

		if ev.Timestamp() >= to {
			break
		}
		out = append(out, ev)
	}
	return out, nil
}

// All materializes the entire merged sequence from the beginning, without
// disturbing the iterator's cursors.
func (it *Iterator) All() ([]model.MergedEvent, error) {
	return it.Slice(math.MinInt64, math.MaxInt64)
}

func seekTrades(recs []model.TradeRecord, from int, ts int64) int {
	return from + sort.Search(len(recs)-from, func(i int) bool {
		return recs[from+i].Timestamp >= ts
	})
}

func seekDepth(recs []model.DepthRecord, from int, ts int64) int {
	return from + sort.Search(len(recs)-from, func(i int) bool {
		return recs[from+i].Timestamp >= ts
	})
}
