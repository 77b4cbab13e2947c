package extract

import (
	"time"

	"github.com/google/uuid"
)

// CycleReport summarizes one extraction cycle across all contracts.
type CycleReport struct {
	CycleID   uuid.UUID
	StartedAt time.Time
	Duration  time.Duration
	Contracts []ContractReport
}

// ContractReport summarizes one contract's cycle.
type ContractReport struct {
	ContractID string
	Trades     StreamReport
	Depth      StreamReport
}

// StreamReport summarizes one stream of one contract.
type StreamReport struct {
	Enabled bool
	Records int  // records decoded and sunk this cycle
	Skipped bool // data file absent, retried next cycle
	Err     error
}

// Failed reports whether the stream aborted without committing.
func (r StreamReport) Failed() bool {
	return r.Err != nil
}

// Records returns the total records extracted across contracts and streams.
func (r CycleReport) Records() int {
	var n int
	for _, c := range r.Contracts {
		n += c.Trades.Records + c.Depth.Records
	}
	return n
}

// Failures returns the number of stream failures in the cycle.
func (r CycleReport) Failures() int {
	var n int
	for _, c := range r.Contracts {
		if c.Trades.Failed() {
			n++
		}
		if c.Depth.Failed() {
			n++
		}
	}
	return n
}

// Skips returns the number of streams skipped for missing files.
func (r CycleReport) Skips() int {
	var n int
	for _, c := range r.Contracts {
		if c.Trades.Skipped {
			n++
		}
		if c.Depth.Skipped {
			n++
		}
	}
	return n
}
