package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jfeld/tickstore/internal/model"
)

// Metrics counts writer activity since process start.
type Metrics struct {
	Inserts   int64
	Conflicts int64 // rows skipped because a replayed batch already landed
	Batches   int64
	Errors    int64
}

// Postgres writes event batches to TimescaleDB.
type Postgres struct {
	db     *pgxpool.Pool
	logger *slog.Logger

	mu      sync.Mutex
	metrics Metrics
}

// NewPostgres creates a sink over an existing pool.
func NewPostgres(db *pgxpool.Pool, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{db: db, logger: logger}
}

// Stats returns current metrics.
func (s *Postgres) Stats() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// tradeRow is the trades table shape.
type tradeRow struct {
	ContractID string
	Seq        int64 // record index within the trade file, the idempotency key
	Ts         int64
	Price      float64
	Qty        uint32
	Side       int16
}

// depthRow is the depth_updates table shape.
type depthRow struct {
	ContractID string
	FileDate   string
	Seq        int64 // record index within that day's depth file
	Ts         int64
	Command    int16
	Flags      int16
	NumOrders  int32
	Price      float64
	Qty        uint32
}

// WriteTrades inserts a trade batch. firstSeq is the record index of
// recs[0] within the contract's trade file; replayed batches conflict on
// (contract_id, seq) and are skipped.
func (s *Postgres) WriteTrades(ctx context.Context, contractID string, firstSeq int64, recs []model.TradeRecord) error {
	if len(recs) == 0 {
		return nil
	}

	start := time.Now()

	batch := &pgx.Batch{}
	for i, rec := range recs {
		row := transformTrade(contractID, firstSeq+int64(i), rec)
		batch.Queue(`
			INSERT INTO trades (contract_id, seq, ts, price, qty, side)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (contract_id, seq) DO NOTHING
		`, row.ContractID, row.Seq, row.Ts, row.Price, row.Qty, row.Side)
	}

	conflicts, err := s.sendBatch(ctx, batch, len(recs))
	if err != nil {
		s.countError()
		return err
	}

	s.countSuccess(len(recs), conflicts)
	s.logger.Debug("wrote trades",
		"contract", contractID,
		"count", len(recs),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
	return nil
}

// WriteDepth inserts a depth batch from the file dated fileDate. firstSeq is
// the record index of recs[0] within that file.
func (s *Postgres) WriteDepth(ctx context.Context, contractID, fileDate string, firstSeq int64, recs []model.DepthRecord) error {
	if len(recs) == 0 {
		return nil
	}

	start := time.Now()

	batch := &pgx.Batch{}
	for i, rec := range recs {
		row := transformDepth(contractID, fileDate, firstSeq+int64(i), rec)
		batch.Queue(`
			INSERT INTO depth_updates (contract_id, file_date, seq, ts, command, flags, num_orders, price, qty)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (contract_id, file_date, seq) DO NOTHING
		`, row.ContractID, row.FileDate, row.Seq, row.Ts, row.Command, row.Flags, row.NumOrders, row.Price, row.Qty)
	}

	conflicts, err := s.sendBatch(ctx, batch, len(recs))
	if err != nil {
		s.countError()
		return err
	}

	s.countSuccess(len(recs), conflicts)
	s.logger.Debug("wrote depth updates",
		"contract", contractID,
		"file_date", fileDate,
		"count", len(recs),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
	return nil
}

func transformTrade(contractID string, seq int64, rec model.TradeRecord) tradeRow {
	return tradeRow{
		ContractID: contractID,
		Seq:        seq,
		Ts:         rec.Timestamp,
		Price:      rec.Price,
		Qty:        rec.Qty,
		Side:       int16(rec.Side),
	}
}

func transformDepth(contractID, fileDate string, seq int64, rec model.DepthRecord) depthRow {
	return depthRow{
		ContractID: contractID,
		FileDate:   fileDate,
		Seq:        seq,
		Ts:         rec.Timestamp,
		Command:    int16(rec.Command),
		Flags:      int16(rec.Flags),
		NumOrders:  int32(rec.NumOrders),
		Price:      rec.Price,
		Qty:        rec.Qty,
	}
}

// sendBatch executes a queued batch and counts conflict skips.
func (s *Postgres) sendBatch(ctx context.Context, batch *pgx.Batch, n int) (conflicts int, err error) {
	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < n; i++ {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}
	return conflicts, nil
}

func (s *Postgres) countSuccess(n, conflicts int) {
	s.mu.Lock()
	s.metrics.Inserts += int64(n - conflicts)
	s.metrics.Conflicts += int64(conflicts)
	s.metrics.Batches++
	s.mu.Unlock()
}

func (s *Postgres) countError() {
	s.mu.Lock()
	s.metrics.Errors++
	s.mu.Unlock()
}
