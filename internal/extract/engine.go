package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jfeld/tickstore/internal/checkpoint"
	"github.com/jfeld/tickstore/internal/codec"
	"github.com/jfeld/tickstore/internal/config"
	"github.com/jfeld/tickstore/internal/model"
)

// Sink receives decoded batches. Delivery is at-least-once: implementations
// must tolerate a replayed batch after a failed commit. firstSeq is the
// record index of the batch's first event within its source file and is
// stable across replays.
type Sink interface {
	WriteTrades(ctx context.Context, contractID string, firstSeq int64, recs []model.TradeRecord) error
	WriteDepth(ctx context.Context, contractID, fileDate string, firstSeq int64, recs []model.DepthRecord) error
}

// CheckpointStore persists per-contract resume points.
type CheckpointStore interface {
	Get(contractID string) checkpoint.Checkpoint
	Save(contractID string, cp checkpoint.Checkpoint) error
}

// Config holds engine settings.
type Config struct {
	DataRoot    string
	Contracts   map[string]config.ContractConfig
	Delay       time.Duration // pause between continuous-mode cycles
	Concurrency int           // contracts processed in parallel within a cycle
}

// Engine runs extraction cycles over all enabled contracts.
type Engine struct {
	cfg    Config
	store  CheckpointStore
	sink   Sink
	logger *slog.Logger

	mu       sync.Mutex
	failures map[string]*failureState
}

// New creates an engine.
func New(cfg Config, store CheckpointStore, sink Sink, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Engine{
		cfg:      cfg,
		store:    store,
		sink:     sink,
		logger:   logger,
		failures: make(map[string]*failureState),
	}
}

// Run repeats extraction cycles until ctx is cancelled. Cancellation is
// sampled between cycles and between contracts; an in-flight commit always
// completes, so stopping never tears a checkpoint.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("extractor running",
		"contracts", len(e.enabledContracts()),
		"delay", e.cfg.Delay,
	)

	for {
		report := e.RunCycle(ctx)
		e.logCycle(report)

		select {
		case <-ctx.Done():
			e.logger.Info("extractor stopped")
			return nil
		case <-time.After(e.cfg.Delay):
		}
	}
}

// RunCycle runs exactly one cycle across all enabled contracts and returns
// its summary. Contracts run concurrently up to the configured limit; they
// share no checkpoints or files, so this is safe.
func (e *Engine) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{
		CycleID:   uuid.New(),
		StartedAt: time.Now(),
	}

	ids := e.enabledContracts()
	results := make([]ContractReport, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(e.cfg.Concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = ContractReport{ContractID: id}
				return nil
			}
			results[i] = e.processContract(ctx, id, e.cfg.Contracts[id])
			return nil
		})
	}
	g.Wait()

	report.Contracts = results
	report.Duration = time.Since(report.StartedAt)
	return report
}

// processContract runs one contract's cycle, each stream committing
// independently.
func (e *Engine) processContract(ctx context.Context, id string, cc config.ContractConfig) ContractReport {
	rep := ContractReport{ContractID: id}
	if cc.Trades {
		rep.Trades = e.processTrades(ctx, id, cc)
	}
	if cc.Depth && ctx.Err() == nil {
		rep.Depth = e.processDepth(ctx, id, cc)
	}
	return rep
}

// processTrades decodes and sinks everything past the trade checkpoint.
func (e *Engine) processTrades(ctx context.Context, id string, cc config.ContractConfig) StreamReport {
	rep := StreamReport{Enabled: true}
	cp := e.store.Get(id)

	path := codec.TradeFilePath(e.cfg.DataRoot, id)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		rep.Skipped = true
		e.noteSkip(id, "trades", path)
		return rep
	}
	if err != nil {
		rep.Err = fmt.Errorf("open trade file: %w", err)
		e.noteFailure(id, "trades", rep.Err)
		return rep
	}
	defer f.Close()

	hdr, err := codec.ParseTradeHeader(f)
	if err != nil {
		rep.Err = fmt.Errorf("trade header: %w", err)
		e.noteFailure(id, "trades", rep.Err)
		return rep
	}
	recSize := int64(hdr.RecordSize)
	if cp.TradeOffset%recSize != 0 {
		rep.Err = fmt.Errorf("%w: trade offset %d not aligned to record size %d", checkpoint.ErrConfigCorrupt, cp.TradeOffset, recSize)
		e.noteFailure(id, "trades", rep.Err)
		return rep
	}

	buf, err := codec.ReadFrom(f, int64(hdr.HeaderSize)+cp.TradeOffset)
	if err != nil {
		rep.Err = fmt.Errorf("read trade file: %w", err)
		e.noteFailure(id, "trades", rep.Err)
		return rep
	}

	recs, consumed := codec.DecodeTrades(hdr, buf, cc.PriceAdj)
	if len(recs) == 0 {
		// Nothing new yet, or only a partial trailing record.
		e.logger.Debug("no new trades", "contract", id, "offset", cp.TradeOffset)
		return rep
	}

	if err := e.sink.WriteTrades(ctx, id, cp.TradeOffset/recSize, recs); err != nil {
		rep.Err = fmt.Errorf("sink trades: %w", err)
		e.noteFailure(id, "trades", rep.Err)
		return rep
	}

	cp.TradeOffset += consumed
	if err := e.store.Save(id, cp); err != nil {
		rep.Err = fmt.Errorf("commit trade checkpoint: %w", err)
		e.noteFailure(id, "trades", rep.Err)
		return rep
	}

	rep.Records = len(recs)
	e.clearFailure(id, "trades")
	e.logger.Info("extracted trades",
		"contract", id,
		"records", len(recs),
		"offset", cp.TradeOffset,
	)
	return rep
}

// processDepth walks the contract's depth files from the checkpointed date
// forward, committing after each file. Rolled-over files are read once to EOF
// and never revisited.
func (e *Engine) processDepth(ctx context.Context, id string, cc config.ContractConfig) StreamReport {
	rep := StreamReport{Enabled: true}
	cp := e.store.Get(id)

	files, err := e.locateDepthFiles(id, cp.DepthDate)
	if err != nil {
		rep.Err = fmt.Errorf("locate depth files: %w", err)
		e.noteFailure(id, "depth", rep.Err)
		return rep
	}
	if len(files) == 0 {
		rep.Skipped = true
		e.noteSkip(id, "depth", codec.DepthFilePath(e.cfg.DataRoot, id, "*"))
		return rep
	}

	for _, df := range files {
		if ctx.Err() != nil {
			break
		}

		offset := int64(0)
		if df.date == cp.DepthDate {
			offset = cp.DepthOffset
		}

		n, err := e.extractDepthFile(ctx, id, cc, df, offset, &cp)
		rep.Records += n
		if err != nil {
			rep.Err = err
			e.noteFailure(id, "depth", err)
			return rep
		}
	}

	if rep.Records == 0 {
		e.logger.Debug("no new depth updates", "contract", id, "date", cp.DepthDate, "offset", cp.DepthOffset)
	}
	e.clearFailure(id, "depth")
	return rep
}

// extractDepthFile decodes and sinks one depth file from offset, then
// commits cp with the file's date. cp is updated in place on commit.
func (e *Engine) extractDepthFile(ctx context.Context, id string, cc config.ContractConfig, df depthFile, offset int64, cp *checkpoint.Checkpoint) (int, error) {
	f, err := os.Open(df.path)
	if errors.Is(err, os.ErrNotExist) {
		// Deleted between listing and opening; next cycle re-lists.
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open depth file: %w", err)
	}
	defer f.Close()

	hdr, err := codec.ParseDepthHeader(f)
	if err != nil {
		return 0, fmt.Errorf("depth header %s: %w", df.path, err)
	}
	recSize := int64(hdr.RecordSize)
	if offset%recSize != 0 {
		return 0, fmt.Errorf("%w: depth offset %d not aligned to record size %d", checkpoint.ErrConfigCorrupt, offset, recSize)
	}

	buf, err := codec.ReadFrom(f, int64(hdr.HeaderSize)+offset)
	if err != nil {
		return 0, fmt.Errorf("read depth file: %w", err)
	}

	recs, consumed := codec.DecodeDepth(hdr, buf, cc.PriceAdj)
	if len(recs) == 0 {
		return 0, nil
	}

	if err := e.sink.WriteDepth(ctx, id, df.date, offset/recSize, recs); err != nil {
		return 0, fmt.Errorf("sink depth: %w", err)
	}

	next := *cp
	next.DepthDate = df.date
	next.DepthOffset = offset + consumed
	if err := e.store.Save(id, next); err != nil {
		return 0, fmt.Errorf("commit depth checkpoint: %w", err)
	}
	*cp = next

	e.logger.Info("extracted depth updates",
		"contract", id,
		"file_date", df.date,
		"records", len(recs),
		"offset", next.DepthOffset,
	)
	return len(recs), nil
}

// enabledContracts returns the IDs with at least one stream on, in stable
// order so cycle logs are comparable.
func (e *Engine) enabledContracts() []string {
	ids := make([]string, 0, len(e.cfg.Contracts))
	for id, cc := range e.cfg.Contracts {
		if cc.Enabled() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (e *Engine) logCycle(report CycleReport) {
	e.logger.Info("cycle complete",
		"cycle_id", report.CycleID,
		"contracts", len(report.Contracts),
		"records", report.Records(),
		"skips", report.Skips(),
		"failures", report.Failures(),
		"duration", report.Duration,
	)
}
