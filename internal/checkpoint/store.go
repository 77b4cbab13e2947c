package checkpoint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrConfigCorrupt reports an unreadable or structurally invalid state file.
// The engine must not guess a default offset when this is returned; the
// affected contracts stay unprocessed until an operator intervenes.
var ErrConfigCorrupt = errors.New("checkpoint state corrupt")

// ErrOffsetRegression reports an attempt to move a checkpoint backwards.
var ErrOffsetRegression = errors.New("checkpoint offset regression")

// Checkpoint is the durable resume point for one contract. Offsets are byte
// offsets into the record area of the file, i.e. relative to the end of the
// fixed header.
type Checkpoint struct {
	TradeOffset int64  `yaml:"trade_offset"`
	DepthDate   string `yaml:"depth_date,omitempty"` // YYYY-MM-DD of the depth file last read, empty on first run
	DepthOffset int64  `yaml:"depth_offset"`
}

// Store reads and atomically rewrites the checkpoint state file.
type Store struct {
	path string

	mu    sync.Mutex
	state map[string]Checkpoint
}

// NewStore creates a store backed by the state file at path. Call Load before
// the first Get or Save.
func NewStore(path string) *Store {
	return &Store{path: path, state: make(map[string]Checkpoint)}
}

// Load reads the state file and returns a copy of its contents. A missing
// file is a first run and yields an empty mapping; a malformed file returns
// ErrConfigCorrupt.
func (s *Store) Load() (map[string]Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.state = make(map[string]Checkpoint)
		return map[string]Checkpoint{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfigCorrupt, s.path, err)
	}

	state := make(map[string]Checkpoint)
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrConfigCorrupt, s.path, err)
	}
	for id, cp := range state {
		if cp.TradeOffset < 0 || cp.DepthOffset < 0 {
			return nil, fmt.Errorf("%w: contract %s has negative offset", ErrConfigCorrupt, id)
		}
	}

	s.state = state
	return copyState(state), nil
}

// Get returns the checkpoint for a contract, zero-valued if none was saved.
func (s *Store) Get(contractID string) Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[contractID]
}

// Save records a contract's checkpoint and atomically replaces the state
// file. Offsets only ever advance: a trade offset may never decrease, and a
// depth offset may only decrease when the depth date moves forward to a newer
// file.
func (s *Store) Save(contractID string, cp Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state[contractID]
	if cp.TradeOffset < prev.TradeOffset {
		return fmt.Errorf("%w: contract %s trade offset %d < %d", ErrOffsetRegression, contractID, cp.TradeOffset, prev.TradeOffset)
	}
	if cp.DepthDate < prev.DepthDate {
		return fmt.Errorf("%w: contract %s depth date %q < %q", ErrOffsetRegression, contractID, cp.DepthDate, prev.DepthDate)
	}
	if cp.DepthDate == prev.DepthDate && cp.DepthOffset < prev.DepthOffset {
		return fmt.Errorf("%w: contract %s depth offset %d < %d", ErrOffsetRegression, contractID, cp.DepthOffset, prev.DepthOffset)
	}

	s.state[contractID] = cp
	if err := s.writeLocked(); err != nil {
		// Roll the in-memory state back so a retry re-persists from a
		// consistent view.
		s.state[contractID] = prev
		return err
	}
	return nil
}

// writeLocked marshals the full state and swaps it into place. Callers hold mu.
func (s *Store) writeLocked() error {
	data, err := yaml.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("marshal checkpoint state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func copyState(state map[string]Checkpoint) map[string]Checkpoint {
	out := make(map[string]Checkpoint, len(state))
	for id, cp := range state {
		out[id] = cp
	}
	return out
}
