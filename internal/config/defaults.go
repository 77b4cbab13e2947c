package config

import (
	"path/filepath"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultCycleDelay       = 5 * time.Second
	DefaultCycleConcurrency = 1
	DefaultPriceAdj         = 1.0
	DefaultLogLevel         = "info"
	DefaultCheckpointFile   = "checkpoints.yaml"
)

func (c *ExtractorConfig) applyDefaults() {
	// Data defaults
	if c.Data.CheckpointFile == "" && c.Data.Root != "" {
		c.Data.CheckpointFile = filepath.Join(c.Data.Root, DefaultCheckpointFile)
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Cycle defaults
	if c.Cycle.Delay == 0 {
		c.Cycle.Delay = DefaultCycleDelay
	}
	if c.Cycle.Concurrency == 0 {
		c.Cycle.Concurrency = DefaultCycleConcurrency
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}

	// Contract defaults
	for id, contract := range c.Contracts {
		if contract.PriceAdj == 0 {
			contract.PriceAdj = DefaultPriceAdj
			c.Contracts[id] = contract
		}
	}
}
