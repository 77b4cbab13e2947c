package config

import "time"

// ExtractorConfig is the root configuration for an extractor instance.
type ExtractorConfig struct {
	Instance  InstanceConfig            `yaml:"instance"`
	Data      DataConfig                `yaml:"data"`
	Database  DBConfig                  `yaml:"database"`
	Cycle     CycleConfig               `yaml:"cycle"`
	Logging   LoggingConfig             `yaml:"logging"`
	Contracts map[string]ContractConfig `yaml:"contracts"`
}

// InstanceConfig identifies this extractor.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// DataConfig locates the externally written data files. Trade files live at
// <root>/Data/<contract>.scid, depth files at
// <root>/Data/MarketDepthData/<contract>.<YYYY-MM-DD>.depth.
type DataConfig struct {
	Root           string `yaml:"root"`
	CheckpointFile string `yaml:"checkpoint_file"`
}

// DBConfig holds the sink database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CycleConfig holds extraction cycle settings.
type CycleConfig struct {
	Delay       time.Duration `yaml:"delay"`       // pause between continuous-mode cycles
	Concurrency int           `yaml:"concurrency"` // contracts processed in parallel within a cycle
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"` // rotated log file directory, empty = stdout only
}

// ContractConfig holds the per-contract extraction settings.
type ContractConfig struct {
	PriceAdj float64 `yaml:"price_adj"` // multiplicative scale from raw price fields to real units
	Trades   bool    `yaml:"trades"`
	Depth    bool    `yaml:"depth"`
}

// Enabled reports whether any stream is extracted for the contract.
func (c ContractConfig) Enabled() bool {
	return c.Trades || c.Depth
}
