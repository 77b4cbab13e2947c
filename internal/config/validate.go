package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *ExtractorConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}
	if c.Data.Root == "" {
		return errors.New("data.root is required")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Cycle.Delay < 0 {
		return errors.New("cycle.delay must not be negative")
	}
	if c.Cycle.Concurrency < 1 {
		return errors.New("cycle.concurrency must be >= 1")
	}

	if len(c.Contracts) == 0 {
		return errors.New("at least one contract is required")
	}
	for id, contract := range c.Contracts {
		if contract.PriceAdj <= 0 {
			return fmt.Errorf("contracts.%s.price_adj must be positive", id)
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Port < 1 || db.Port > 65535 {
		return fmt.Errorf("%s.port must be 1-65535", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns must not exceed max_conns", prefix)
	}
	return nil
}
