package warehouse

import (
	"errors"
	"time"
)

// Config holds the connection settings of one warehouse connection.
type Config struct {
	DSN             string
	PingTimeout     time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns settings suitable for a short-lived batch run.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:             dsn,
		PingTimeout:     5 * time.Second,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

func (c Config) Validate() error {
	if c.DSN == "" {
		return errors.New("warehouse DSN is required")
	}
	if c.PingTimeout <= 0 {
		return errors.New("warehouse ping timeout must be positive")
	}
	if c.MaxOpenConns < 1 {
		return errors.New("warehouse max open conns must be >= 1")
	}
	if c.MaxIdleConns < 0 || c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("warehouse max idle conns must be between 0 and max open conns")
	}
	if c.ConnMaxLifetime < 0 {
		return errors.New("warehouse conn max lifetime must be >= 0")
	}
	return nil
}
