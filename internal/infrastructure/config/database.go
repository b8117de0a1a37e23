package config

import (
	"fmt"
	"time"
)

// Episode history store types
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	memorySQLite  = ":memory:"
)

// DatabaseConfig describes where episodes and tick records are kept
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// Full postgres URL; wins over the individual fields
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// SQLite file; empty keeps history in memory for the life of the process
	Path string `mapstructure:"path"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig sizes the postgres connection pool
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// DSN is the driver connection string for Type
func (c DatabaseConfig) DSN() string {
	if c.Type == StoreSQLite {
		if c.Path == "" {
			return memorySQLite
		}
		return c.Path
	}
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// InMemory reports whether history disappears with the process
func (c DatabaseConfig) InMemory() bool {
	return c.Type == StoreSQLite && c.DSN() == memorySQLite
}

// InMemoryDatabase is the throwaway store used by tests and --no-history runs
func InMemoryDatabase() DatabaseConfig {
	return DatabaseConfig{Type: StoreSQLite, Path: memorySQLite}
}
