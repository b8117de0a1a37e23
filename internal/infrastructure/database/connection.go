package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrescamacho/jobshop-sim/internal/adapters/persistence"
	"github.com/andrescamacho/jobshop-sim/internal/infrastructure/config"
)

// NewConnection opens the episode history store described by cfg
func NewConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// tick records are the bulk of every write
		CreateBatchSize: persistence.TickBatchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s episode store: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying db: %w", err)
	}

	if cfg.Type == config.StoreSQLite {
		// each connection to :memory: would see its own empty database, and
		// sqlite serialises writers anyway
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}
	sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdle)
	sqlDB.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	return db, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case config.StorePostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.StoreSQLite:
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// NewTestConnection opens a migrated in-memory store
func NewTestConnection() (*gorm.DB, error) {
	cfg := config.InMemoryDatabase()
	db, err := NewConnection(&cfg)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate in-memory store: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the episode and tick record tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&persistence.EpisodeModel{},
		&persistence.EpisodeTickModel{},
	)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
